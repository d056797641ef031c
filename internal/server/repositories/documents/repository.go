// Package documents provides the PostgreSQL-backed authoritative document
// store, including the last-writer-wins push application used by sync.
package documents

import (
	"context"
	"time"

	"github.com/avoronovs/papertrail/internal/api"
	"github.com/avoronovs/papertrail/internal/server/models"
)

// Repository is the storage contract for server-side document records.
// All reads and writes are scoped to the owning user.
type Repository interface {
	Insert(ctx context.Context, doc *models.Document) error
	Save(ctx context.Context, doc *models.Document) error
	// ApplyPush upserts a pushed record under last-writer-wins: the write is
	// applied only when the incoming updatedAt is not older than the stored
	// row's. Returns whether the push won.
	ApplyPush(ctx context.Context, doc *models.Document) (bool, error)
	GetByID(ctx context.Context, userID, id string) (*models.Document, error)
	// GetAny is GetByID with tombstones included.
	GetAny(ctx context.Context, userID, id string) (*models.Document, error)
	SelectAll(ctx context.Context, userID string) ([]*models.Document, error)
	Search(ctx context.Context, userID, query string) ([]*models.Document, error)
	SelectByCategory(ctx context.Context, userID string, category api.Category) ([]*models.Document, error)
	SelectExpiring(ctx context.Context, userID string, from, until time.Time) ([]*models.Document, error)
	// SelectUpdatedSince returns rows strictly newer than since, newest
	// first, tombstones included so deletions propagate. A nil since returns
	// everything.
	SelectUpdatedSince(ctx context.Context, userID string, since *time.Time) ([]*models.Document, error)
	SelectConflicts(ctx context.Context, userID string) ([]*models.Document, error)
	Stats(ctx context.Context, userID string, expiringUntil time.Time) (*api.Stats, error)
	MarkSynced(ctx context.Context, userID string, ids []string) error
	MarkConflict(ctx context.Context, userID, id string) error
	MarkDeleted(ctx context.Context, userID, id string, at time.Time, deviceID string) (bool, error)
	PurgeTombstones(ctx context.Context, olderThan time.Time) (int64, error)
}

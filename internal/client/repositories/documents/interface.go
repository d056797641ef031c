// Package documents provides the sqlite-backed local record store: CRUD plus
// the query surface (search, category and expiration filters, aggregate
// stats) and the pending/synced bookkeeping the sync engine relies on.
package documents

import (
	"context"
	"time"

	"github.com/avoronovs/papertrail/internal/api"
	"github.com/avoronovs/papertrail/internal/client/models"
)

// Repository is the storage contract for local document records. All reads
// exclude tombstoned rows except GetAllPending, which must include them so
// deletions can be pushed to the server.
type Repository interface {
	Insert(ctx context.Context, doc *models.Document) error
	CreateOrUpdate(ctx context.Context, doc *models.Document) error
	GetByID(ctx context.Context, id string) (*models.Document, error)
	GetAll(ctx context.Context) ([]models.Document, error)
	Search(ctx context.Context, query string) ([]models.Document, error)
	GetByCategory(ctx context.Context, category api.Category) ([]models.Document, error)
	GetExpiring(ctx context.Context, from, to time.Time) ([]models.Document, error)
	Stats(ctx context.Context, expiringFrom, expiringTo time.Time) (*api.Stats, error)

	GetAllPending(ctx context.Context) ([]*models.Document, error)
	MarkSynced(ctx context.Context, ids []string) error
	MarkDeleted(ctx context.Context, id string, at time.Time, deviceID string) (bool, error)
	Remove(ctx context.Context, id string) error
}

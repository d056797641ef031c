// Package synchistory provides the append-only sync audit log store.
package synchistory

import (
	"context"

	"github.com/avoronovs/papertrail/internal/server/models"
)

// Repository is the storage contract for sync audit entries.
type Repository interface {
	Create(ctx context.Context, entry *models.SyncHistoryEntry) error
	// List returns the newest entries first, at most limit rows.
	List(ctx context.Context, userID string, limit int) ([]*models.SyncHistoryEntry, error)
}

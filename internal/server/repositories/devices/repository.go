// Package devices provides the PostgreSQL-backed device registry store.
package devices

import (
	"context"
	"time"

	"github.com/avoronovs/papertrail/internal/server/models"
)

// Repository is the storage contract for registered devices.
type Repository interface {
	Create(ctx context.Context, device *models.Device) error
	// Touch refreshes last_seen_at for an active device. Inactive or unknown
	// devices yield common.ErrorNotFound.
	Touch(ctx context.Context, userID, id string, at time.Time) error
	ListActive(ctx context.Context, userID string) ([]*models.Device, error)
	Deactivate(ctx context.Context, userID, id string) error
}

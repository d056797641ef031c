// Package users provides the PostgreSQL-backed account store.
package users

import (
	"context"
	"time"

	"github.com/avoronovs/papertrail/internal/server/models"
)

// Repository is the storage contract for accounts.
type Repository interface {
	Create(ctx context.Context, email, passwordHash string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	UpdateLastSync(ctx context.Context, userID string, at time.Time) error
}

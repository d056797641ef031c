// Package metadata persists small pieces of per-device client state that must
// survive process restarts: the registered device id, the last successful
// sync timestamp, and the session access token.
package metadata

import (
	"context"
	"time"
)

// Well-known keys.
const (
	KeyDeviceID    = "device_id"
	KeyLastSyncAt  = "last_sync_at"
	KeyAccessToken = "access_token"
	KeyUserEmail   = "user_email"
)

// Repository is a durable key-value store scoped to the local device.
type Repository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error

	// GetTime parses the value under key as RFC 3339; the zero time is
	// returned when the key is absent.
	GetTime(ctx context.Context, key string) (time.Time, error)
	SetTime(ctx context.Context, key string, value time.Time) error
}

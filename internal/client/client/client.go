// Package client provides access to everything the application talks to: the
// local sqlite database with its repositories, and the PaperTrail server over
// HTTP.
package client

import (
	"context"
	"time"

	"github.com/avoronovs/papertrail/internal/api"
)

// Client is the server-facing transport used by the services and the sync
// engine. Methods return common.ErrorUnauthorized when the session token is
// missing or expired, and common.ErrorNotFound when the server has no such
// resource.
type Client interface {
	Close() error

	// SetToken installs the bearer token used on authenticated calls.
	SetToken(token string)

	RegisterUser(ctx context.Context, email string, password string) (string, error)
	Login(ctx context.Context, email string, password string) (string, error)

	RegisterDevice(ctx context.Context, req *api.RegisterDeviceRequest) (*api.Device, error)
	// Heartbeat refreshes the device's lastSeenAt. When the server no longer
	// knows the device it returns common.ErrorDeviceGone; any other failure
	// is reported as-is so the caller does not re-register on a flaky
	// network.
	Heartbeat(ctx context.Context, deviceID string) error
	ListDevices(ctx context.Context) ([]api.Device, error)
	DeactivateDevice(ctx context.Context, deviceID string) error

	// DocumentsSince returns server records updated strictly after since,
	// tombstones included. A nil since means the full set.
	DocumentsSince(ctx context.Context, since *time.Time) ([]api.Document, error)
	PushDocuments(ctx context.Context, req *api.PushDocumentsRequest) (*api.PushDocumentsResponse, error)
	CompleteSync(ctx context.Context, req *api.CompleteSyncRequest) (*api.CompleteSyncResponse, error)
	RecordSyncHistory(ctx context.Context, req *api.RecordSyncHistoryRequest) error
	SyncHistory(ctx context.Context) ([]api.SyncHistoryEntry, error)
	SyncConflicts(ctx context.Context) ([]api.Document, error)

	ImageUploadURL(ctx context.Context) (*api.ImageUploadURLResponse, error)
	ImageURL(ctx context.Context, key string) (*api.ImageURLResponse, error)
}

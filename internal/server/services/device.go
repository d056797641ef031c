package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/avoronovs/papertrail/internal/api"
	"github.com/avoronovs/papertrail/internal/common"
	"github.com/avoronovs/papertrail/internal/server/models"
	"github.com/avoronovs/papertrail/internal/server/repositories/repomanager"
)

// DeviceService manages the per-user device registry used to attribute sync
// traffic.
type DeviceService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

// NewDeviceService constructs a DeviceService.
func NewDeviceService(db *sql.DB, m repomanager.RepositoryManager) *DeviceService {
	return &DeviceService{db: db, repomanager: m}
}

// Register records a new device for the user and returns it with the
// server-assigned id.
func (s *DeviceService) Register(ctx context.Context, userID string, req *api.RegisterDeviceRequest) (*models.Device, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorValidation, err)
	}

	name := req.DeviceName
	if name == "" {
		name = "Unknown device"
	}

	device := &models.Device{
		UserID:     userID,
		DeviceName: name,
		DeviceType: req.DeviceType,
		UserAgent:  req.UserAgent,
	}
	repo := s.repomanager.Devices(s.db)
	if err := repo.Create(ctx, device); err != nil {
		return nil, fmt.Errorf("error registering device: %v", err)
	}
	return device, nil
}

// Heartbeat refreshes the device's last-seen timestamp. Unknown or retired
// devices yield common.ErrorNotFound so clients know to re-register.
func (s *DeviceService) Heartbeat(ctx context.Context, userID, deviceID string) error {
	repo := s.repomanager.Devices(s.db)
	err := repo.Touch(ctx, userID, deviceID, time.Now().UTC())
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return fmt.Errorf("error updating device: %v", err)
	}
	return err
}

// List returns the user's active devices, most recently seen first.
func (s *DeviceService) List(ctx context.Context, userID string) ([]*models.Device, error) {
	return s.repomanager.Devices(s.db).ListActive(ctx, userID)
}

// Deactivate retires a device; its sync history rows survive.
func (s *DeviceService) Deactivate(ctx context.Context, userID, deviceID string) error {
	return s.repomanager.Devices(s.db).Deactivate(ctx, userID, deviceID)
}

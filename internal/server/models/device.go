package models

import (
	"time"

	"github.com/avoronovs/papertrail/internal/api"
)

// Device is one registered client instance of a user.
type Device struct {
	ID         string
	UserID     string
	DeviceName string
	DeviceType string
	UserAgent  string
	LastSeenAt time.Time
	IsActive   bool
	CreatedAt  time.Time
}

func (d *Device) ToAPI() api.Device {
	return api.Device{
		ID:         d.ID,
		DeviceName: d.DeviceName,
		DeviceType: d.DeviceType,
		UserAgent:  d.UserAgent,
		LastSeenAt: d.LastSeenAt,
		IsActive:   d.IsActive,
		CreatedAt:  d.CreatedAt,
	}
}

package models

import (
	"time"

	"github.com/avoronovs/papertrail/internal/api"
)

// SyncHistoryEntry is an append-only audit row of one sync attempt. DeviceID
// is nullable: failed attempts can be reported before a device id is known.
type SyncHistoryEntry struct {
	ID            string
	UserID        string
	DeviceID      *string
	Action        api.SyncAction
	DocumentCount int
	Status        api.SyncOutcome
	ErrorMessage  string
	CreatedAt     time.Time
}

func (e *SyncHistoryEntry) ToAPI() api.SyncHistoryEntry {
	return api.SyncHistoryEntry{
		ID:            e.ID,
		DeviceID:      e.DeviceID,
		Action:        e.Action,
		DocumentCount: e.DocumentCount,
		Status:        e.Status,
		ErrorMessage:  e.ErrorMessage,
		CreatedAt:     e.CreatedAt,
	}
}

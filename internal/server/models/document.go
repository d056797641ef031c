package models

import (
	"time"

	"github.com/avoronovs/papertrail/internal/api"
)

// Document is the server's authoritative copy of a tracked document record.
// IDs are client-generated UUIDs; the server never rewrites them. Deleted
// rows are tombstones kept so other devices observe the deletion.
type Document struct {
	ID                 string
	UserID             string
	Title              string
	Location           string
	Description        string
	Category           api.Category
	UrgencyTags        []api.UrgencyTag
	ExpirationDate     *time.Time
	ImageData          []byte
	ImageKey           string
	CreatedAt          time.Time
	UpdatedAt          time.Time
	SyncStatus         api.SyncStatus
	LastModifiedDevice string
	Deleted            bool
}

// ToAPI converts the record to its wire form. The owning user id never
// leaves the server.
func (d *Document) ToAPI() api.Document {
	return api.Document{
		ID:                 d.ID,
		Title:              d.Title,
		Location:           d.Location,
		Description:        d.Description,
		Category:           d.Category,
		UrgencyTags:        d.UrgencyTags,
		ExpirationDate:     d.ExpirationDate,
		ImageData:          d.ImageData,
		ImageKey:           d.ImageKey,
		CreatedAt:          d.CreatedAt,
		UpdatedAt:          d.UpdatedAt,
		SyncStatus:         d.SyncStatus,
		LastModifiedDevice: d.LastModifiedDevice,
		Deleted:            d.Deleted,
	}
}

// DocumentFromAPI binds a wire document to an owner.
func DocumentFromAPI(userID string, doc api.Document) *Document {
	return &Document{
		ID:                 doc.ID,
		UserID:             userID,
		Title:              doc.Title,
		Location:           doc.Location,
		Description:        doc.Description,
		Category:           doc.Category,
		UrgencyTags:        doc.UrgencyTags,
		ExpirationDate:     doc.ExpirationDate,
		ImageData:          doc.ImageData,
		ImageKey:           doc.ImageKey,
		CreatedAt:          doc.CreatedAt,
		UpdatedAt:          doc.UpdatedAt,
		SyncStatus:         doc.SyncStatus,
		LastModifiedDevice: doc.LastModifiedDevice,
		Deleted:            doc.Deleted,
	}
}

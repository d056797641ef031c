// Package models defines the client-side document record stored in the local
// sqlite database.
package models

import (
	"time"

	"github.com/avoronovs/papertrail/internal/api"
)

// Document is one tracked document record. IDs are client-generated UUID
// strings, so local and remote identity never diverge. Deleted rows are
// tombstones: they stay in the store (flagged, pending) until the server has
// observed the deletion, so deletes propagate to other devices.
type Document struct {
	ID                 string
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

// ToAPI converts the record to its wire form.
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

// FromAPI converts a wire document into the local record form.
func FromAPI(doc api.Document) *Document {
	return &Document{
		ID:                 doc.ID,
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

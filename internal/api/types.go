// Package api defines the JSON wire contract between the PaperTrail client
// and server: domain enumerations, transfer objects, and request/response
// payloads for the sync-facing HTTP surface.
package api

import "time"

// Category classifies a tracked document. The enumeration is closed and
// stable; it is used for filtering and aggregate stats.
type Category string

const (
	CategoryIDDocument Category = "id-document"
	CategoryLegal      Category = "legal"
	CategoryMedical    Category = "medical"
	CategoryFinancial  Category = "financial"
)

// Categories lists all valid categories.
var Categories = []Category{CategoryIDDocument, CategoryLegal, CategoryMedical, CategoryFinancial}

// UrgencyTag marks time-sensitive attention a document needs.
type UrgencyTag string

const (
	UrgencyExpiresSoon  UrgencyTag = "expires-soon"
	UrgencyNeedForTaxes UrgencyTag = "need-for-taxes"
	UrgencyRenewalDue   UrgencyTag = "renewal-due"
)

// UrgencyTags lists all valid urgency tags.
var UrgencyTags = []UrgencyTag{UrgencyExpiresSoon, UrgencyNeedForTaxes, UrgencyRenewalDue}

// SyncStatus tracks whether a record has been reconciled with the server.
type SyncStatus string

const (
	SyncStatusSynced   SyncStatus = "synced"
	SyncStatusPending  SyncStatus = "pending"
	SyncStatusConflict SyncStatus = "conflict"
)

// SyncAction names the kind of sync operation recorded in history.
type SyncAction string

const (
	SyncActionDown     SyncAction = "sync_down"
	SyncActionUp       SyncAction = "sync_up"
	SyncActionConflict SyncAction = "conflict_resolution"
)

// SyncOutcome is the recorded result of a sync attempt.
type SyncOutcome string

const (
	SyncOutcomeSuccess SyncOutcome = "success"
	SyncOutcomeFailed  SyncOutcome = "failed"
	SyncOutcomePartial SyncOutcome = "partial"
)

// Document is the wire form of a tracked document record. IDs are
// client-generated UUIDs assigned at creation, so the same identity is used
// locally and remotely. ImageData travels base64-encoded by encoding/json.
type Document struct {
	ID                 string       `json:"id"`
	Title              string       `json:"title"`
	Location           string       `json:"location"`
	Description        string       `json:"description,omitempty"`
	Category           Category     `json:"category"`
	UrgencyTags        []UrgencyTag `json:"urgencyTags"`
	ExpirationDate     *time.Time   `json:"expirationDate,omitempty"`
	ImageData          []byte       `json:"imageData,omitempty"`
	ImageKey           string       `json:"imageKey,omitempty"`
	CreatedAt          time.Time    `json:"createdAt"`
	UpdatedAt          time.Time    `json:"updatedAt"`
	SyncStatus         SyncStatus   `json:"syncStatus"`
	LastModifiedDevice string       `json:"lastModifiedDevice,omitempty"`
	Deleted            bool         `json:"deleted,omitempty"`
}

// Device is the wire form of a registered client instance.
type Device struct {
	ID         string    `json:"id"`
	DeviceName string    `json:"deviceName"`
	DeviceType string    `json:"deviceType"`
	UserAgent  string    `json:"userAgent"`
	LastSeenAt time.Time `json:"lastSeenAt"`
	IsActive   bool      `json:"isActive"`
	CreatedAt  time.Time `json:"createdAt"`
}

// SyncHistoryEntry is one append-only audit row of a sync attempt.
type SyncHistoryEntry struct {
	ID            string      `json:"id"`
	DeviceID      *string     `json:"deviceId,omitempty"`
	Action        SyncAction  `json:"action"`
	DocumentCount int         `json:"documentCount"`
	Status        SyncOutcome `json:"status"`
	ErrorMessage  string      `json:"errorMessage,omitempty"`
	CreatedAt     time.Time   `json:"createdAt"`
}

// Stats is the derived aggregate over a user's documents.
type Stats struct {
	TotalDocs    int `json:"totalDocs"`
	ExpiringDocs int `json:"expiringDocs"`
	Categories   int `json:"categories"`
}

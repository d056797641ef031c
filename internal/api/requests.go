package api

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// RegisterUserRequest creates a new account.
type RegisterUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r RegisterUserRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(6, 0)),
	)
}

// LoginRequest authenticates an existing account.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

// TokenResponse carries the bearer access token acting as the session.
type TokenResponse struct {
	AccessToken string `json:"accessToken"`
}

// CreateDocumentRequest carries the user-settable fields of a new document.
type CreateDocumentRequest struct {
	Title          string       `json:"title"`
	Location       string       `json:"location"`
	Description    string       `json:"description,omitempty"`
	Category       Category     `json:"category"`
	UrgencyTags    []UrgencyTag `json:"urgencyTags,omitempty"`
	ExpirationDate *time.Time   `json:"expirationDate,omitempty"`
	ImageData      []byte       `json:"imageData,omitempty"`
}

func (r CreateDocumentRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required),
		validation.Field(&r.Location, validation.Required),
		validation.Field(&r.Category, validation.Required, validation.In(categoryValues()...)),
		validation.Field(&r.UrgencyTags, validation.Each(validation.In(urgencyValues()...))),
	)
}

// UpdateDocumentRequest carries a partial update; nil fields are untouched.
// ID, createdAt and the owning user can never be changed through it.
type UpdateDocumentRequest struct {
	Title          *string       `json:"title,omitempty"`
	Location       *string       `json:"location,omitempty"`
	Description    *string       `json:"description,omitempty"`
	Category       *Category     `json:"category,omitempty"`
	UrgencyTags    *[]UrgencyTag `json:"urgencyTags,omitempty"`
	ExpirationDate *time.Time    `json:"expirationDate,omitempty"`
	ImageData      *[]byte       `json:"imageData,omitempty"`
	ImageKey       *string       `json:"imageKey,omitempty"`
}

func (r UpdateDocumentRequest) Validate() error {
	fields := []*validation.FieldRules{}
	if r.Title != nil {
		fields = append(fields, validation.Field(&r.Title, validation.Required))
	}
	if r.Location != nil {
		fields = append(fields, validation.Field(&r.Location, validation.Required))
	}
	if r.Category != nil {
		fields = append(fields, validation.Field(&r.Category, validation.In(categoryValues()...)))
	}
	if r.UrgencyTags != nil {
		fields = append(fields, validation.Field(&r.UrgencyTags, validation.Each(validation.In(urgencyValues()...))))
	}
	return validation.ValidateStruct(&r, fields...)
}

// RegisterDeviceRequest registers the calling device.
type RegisterDeviceRequest struct {
	DeviceName string `json:"deviceName"`
	DeviceType string `json:"deviceType"`
	UserAgent  string `json:"userAgent"`
}

func (r RegisterDeviceRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.DeviceType, validation.Required,
			validation.In("mobile", "desktop", "tablet")),
	)
}

// PushDocumentsRequest uploads locally pending records (including tombstones)
// for last-writer-wins application on the server.
type PushDocumentsRequest struct {
	DeviceID  string     `json:"deviceId"`
	Documents []Document `json:"documents"`
}

// PushDocumentsResponse reports which pushed ids the server accepted and, for
// ids that lost last-writer-wins, the winning server copies.
type PushDocumentsResponse struct {
	Accepted  []string   `json:"accepted"`
	Conflicts []Document `json:"conflicts,omitempty"`
}

// CompleteSyncRequest finishes a pull: the listed documents are flagged synced
// and an audit entry is appended.
type CompleteSyncRequest struct {
	DocumentIDs []string   `json:"documentIds"`
	DeviceID    string     `json:"deviceId,omitempty"`
	Action      SyncAction `json:"action"`
}

// CompleteSyncResponse returns the recorded audit entry.
type CompleteSyncResponse struct {
	Success    bool             `json:"success"`
	SyncRecord SyncHistoryEntry `json:"syncRecord"`
}

// RecordSyncHistoryRequest appends an audit entry without touching documents;
// the client uses it to report failed attempts.
type RecordSyncHistoryRequest struct {
	DeviceID      *string     `json:"deviceId,omitempty"`
	Action        SyncAction  `json:"action"`
	DocumentCount int         `json:"documentCount"`
	Status        SyncOutcome `json:"status"`
	ErrorMessage  string      `json:"errorMessage,omitempty"`
}

// SuccessResponse is the generic boolean result body.
type SuccessResponse struct {
	Success bool `json:"success"`
}

// ImageUploadURLResponse carries a presigned PUT target for image offload.
type ImageUploadURLResponse struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// ImageURLResponse carries a presigned GET URL for a stored image.
type ImageURLResponse struct {
	URL string `json:"url"`
}

func categoryValues() []any {
	out := make([]any, len(Categories))
	for i, c := range Categories {
		out[i] = c
	}
	return out
}

func urgencyValues() []any {
	out := make([]any, len(UrgencyTags))
	for i, u := range UrgencyTags {
		out[i] = u
	}
	return out
}

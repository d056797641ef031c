// Package services holds the client-side application logic between the CLI
// and the local repositories.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/avoronovs/papertrail/internal/api"
	"github.com/avoronovs/papertrail/internal/client/models"
	"github.com/avoronovs/papertrail/internal/client/repositories/documents"
	"github.com/avoronovs/papertrail/internal/client/repositories/metadata"
	"github.com/avoronovs/papertrail/internal/common"
	"github.com/google/uuid"
)

// DefaultExpiringWindowDays is the look-ahead window used by Stats and the
// default for GetExpiring.
const DefaultExpiringWindowDays = 30

// DocumentService implements the local document operations. Every write lands
// in the local store immediately and is flagged pending, so the application
// works fully offline; the sync engine uploads pending records later.
type DocumentService struct {
	docs documents.Repository
	meta metadata.Repository
}

func NewDocumentService(docs documents.Repository, meta metadata.Repository) *DocumentService {
	return &DocumentService{docs: docs, meta: meta}
}

// Create validates and stores a new document. The id is generated here, on
// the client, so the record keeps a single identity across devices and the
// server.
func (s *DocumentService) Create(ctx context.Context, req *api.CreateDocumentRequest) (*models.Document, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", common.ErrorValidation, err)
	}

	deviceID, err := s.meta.Get(ctx, metadata.KeyDeviceID)
	if err != nil {
		return nil, err
	}

	tags := req.UrgencyTags
	if tags == nil {
		tags = []api.UrgencyTag{}
	}

	now := time.Now().UTC()
	doc := &models.Document{
		ID:                 uuid.NewString(),
		Title:              req.Title,
		Location:           req.Location,
		Description:        req.Description,
		Category:           req.Category,
		UrgencyTags:        tags,
		ExpirationDate:     req.ExpirationDate,
		ImageData:          req.ImageData,
		CreatedAt:          now,
		UpdatedAt:          now,
		SyncStatus:         api.SyncStatusPending,
		LastModifiedDevice: deviceID,
	}

	if err := s.docs.Insert(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Update applies a partial update to an existing document; nil request fields
// leave the stored value untouched. The record is re-flagged pending so the
// change is uploaded on the next sync.
func (s *DocumentService) Update(ctx context.Context, id string, req *api.UpdateDocumentRequest) (*models.Document, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", common.ErrorValidation, err)
	}

	doc, err := s.docs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		doc.Title = *req.Title
	}
	if req.Location != nil {
		doc.Location = *req.Location
	}
	if req.Description != nil {
		doc.Description = *req.Description
	}
	if req.Category != nil {
		doc.Category = *req.Category
	}
	if req.UrgencyTags != nil {
		doc.UrgencyTags = *req.UrgencyTags
	}
	if req.ExpirationDate != nil {
		doc.ExpirationDate = req.ExpirationDate
	}
	if req.ImageData != nil {
		doc.ImageData = *req.ImageData
	}
	if req.ImageKey != nil {
		doc.ImageKey = *req.ImageKey
	}

	deviceID, err := s.meta.Get(ctx, metadata.KeyDeviceID)
	if err != nil {
		return nil, err
	}

	doc.UpdatedAt = time.Now().UTC()
	doc.SyncStatus = api.SyncStatusPending
	doc.LastModifiedDevice = deviceID

	if err := s.docs.CreateOrUpdate(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Delete tombstones a document so the deletion propagates to other devices on
// the next sync. Deleting an unknown id returns common.ErrorNotFound.
func (s *DocumentService) Delete(ctx context.Context, id string) error {
	deviceID, err := s.meta.Get(ctx, metadata.KeyDeviceID)
	if err != nil {
		return err
	}

	ok, err := s.docs.MarkDeleted(ctx, id, time.Now().UTC(), deviceID)
	if err != nil {
		return err
	}
	if !ok {
		return common.ErrorNotFound
	}
	return nil
}

func (s *DocumentService) Get(ctx context.Context, id string) (*models.Document, error) {
	return s.docs.GetByID(ctx, id)
}

func (s *DocumentService) GetAll(ctx context.Context) ([]models.Document, error) {
	return s.docs.GetAll(ctx)
}

func (s *DocumentService) Search(ctx context.Context, query string) ([]models.Document, error) {
	return s.docs.Search(ctx, query)
}

func (s *DocumentService) GetByCategory(ctx context.Context, category api.Category) ([]models.Document, error) {
	return s.docs.GetByCategory(ctx, category)
}

// GetExpiring returns documents expiring within the next daysAhead days,
// boundaries included.
func (s *DocumentService) GetExpiring(ctx context.Context, daysAhead int) ([]models.Document, error) {
	if daysAhead <= 0 {
		daysAhead = DefaultExpiringWindowDays
	}
	now := time.Now().UTC()
	return s.docs.GetExpiring(ctx, now, now.AddDate(0, 0, daysAhead))
}

// Stats returns the aggregate counters, with "expiring" meaning within the
// next DefaultExpiringWindowDays days.
func (s *DocumentService) Stats(ctx context.Context) (*api.Stats, error) {
	now := time.Now().UTC()
	return s.docs.Stats(ctx, now, now.AddDate(0, 0, DefaultExpiringWindowDays))
}

package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/avoronovs/papertrail/internal/api"
	"github.com/avoronovs/papertrail/internal/common"
	"github.com/avoronovs/papertrail/internal/server/models"
	"github.com/avoronovs/papertrail/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// DefaultExpiringWindowDays bounds the "expiring soon" lookahead used by the
// stats aggregate and the default expiring query.
const DefaultExpiringWindowDays = 30

// DocumentService implements the REST document surface: direct CRUD and
// queries against the authoritative store. Sync traffic goes through
// SyncService instead.
type DocumentService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

// NewDocumentService constructs a DocumentService.
func NewDocumentService(db *sql.DB, m repomanager.RepositoryManager) *DocumentService {
	return &DocumentService{db: db, repomanager: m}
}

// Create inserts a new document owned by userID. The id is server-generated
// here; documents created offline arrive with client ids via sync instead.
func (s *DocumentService) Create(ctx context.Context, userID string, req *api.CreateDocumentRequest) (*models.Document, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorValidation, err)
	}

	tags := req.UrgencyTags
	if tags == nil {
		tags = []api.UrgencyTag{}
	}

	now := time.Now().UTC()
	doc := &models.Document{
		ID:             uuid.NewString(),
		UserID:         userID,
		Title:          req.Title,
		Location:       req.Location,
		Description:    req.Description,
		Category:       req.Category,
		UrgencyTags:    tags,
		ExpirationDate: req.ExpirationDate,
		ImageData:      req.ImageData,
		CreatedAt:      now,
		UpdatedAt:      now,
		SyncStatus:     api.SyncStatusSynced,
	}

	repo := s.repomanager.Documents(s.db)
	if err := repo.Insert(ctx, doc); err != nil {
		return nil, fmt.Errorf("error creating document: %v", err)
	}
	return doc, nil
}

// Update applies a partial update; nil request fields leave the stored values
// untouched.
func (s *DocumentService) Update(ctx context.Context, userID, id string, req *api.UpdateDocumentRequest) (*models.Document, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorValidation, err)
	}

	repo := s.repomanager.Documents(s.db)
	doc, err := repo.GetByID(ctx, userID, id)
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
	doc.UpdatedAt = time.Now().UTC()

	if err := repo.Save(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Delete tombstones a document so the deletion propagates to other devices
// on their next pull.
func (s *DocumentService) Delete(ctx context.Context, userID, id string) error {
	repo := s.repomanager.Documents(s.db)
	ok, err := repo.MarkDeleted(ctx, userID, id, time.Now().UTC(), "")
	if err != nil {
		return err
	}
	if !ok {
		return common.ErrorNotFound
	}
	return nil
}

func (s *DocumentService) Get(ctx context.Context, userID, id string) (*models.Document, error) {
	return s.repomanager.Documents(s.db).GetByID(ctx, userID, id)
}

func (s *DocumentService) GetAll(ctx context.Context, userID string) ([]*models.Document, error) {
	return s.repomanager.Documents(s.db).SelectAll(ctx, userID)
}

func (s *DocumentService) Search(ctx context.Context, userID, query string) ([]*models.Document, error) {
	return s.repomanager.Documents(s.db).Search(ctx, userID, query)
}

func (s *DocumentService) GetByCategory(ctx context.Context, userID string, category api.Category) ([]*models.Document, error) {
	if !validCategory(category) {
		return nil, fmt.Errorf("%w: unknown category %q", common.ErrorValidation, category)
	}
	return s.repomanager.Documents(s.db).SelectByCategory(ctx, userID, category)
}

// GetExpiring returns live documents expiring within daysAhead days from now,
// window bounds inclusive.
func (s *DocumentService) GetExpiring(ctx context.Context, userID string, daysAhead int) ([]*models.Document, error) {
	if daysAhead <= 0 {
		daysAhead = DefaultExpiringWindowDays
	}
	now := time.Now().UTC()
	return s.repomanager.Documents(s.db).SelectExpiring(ctx, userID, now, now.AddDate(0, 0, daysAhead))
}

func (s *DocumentService) Stats(ctx context.Context, userID string) (*api.Stats, error) {
	until := time.Now().UTC().AddDate(0, 0, DefaultExpiringWindowDays)
	return s.repomanager.Documents(s.db).Stats(ctx, userID, until)
}

func validCategory(c api.Category) bool {
	for _, v := range api.Categories {
		if v == c {
			return true
		}
	}
	return false
}

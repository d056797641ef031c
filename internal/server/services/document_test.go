package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/avoronovs/papertrail/internal/api"
	"github.com/avoronovs/papertrail/internal/common"
	"github.com/avoronovs/papertrail/internal/server/models"
)

func TestDocumentCreate_AssignsServerFields(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	docs := &fakeDocumentsRepo{}
	s := NewDocumentService(db, &fakeRepoManager{documents: docs})

	doc, err := s.Create(context.Background(), "u-1", &api.CreateDocumentRequest{
		Title: "Passport", Location: "Safe", Category: api.CategoryIDDocument,
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if doc.ID == "" || doc.UserID != "u-1" {
		t.Fatalf("unexpected document: %+v", doc)
	}
	if doc.SyncStatus != api.SyncStatusSynced {
		t.Fatalf("server-created documents are already synced, got %q", doc.SyncStatus)
	}
	if doc.UrgencyTags == nil {
		t.Fatal("expected empty tag slice, not nil")
	}
	if docs.inserted != doc {
		t.Fatal("expected document stored")
	}
}

func TestDocumentCreate_Invalid(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	s := NewDocumentService(db, &fakeRepoManager{documents: &fakeDocumentsRepo{}})

	_, err := s.Create(context.Background(), "u-1", &api.CreateDocumentRequest{
		Title: "Passport", Location: "Safe", Category: "misc",
	})
	if !errors.Is(err, common.ErrorValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDocumentUpdate_MergesOnlyProvidedFields(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	stored := &models.Document{
		ID: "d-1", UserID: "u-1", Title: "Passport", Location: "Safe",
		Description: "old", Category: api.CategoryIDDocument,
		UpdatedAt: time.Now().Add(-time.Hour),
	}
	docs := &fakeDocumentsRepo{getByIDOut: stored}
	s := NewDocumentService(db, &fakeRepoManager{documents: docs})

	newTitle := "Passport (renewed)"
	doc, err := s.Update(context.Background(), "u-1", "d-1", &api.UpdateDocumentRequest{
		Title: &newTitle,
	})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if doc.Title != newTitle || doc.Description != "old" || doc.Location != "Safe" {
		t.Fatalf("unexpected merge result: %+v", doc)
	}
	if !doc.UpdatedAt.After(stored.CreatedAt) {
		t.Fatal("expected updatedAt to advance")
	}
	if docs.saved == nil {
		t.Fatal("expected document saved")
	}
}

func TestDocumentUpdate_UnknownID(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	s := NewDocumentService(db, &fakeRepoManager{documents: &fakeDocumentsRepo{}})

	newTitle := "x"
	_, err := s.Update(context.Background(), "u-1", "missing", &api.UpdateDocumentRequest{
		Title: &newTitle,
	})
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
}

func TestGetExpiring_DefaultsWindow(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	docs := &fakeDocumentsRepo{}
	s := NewDocumentService(db, &fakeRepoManager{documents: docs})

	if _, err := s.GetExpiring(context.Background(), "u-1", 0); err != nil {
		t.Fatalf("GetExpiring error: %v", err)
	}

	window := docs.expiringUntil.Sub(docs.expiringFrom)
	want := time.Duration(DefaultExpiringWindowDays) * 24 * time.Hour
	if window < want-time.Hour || window > want+time.Hour {
		t.Fatalf("unexpected window %v", window)
	}
}

func TestGetByCategory_RejectsUnknown(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	s := NewDocumentService(db, &fakeRepoManager{documents: &fakeDocumentsRepo{}})

	_, err := s.GetByCategory(context.Background(), "u-1", "misc")
	if !errors.Is(err, common.ErrorValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

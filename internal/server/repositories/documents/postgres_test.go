package documents

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/avoronovs/papertrail/internal/api"
	"github.com/avoronovs/papertrail/internal/common"
	"github.com/avoronovs/papertrail/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func sampleDoc() *models.Document {
	now := time.Now().Truncate(time.Second)
	return &models.Document{
		ID:                 "d-1",
		UserID:             "u-1",
		Title:              "Passport",
		Location:           "Safe",
		Category:           api.CategoryIDDocument,
		UrgencyTags:        []api.UrgencyTag{api.UrgencyExpiresSoon},
		CreatedAt:          now,
		UpdatedAt:          now,
		SyncStatus:         api.SyncStatusSynced,
		LastModifiedDevice: "dev-1",
	}
}

func docRows(docs ...*models.Document) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"id", "user_id", "title", "location", "description", "category", "urgency_tags",
		"expiration_date", "image_data", "image_key", "created_at", "updated_at",
		"sync_status", "last_modified_device", "deleted",
	})
	for _, d := range docs {
		tags, _ := marshalTags(d.UrgencyTags)
		rows.AddRow(d.ID, d.UserID, d.Title, d.Location, d.Description, d.Category, tags,
			d.ExpirationDate, d.ImageData, d.ImageKey, d.CreatedAt, d.UpdatedAt,
			d.SyncStatus, d.LastModifiedDevice, d.Deleted)
	}
	return rows
}

func TestApplyPush_Accepted(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)INSERT\s+INTO\s+documents.*ON\s+CONFLICT\s*\(id\)\s*DO\s+UPDATE.*documents\.updated_at\s*<=\s*EXCLUDED\.updated_at`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	accepted, err := repo.ApplyPush(context.Background(), sampleDoc())
	if err != nil {
		t.Fatalf("ApplyPush error: %v", err)
	}
	if !accepted {
		t.Fatal("expected push to be accepted")
	}
}

func TestApplyPush_LosesToNewerRow(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)INSERT\s+INTO\s+documents.*ON\s+CONFLICT`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	accepted, err := repo.ApplyPush(context.Background(), sampleDoc())
	if err != nil {
		t.Fatalf("ApplyPush error: %v", err)
	}
	if accepted {
		t.Fatal("expected push to lose")
	}
}

func TestGetByID_DecodesTags(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	want := sampleDoc()
	mock.ExpectQuery(`(?s)SELECT\s+id,.*FROM\s+documents\s+WHERE\s+id\s*=\s*\$1\s+AND\s+user_id\s*=\s*\$2\s+AND\s+NOT\s+deleted`).
		WithArgs("d-1", "u-1").
		WillReturnRows(docRows(want))

	got, err := repo.GetByID(context.Background(), "u-1", "d-1")
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if got.Title != "Passport" {
		t.Fatalf("unexpected title %q", got.Title)
	}
	if len(got.UrgencyTags) != 1 || got.UrgencyTags[0] != api.UrgencyExpiresSoon {
		t.Fatalf("unexpected tags %v", got.UrgencyTags)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT\s+id,`).
		WithArgs("missing", "u-1").
		WillReturnRows(docRows())

	_, err := repo.GetByID(context.Background(), "u-1", "missing")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
}

func TestSave_UnknownRow(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)UPDATE\s+documents\s+SET\s+title`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Save(context.Background(), sampleDoc())
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
}

func TestSearch_EscapesPatternMetacharacters(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)title\s+ILIKE\s+\$2\s+ESCAPE`).
		WithArgs("u-1", `%50\% off\_deal%`).
		WillReturnRows(docRows())

	if _, err := repo.Search(context.Background(), "u-1", "50% off_deal"); err != nil {
		t.Fatalf("Search error: %v", err)
	}
}

func TestSelectUpdatedSince_NilFetchesEverything(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)WHERE\s+user_id\s*=\s*\$1\s+ORDER\s+BY\s+updated_at\s+DESC`).
		WithArgs("u-1").
		WillReturnRows(docRows(sampleDoc()))

	docs, err := repo.SelectUpdatedSince(context.Background(), "u-1", nil)
	if err != nil {
		t.Fatalf("SelectUpdatedSince error: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("expected 1 doc, got %d", len(docs))
	}
}

func TestSelectUpdatedSince_FiltersStrictlyAfter(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	since := time.Now().Add(-time.Hour)
	mock.ExpectQuery(`(?s)AND\s+updated_at\s*>\s*\$2\s+ORDER\s+BY\s+updated_at\s+DESC`).
		WithArgs("u-1", since).
		WillReturnRows(docRows())

	docs, err := repo.SelectUpdatedSince(context.Background(), "u-1", &since)
	if err != nil {
		t.Fatalf("SelectUpdatedSince error: %v", err)
	}
	if len(docs) != 0 {
		t.Fatalf("expected no docs, got %d", len(docs))
	}
}

func TestMarkDeleted(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	at := time.Now()
	mock.ExpectExec(`(?s)UPDATE\s+documents\s+SET\s+deleted\s*=\s*true.*AND\s+NOT\s+deleted`).
		WithArgs("d-1", "u-1", at, "dev-1", string(api.SyncStatusSynced)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := repo.MarkDeleted(context.Background(), "u-1", "d-1", at, "dev-1")
	if err != nil {
		t.Fatalf("MarkDeleted error: %v", err)
	}
	if !ok {
		t.Fatal("expected tombstone to be written")
	}
}

func TestMarkDeleted_AlreadyTombstone(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE\s+documents\s+SET\s+deleted`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.MarkDeleted(context.Background(), "u-1", "d-1", time.Now(), "dev-1")
	if err != nil {
		t.Fatalf("MarkDeleted error: %v", err)
	}
	if ok {
		t.Fatal("expected no-op")
	}
}

func TestMarkSynced_EmptyIDsSkipsQuery(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	if err := repo.MarkSynced(context.Background(), "u-1", nil); err != nil {
		t.Fatalf("MarkSynced error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestStats(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)SELECT\s+count\(\*\),`).
		WillReturnRows(sqlmock.NewRows([]string{"total", "expiring", "categories"}).AddRow(5, 2, 3))

	stats, err := repo.Stats(context.Background(), "u-1", time.Now().AddDate(0, 0, 30))
	if err != nil {
		t.Fatalf("Stats error: %v", err)
	}
	if stats.TotalDocs != 5 || stats.ExpiringDocs != 2 || stats.Categories != 3 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestPurgeTombstones(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`DELETE\s+FROM\s+documents\s+WHERE\s+deleted\s+AND\s+updated_at\s*<\s*\$1`).
		WillReturnResult(sqlmock.NewResult(0, 4))

	n, err := repo.PurgeTombstones(context.Background(), time.Now().AddDate(0, 0, -30))
	if err != nil {
		t.Fatalf("PurgeTombstones error: %v", err)
	}
	if n != 4 {
		t.Fatalf("expected 4 purged, got %d", n)
	}
}

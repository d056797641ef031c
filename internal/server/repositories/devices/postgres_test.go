package devices

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
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

func TestCreate_FillsGeneratedColumns(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "last_seen_at", "is_active", "created_at"}).
		AddRow("dev-1", now, true, now)
	mock.ExpectQuery(`(?s)INSERT\s+INTO\s+devices\s*\(user_id,\s*device_name,\s*device_type,\s*user_agent\)`).
		WithArgs("u-1", "laptop", "desktop", "papertrail-cli/1.0").
		WillReturnRows(rows)

	device := &models.Device{
		UserID: "u-1", DeviceName: "laptop", DeviceType: "desktop", UserAgent: "papertrail-cli/1.0",
	}
	if err := repo.Create(context.Background(), device); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if device.ID != "dev-1" || !device.IsActive {
		t.Fatalf("unexpected device: %+v", device)
	}
}

func TestTouch_UnknownDevice(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE\s+devices\s+SET\s+last_seen_at`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Touch(context.Background(), "u-1", "dev-gone", time.Now())
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
}

func TestListActive(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "user_id", "device_name", "device_type", "user_agent",
		"last_seen_at", "is_active", "created_at",
	}).
		AddRow("dev-1", "u-1", "laptop", "desktop", "", now, true, now).
		AddRow("dev-2", "u-1", "phone", "mobile", "", now.Add(-time.Hour), true, now)
	mock.ExpectQuery(`(?s)FROM\s+devices\s+WHERE\s+user_id\s*=\s*\$1\s+AND\s+is_active`).
		WithArgs("u-1").
		WillReturnRows(rows)

	devices, err := repo.ListActive(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("ListActive error: %v", err)
	}
	if len(devices) != 2 || devices[0].ID != "dev-1" {
		t.Fatalf("unexpected devices: %+v", devices)
	}
}

func TestDeactivate_AlreadyInactive(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE\s+devices\s+SET\s+is_active\s*=\s*false`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Deactivate(context.Background(), "u-1", "dev-1")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
}

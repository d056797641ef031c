package services

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/avoronovs/papertrail/internal/common"
	"github.com/avoronovs/papertrail/internal/dbx"
	"github.com/avoronovs/papertrail/internal/logging"
	"github.com/avoronovs/papertrail/internal/server/auth"
	"github.com/avoronovs/papertrail/internal/server/config"
	"github.com/avoronovs/papertrail/internal/server/models"
	devicesrepo "github.com/avoronovs/papertrail/internal/server/repositories/devices"
	documentsrepo "github.com/avoronovs/papertrail/internal/server/repositories/documents"
	synchistoryrepo "github.com/avoronovs/papertrail/internal/server/repositories/synchistory"
	usersrepo "github.com/avoronovs/papertrail/internal/server/repositories/users"
)

// --- helpers shared by the service tests ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.SecretKey = "k"
	cfg.AccessTokenValidityDuration = time.Hour
	return cfg
}

type fakeUsersRepo struct {
	createOut *models.User
	createErr error

	getOut *models.User
	getErr error

	lastSyncUser string
	lastSyncErr  error
}

func (f *fakeUsersRepo) Create(ctx context.Context, email, passwordHash string) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.createOut != nil {
		return f.createOut, nil
	}
	return &models.User{ID: "u-1", Email: email, PasswordHash: passwordHash}, nil
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

func (f *fakeUsersRepo) UpdateLastSync(ctx context.Context, userID string, at time.Time) error {
	f.lastSyncUser = userID
	return f.lastSyncErr
}

type fakeRepoManager struct {
	users       *fakeUsersRepo
	documents   *fakeDocumentsRepo
	devices     *fakeDevicesRepo
	syncHistory *fakeSyncHistoryRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository       { return m.users }
func (m *fakeRepoManager) Documents(db dbx.DBTX) documentsrepo.Repository {
	return m.documents
}
func (m *fakeRepoManager) Devices(db dbx.DBTX) devicesrepo.Repository { return m.devices }
func (m *fakeRepoManager) SyncHistory(db dbx.DBTX) synchistoryrepo.Repository {
	return m.syncHistory
}

// --- tests ---

func TestRegister_Success(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{users: &fakeUsersRepo{}}
	s := NewUserService(db, rm, testConfig())

	user, token, err := s.Register(context.Background(), "alice@example.com", "hunter22")
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if user.Email != "alice@example.com" {
		t.Fatalf("unexpected user: %+v", user)
	}
	if token == "" {
		t.Fatal("expected access token")
	}

	userID, err := auth.GetUserIDFromToken(token, []byte("k"))
	if err != nil {
		t.Fatalf("token does not validate: %v", err)
	}
	if userID != "u-1" {
		t.Fatalf("unexpected subject %q", userID)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{users: &fakeUsersRepo{createErr: common.ErrorAlreadyExists}}
	s := NewUserService(db, rm, testConfig())

	_, _, err := s.Register(context.Background(), "alice@example.com", "hunter22")
	if !errors.Is(err, common.ErrorAlreadyExists) {
		t.Fatalf("expected ErrorAlreadyExists, got %v", err)
	}
}

func TestLogin_Success(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	hash, err := auth.HashPassword("hunter22")
	if err != nil {
		t.Fatal(err)
	}
	rm := &fakeRepoManager{users: &fakeUsersRepo{
		getOut: &models.User{ID: "u-1", Email: "alice@example.com", PasswordHash: hash},
	}}
	s := NewUserService(db, rm, testConfig())

	user, token, err := s.Login(context.Background(), "alice@example.com", "hunter22")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if user.ID != "u-1" || token == "" {
		t.Fatalf("unexpected result: %+v token=%q", user, token)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	hash, err := auth.HashPassword("hunter22")
	if err != nil {
		t.Fatal(err)
	}
	rm := &fakeRepoManager{users: &fakeUsersRepo{
		getOut: &models.User{ID: "u-1", PasswordHash: hash},
	}}
	s := NewUserService(db, rm, testConfig())

	_, _, err = s.Login(context.Background(), "alice@example.com", "nope")
	if !errors.Is(err, common.ErrorUnauthorized) {
		t.Fatalf("expected ErrorUnauthorized, got %v", err)
	}
}

func TestLogin_UnknownEmailLooksLikeWrongPassword(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{users: &fakeUsersRepo{getErr: common.ErrorNotFound}}
	s := NewUserService(db, rm, testConfig())

	_, _, err := s.Login(context.Background(), "nobody@example.com", "whatever")
	if !errors.Is(err, common.ErrorUnauthorized) {
		t.Fatalf("expected ErrorUnauthorized, got %v", err)
	}
}

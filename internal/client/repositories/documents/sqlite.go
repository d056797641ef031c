package documents

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/avoronovs/papertrail/internal/api"
	"github.com/avoronovs/papertrail/internal/client/models"
	"github.com/avoronovs/papertrail/internal/common"
	"github.com/avoronovs/papertrail/internal/dbx"
)

// Timestamps are stored as integer unix nanoseconds so range queries and
// ordering work without string parsing; urgency tags are stored as a JSON
// array.

const selectColumns = `id, title, location, description, category, urgency_tags,
	expiration_date, image_data, image_key, created_at, updated_at,
	sync_status, last_modified_device, deleted`

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Insert adds a brand-new record.
func (r *SQLiteRepository) Insert(ctx context.Context, doc *models.Document) error {
	tags, err := json.Marshal(doc.UrgencyTags)
	if err != nil {
		return fmt.Errorf("failed to encode urgency tags: %w", err)
	}
	query := `INSERT INTO documents (id, title, location, description, category, urgency_tags,
			expiration_date, image_data, image_key, created_at, updated_at,
			sync_status, last_modified_device, deleted)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		doc.ID, doc.Title, doc.Location, doc.Description, string(doc.Category), string(tags),
		nullableUnixNano(doc.ExpirationDate), doc.ImageData, doc.ImageKey,
		doc.CreatedAt.UnixNano(), doc.UpdatedAt.UnixNano(),
		string(doc.SyncStatus), doc.LastModifiedDevice, boolToInt(doc.Deleted))
	if err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}
	return nil
}

// CreateOrUpdate upserts a record by id. Used both by the repository API
// (local edits) and by the sync engine when applying server records.
func (r *SQLiteRepository) CreateOrUpdate(ctx context.Context, doc *models.Document) error {
	tags, err := json.Marshal(doc.UrgencyTags)
	if err != nil {
		return fmt.Errorf("failed to encode urgency tags: %w", err)
	}
	query := `INSERT INTO documents (id, title, location, description, category, urgency_tags,
			expiration_date, image_data, image_key, created_at, updated_at,
			sync_status, last_modified_device, deleted)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			location = excluded.location,
			description = excluded.description,
			category = excluded.category,
			urgency_tags = excluded.urgency_tags,
			expiration_date = excluded.expiration_date,
			image_data = excluded.image_data,
			image_key = excluded.image_key,
			updated_at = excluded.updated_at,
			sync_status = excluded.sync_status,
			last_modified_device = excluded.last_modified_device,
			deleted = excluded.deleted`
	_, err = r.db.ExecContext(ctx, query,
		doc.ID, doc.Title, doc.Location, doc.Description, string(doc.Category), string(tags),
		nullableUnixNano(doc.ExpirationDate), doc.ImageData, doc.ImageKey,
		doc.CreatedAt.UnixNano(), doc.UpdatedAt.UnixNano(),
		string(doc.SyncStatus), doc.LastModifiedDevice, boolToInt(doc.Deleted))
	if err != nil {
		return fmt.Errorf("failed to upsert document: %w", err)
	}
	return nil
}

// GetByID returns a single non-tombstoned record, or common.ErrorNotFound.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Document, error) {
	query := `SELECT ` + selectColumns + ` FROM documents WHERE deleted=0 AND id=?`
	row := r.db.QueryRowContext(ctx, query, id)

	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select document: %w", err)
	}
	return doc, nil
}

// GetAll lists all live records, most recently updated first; ties keep
// insertion order.
func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.Document, error) {
	query := `SELECT ` + selectColumns + ` FROM documents WHERE deleted=0
		ORDER BY updated_at DESC, rowid ASC`
	return r.queryDocuments(ctx, query)
}

// likeEscaper neutralizes LIKE metacharacters so user input always matches
// literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Search matches the query case-insensitively as a literal substring of
// title, location, description or category (OR across fields).
func (r *SQLiteRepository) Search(ctx context.Context, query string) ([]models.Document, error) {
	pattern := "%" + likeEscaper.Replace(strings.ToLower(query)) + "%"
	q := `SELECT ` + selectColumns + ` FROM documents WHERE deleted=0 AND (
			lower(title) LIKE ? ESCAPE '\' OR
			lower(location) LIKE ? ESCAPE '\' OR
			lower(description) LIKE ? ESCAPE '\' OR
			lower(category) LIKE ? ESCAPE '\'
		)
		ORDER BY updated_at DESC, rowid ASC`
	return r.queryDocuments(ctx, q, pattern, pattern, pattern, pattern)
}

// GetByCategory returns live records with an exact category match.
func (r *SQLiteRepository) GetByCategory(ctx context.Context, category api.Category) ([]models.Document, error) {
	query := `SELECT ` + selectColumns + ` FROM documents WHERE deleted=0 AND category=?
		ORDER BY updated_at DESC, rowid ASC`
	return r.queryDocuments(ctx, query, string(category))
}

// GetExpiring returns live records whose expiration date falls in [from, to]
// inclusive. Records without an expiration date are excluded.
func (r *SQLiteRepository) GetExpiring(ctx context.Context, from, to time.Time) ([]models.Document, error) {
	query := `SELECT ` + selectColumns + ` FROM documents
		WHERE deleted=0 AND expiration_date IS NOT NULL AND expiration_date >= ? AND expiration_date <= ?
		ORDER BY updated_at DESC, rowid ASC`
	return r.queryDocuments(ctx, query, from.UnixNano(), to.UnixNano())
}

// Stats recomputes the aggregate counters on demand.
func (r *SQLiteRepository) Stats(ctx context.Context, expiringFrom, expiringTo time.Time) (*api.Stats, error) {
	stats := &api.Stats{}

	err := r.db.QueryRowContext(ctx,
		`SELECT count(*) FROM documents WHERE deleted=0`).Scan(&stats.TotalDocs)
	if err != nil {
		return nil, fmt.Errorf("failed to count documents: %w", err)
	}

	err = r.db.QueryRowContext(ctx,
		`SELECT count(*) FROM documents
		 WHERE deleted=0 AND expiration_date IS NOT NULL AND expiration_date >= ? AND expiration_date <= ?`,
		expiringFrom.UnixNano(), expiringTo.UnixNano()).Scan(&stats.ExpiringDocs)
	if err != nil {
		return nil, fmt.Errorf("failed to count expiring documents: %w", err)
	}

	err = r.db.QueryRowContext(ctx,
		`SELECT count(DISTINCT category) FROM documents WHERE deleted=0`).Scan(&stats.Categories)
	if err != nil {
		return nil, fmt.Errorf("failed to count categories: %w", err)
	}

	return stats, nil
}

// GetAllPending returns records awaiting upload, tombstones included.
func (r *SQLiteRepository) GetAllPending(ctx context.Context) ([]*models.Document, error) {
	query := `SELECT ` + selectColumns + ` FROM documents WHERE sync_status=?
		ORDER BY updated_at ASC, rowid ASC`
	rows, err := r.db.QueryContext(ctx, query, string(api.SyncStatusPending))
	if err != nil {
		return nil, fmt.Errorf("failed to select pending documents: %w", err)
	}
	defer rows.Close()

	var result []*models.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// MarkSynced bulk-flags the given ids as synced.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	placeholders := strings.Repeat("?,", len(ids)-1) + "?"
	args := make([]any, 0, len(ids)+1)
	args = append(args, string(api.SyncStatusSynced))
	for _, id := range ids {
		args = append(args, id)
	}
	query := `UPDATE documents SET sync_status=? WHERE id IN (` + placeholders + `)`
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to mark documents synced: %w", err)
	}
	return nil
}

// MarkDeleted tombstones a record: the row is kept, flagged deleted and
// pending, with updatedAt bumped so the deletion wins last-writer-wins on the
// server. Returns false when no live record has the id.
func (r *SQLiteRepository) MarkDeleted(ctx context.Context, id string, at time.Time, deviceID string) (bool, error) {
	query := `UPDATE documents
		SET deleted=1, updated_at=?, sync_status=?, last_modified_device=?
		WHERE id=? AND deleted=0`
	res, err := r.db.ExecContext(ctx, query, at.UnixNano(), string(api.SyncStatusPending), deviceID, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete document: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n == 1, nil
}

// Remove physically drops a row. Used when the server confirms a tombstone or
// when a remote deletion is applied locally.
func (r *SQLiteRepository) Remove(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE id=?`, id); err != nil {
		return fmt.Errorf("failed to remove document: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) queryDocuments(ctx context.Context, query string, args ...any) ([]models.Document, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select documents: %w", err)
	}
	defer rows.Close()

	var result []models.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*models.Document, error) {
	var (
		doc        models.Document
		category   string
		tags       string
		expiration sql.NullInt64
		createdAt  int64
		updatedAt  int64
		status     string
		deleted    int
	)
	err := row.Scan(&doc.ID, &doc.Title, &doc.Location, &doc.Description, &category, &tags,
		&expiration, &doc.ImageData, &doc.ImageKey, &createdAt, &updatedAt,
		&status, &doc.LastModifiedDevice, &deleted)
	if err != nil {
		return nil, err
	}

	doc.Category = api.Category(category)
	doc.SyncStatus = api.SyncStatus(status)
	doc.CreatedAt = time.Unix(0, createdAt).UTC()
	doc.UpdatedAt = time.Unix(0, updatedAt).UTC()
	doc.Deleted = deleted != 0
	if expiration.Valid {
		t := time.Unix(0, expiration.Int64).UTC()
		doc.ExpirationDate = &t
	}
	if err := json.Unmarshal([]byte(tags), &doc.UrgencyTags); err != nil {
		return nil, fmt.Errorf("failed to decode urgency tags: %w", err)
	}
	return &doc, nil
}

func nullableUnixNano(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UnixNano()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

package documents

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/avoronovs/papertrail/internal/api"
	"github.com/avoronovs/papertrail/internal/common"
	"github.com/avoronovs/papertrail/internal/dbx"
	"github.com/avoronovs/papertrail/internal/server/models"
)

const documentColumns = `id, user_id, title, location, description, category, urgency_tags,
	expiration_date, image_data, image_key, created_at, updated_at, sync_status,
	last_modified_device, deleted`

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Insert(ctx context.Context, doc *models.Document) error {
	tags, err := marshalTags(doc.UrgencyTags)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO documents (` + documentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err = r.db.ExecContext(ctx, query,
		doc.ID, doc.UserID, doc.Title, doc.Location, doc.Description, doc.Category, tags,
		doc.ExpirationDate, doc.ImageData, doc.ImageKey, doc.CreatedAt, doc.UpdatedAt,
		doc.SyncStatus, doc.LastModifiedDevice, doc.Deleted)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Save overwrites an existing row owned by doc.UserID unconditionally. It is
// the REST update path; sync pushes go through ApplyPush instead.
func (r *PostgresRepository) Save(ctx context.Context, doc *models.Document) error {
	tags, err := marshalTags(doc.UrgencyTags)
	if err != nil {
		return err
	}

	query := `
		UPDATE documents
		SET title = $3, location = $4, description = $5, category = $6, urgency_tags = $7,
			expiration_date = $8, image_data = $9, image_key = $10, updated_at = $11,
			sync_status = $12, last_modified_device = $13, deleted = $14
		WHERE id = $1 AND user_id = $2`
	res, err := r.db.ExecContext(ctx, query,
		doc.ID, doc.UserID, doc.Title, doc.Location, doc.Description, doc.Category, tags,
		doc.ExpirationDate, doc.ImageData, doc.ImageKey, doc.UpdatedAt,
		doc.SyncStatus, doc.LastModifiedDevice, doc.Deleted)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) ApplyPush(ctx context.Context, doc *models.Document) (bool, error) {
	tags, err := marshalTags(doc.UrgencyTags)
	if err != nil {
		return false, err
	}

	// The WHERE clause on the conflict arm makes the update a no-op when the
	// stored row is newer, or when the id belongs to another user. Zero rows
	// affected means the push lost.
	query := `
		INSERT INTO documents (` + documentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			location = EXCLUDED.location,
			description = EXCLUDED.description,
			category = EXCLUDED.category,
			urgency_tags = EXCLUDED.urgency_tags,
			expiration_date = EXCLUDED.expiration_date,
			image_data = EXCLUDED.image_data,
			image_key = EXCLUDED.image_key,
			updated_at = EXCLUDED.updated_at,
			sync_status = EXCLUDED.sync_status,
			last_modified_device = EXCLUDED.last_modified_device,
			deleted = EXCLUDED.deleted
		WHERE documents.user_id = EXCLUDED.user_id
		  AND documents.updated_at <= EXCLUDED.updated_at`
	res, err := r.db.ExecContext(ctx, query,
		doc.ID, doc.UserID, doc.Title, doc.Location, doc.Description, doc.Category, tags,
		doc.ExpirationDate, doc.ImageData, doc.ImageKey, doc.CreatedAt, doc.UpdatedAt,
		api.SyncStatusSynced, doc.LastModifiedDevice, doc.Deleted)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return affected == 1, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, userID, id string) (*models.Document, error) {
	query := `
		SELECT ` + documentColumns + ` FROM documents
		WHERE id = $1 AND user_id = $2 AND NOT deleted`
	rows, err := r.db.QueryContext(ctx, query, id, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	docs, err := scanDocuments(rows)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, common.ErrorNotFound
	}
	return docs[0], nil
}

func (r *PostgresRepository) GetAny(ctx context.Context, userID, id string) (*models.Document, error) {
	query := `
		SELECT ` + documentColumns + ` FROM documents
		WHERE id = $1 AND user_id = $2`
	rows, err := r.db.QueryContext(ctx, query, id, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	docs, err := scanDocuments(rows)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, common.ErrorNotFound
	}
	return docs[0], nil
}

func (r *PostgresRepository) SelectAll(ctx context.Context, userID string) ([]*models.Document, error) {
	query := `
		SELECT ` + documentColumns + ` FROM documents
		WHERE user_id = $1 AND NOT deleted
		ORDER BY updated_at DESC, id ASC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return scanDocuments(rows)
}

// likeEscaper neutralizes LIKE metacharacters so user input always matches
// literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (r *PostgresRepository) Search(ctx context.Context, userID, query string) ([]*models.Document, error) {
	stmt := `
		SELECT ` + documentColumns + ` FROM documents
		WHERE user_id = $1 AND NOT deleted
		  AND (title ILIKE $2 ESCAPE '\' OR description ILIKE $2 ESCAPE '\' OR location ILIKE $2 ESCAPE '\')
		ORDER BY updated_at DESC, id ASC`
	rows, err := r.db.QueryContext(ctx, stmt, userID, "%"+likeEscaper.Replace(query)+"%")
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return scanDocuments(rows)
}

func (r *PostgresRepository) SelectByCategory(ctx context.Context, userID string, category api.Category) ([]*models.Document, error) {
	query := `
		SELECT ` + documentColumns + ` FROM documents
		WHERE user_id = $1 AND category = $2 AND NOT deleted
		ORDER BY updated_at DESC, id ASC`
	rows, err := r.db.QueryContext(ctx, query, userID, category)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return scanDocuments(rows)
}

// SelectExpiring returns live documents with an expiration date inside
// [from, until], both bounds inclusive.
func (r *PostgresRepository) SelectExpiring(ctx context.Context, userID string, from, until time.Time) ([]*models.Document, error) {
	query := `
		SELECT ` + documentColumns + ` FROM documents
		WHERE user_id = $1 AND NOT deleted
		  AND expiration_date IS NOT NULL
		  AND expiration_date >= $2 AND expiration_date <= $3
		ORDER BY expiration_date ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, query, userID, from, until)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return scanDocuments(rows)
}

func (r *PostgresRepository) SelectUpdatedSince(ctx context.Context, userID string, since *time.Time) ([]*models.Document, error) {
	query := `
		SELECT ` + documentColumns + ` FROM documents
		WHERE user_id = $1`
	args := []any{userID}
	if since != nil {
		query += ` AND updated_at > $2`
		args = append(args, *since)
	}
	query += ` ORDER BY updated_at DESC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return scanDocuments(rows)
}

func (r *PostgresRepository) SelectConflicts(ctx context.Context, userID string) ([]*models.Document, error) {
	query := `
		SELECT ` + documentColumns + ` FROM documents
		WHERE user_id = $1 AND sync_status = $2 AND NOT deleted
		ORDER BY updated_at DESC, id ASC`
	rows, err := r.db.QueryContext(ctx, query, userID, api.SyncStatusConflict)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return scanDocuments(rows)
}

func (r *PostgresRepository) Stats(ctx context.Context, userID string, expiringUntil time.Time) (*api.Stats, error) {
	query := `
		SELECT count(*),
			count(*) FILTER (WHERE expiration_date IS NOT NULL AND expiration_date <= $2 AND expiration_date >= now()),
			count(DISTINCT category)
		FROM documents
		WHERE user_id = $1 AND NOT deleted`

	stats := &api.Stats{}
	err := r.db.QueryRowContext(ctx, query, userID, expiringUntil).
		Scan(&stats.TotalDocs, &stats.ExpiringDocs, &stats.Categories)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return stats, nil
}

func (r *PostgresRepository) MarkSynced(ctx context.Context, userID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	query := `
		UPDATE documents SET sync_status = $3
		WHERE user_id = $1 AND id = ANY($2)`
	if _, err := r.db.ExecContext(ctx, query, userID, ids, api.SyncStatusSynced); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) MarkConflict(ctx context.Context, userID, id string) error {
	query := `
		UPDATE documents SET sync_status = $3
		WHERE user_id = $1 AND id = $2`
	if _, err := r.db.ExecContext(ctx, query, userID, id, api.SyncStatusConflict); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// MarkDeleted turns a live row into a tombstone. Returns false when the row
// does not exist or is already a tombstone.
func (r *PostgresRepository) MarkDeleted(ctx context.Context, userID, id string, at time.Time, deviceID string) (bool, error) {
	query := `
		UPDATE documents
		SET deleted = true, updated_at = $3, last_modified_device = $4, sync_status = $5
		WHERE id = $1 AND user_id = $2 AND NOT deleted`
	res, err := r.db.ExecContext(ctx, query, id, userID, at, deviceID, api.SyncStatusSynced)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return affected == 1, nil
}

// PurgeTombstones removes tombstones older than the cutoff. Devices that have
// not synced since then will miss the deletion, so the cutoff should exceed
// any realistic offline period.
func (r *PostgresRepository) PurgeTombstones(ctx context.Context, olderThan time.Time) (int64, error) {
	query := `DELETE FROM documents WHERE deleted AND updated_at < $1`
	res, err := r.db.ExecContext(ctx, query, olderThan)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return affected, nil
}

func marshalTags(tags []api.UrgencyTag) ([]byte, error) {
	if tags == nil {
		tags = []api.UrgencyTag{}
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return nil, fmt.Errorf("failed to encode urgency tags: %w", err)
	}
	return data, nil
}

func scanDocuments(rows *sql.Rows) ([]*models.Document, error) {
	defer rows.Close()

	var docs []*models.Document
	for rows.Next() {
		doc := &models.Document{}
		var tags []byte
		err := rows.Scan(&doc.ID, &doc.UserID, &doc.Title, &doc.Location, &doc.Description,
			&doc.Category, &tags, &doc.ExpirationDate, &doc.ImageData, &doc.ImageKey,
			&doc.CreatedAt, &doc.UpdatedAt, &doc.SyncStatus, &doc.LastModifiedDevice, &doc.Deleted)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		if err := json.Unmarshal(tags, &doc.UrgencyTags); err != nil {
			return nil, fmt.Errorf("failed to decode urgency tags: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return docs, nil
}

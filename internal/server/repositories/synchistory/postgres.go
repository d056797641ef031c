package synchistory

import (
	"context"
	"fmt"

	"github.com/avoronovs/papertrail/internal/dbx"
	"github.com/avoronovs/papertrail/internal/server/models"
)

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create appends an audit entry and fills in the generated id and timestamp.
func (r *PostgresRepository) Create(ctx context.Context, entry *models.SyncHistoryEntry) error {
	query := `
		INSERT INTO sync_history (user_id, device_id, action, document_count, status, error_message)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query,
		entry.UserID, entry.DeviceID, entry.Action, entry.DocumentCount,
		entry.Status, entry.ErrorMessage).
		Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) List(ctx context.Context, userID string, limit int) ([]*models.SyncHistoryEntry, error) {
	query := `
		SELECT id, user_id, device_id, action, document_count, status, error_message, created_at
		FROM sync_history
		WHERE user_id = $1
		ORDER BY created_at DESC, id ASC
		LIMIT $2`
	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var entries []*models.SyncHistoryEntry
	for rows.Next() {
		entry := &models.SyncHistoryEntry{}
		err := rows.Scan(&entry.ID, &entry.UserID, &entry.DeviceID, &entry.Action,
			&entry.DocumentCount, &entry.Status, &entry.ErrorMessage, &entry.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return entries, nil
}

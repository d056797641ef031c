package devices

import (
	"context"
	"fmt"
	"time"

	"github.com/avoronovs/papertrail/internal/common"
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

// Create inserts a device row and fills in the generated id and timestamps.
func (r *PostgresRepository) Create(ctx context.Context, device *models.Device) error {
	query := `
		INSERT INTO devices (user_id, device_name, device_type, user_agent)
		VALUES ($1, $2, $3, $4)
		RETURNING id, last_seen_at, is_active, created_at`
	err := r.db.QueryRowContext(ctx, query,
		device.UserID, device.DeviceName, device.DeviceType, device.UserAgent).
		Scan(&device.ID, &device.LastSeenAt, &device.IsActive, &device.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Touch(ctx context.Context, userID, id string, at time.Time) error {
	query := `
		UPDATE devices SET last_seen_at = $3
		WHERE id = $1 AND user_id = $2 AND is_active`
	res, err := r.db.ExecContext(ctx, query, id, userID, at)
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

func (r *PostgresRepository) ListActive(ctx context.Context, userID string) ([]*models.Device, error) {
	query := `
		SELECT id, user_id, device_name, device_type, user_agent, last_seen_at, is_active, created_at
		FROM devices
		WHERE user_id = $1 AND is_active
		ORDER BY last_seen_at DESC, id ASC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var devices []*models.Device
	for rows.Next() {
		device := &models.Device{}
		err := rows.Scan(&device.ID, &device.UserID, &device.DeviceName, &device.DeviceType,
			&device.UserAgent, &device.LastSeenAt, &device.IsActive, &device.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		devices = append(devices, device)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return devices, nil
}

// Deactivate retires a device. The row is kept so sync history references
// stay resolvable.
func (r *PostgresRepository) Deactivate(ctx context.Context, userID, id string) error {
	query := `
		UPDATE devices SET is_active = false
		WHERE id = $1 AND user_id = $2 AND is_active`
	res, err := r.db.ExecContext(ctx, query, id, userID)
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

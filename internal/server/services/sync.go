package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/avoronovs/papertrail/internal/api"
	"github.com/avoronovs/papertrail/internal/common"
	"github.com/avoronovs/papertrail/internal/dbx"
	"github.com/avoronovs/papertrail/internal/logging"
	"github.com/avoronovs/papertrail/internal/server/config"
	"github.com/avoronovs/papertrail/internal/server/models"
	"github.com/avoronovs/papertrail/internal/server/repositories/repomanager"
)

// DefaultHistoryLimit caps how many audit rows a history listing returns.
const DefaultHistoryLimit = 50

// SyncService implements the reconcile protocol: incremental pulls, pushed
// batches applied under last-writer-wins, and the sync audit log.
type SyncService struct {
	db                 *sql.DB
	repomanager        repomanager.RepositoryManager
	tombstoneRetention time.Duration
	logger             logging.Logger
}

// NewSyncService constructs a SyncService.
func NewSyncService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, logger logging.Logger) *SyncService {
	return &SyncService{
		db:                 db,
		repomanager:        m,
		tombstoneRetention: cfg.TombstoneRetention,
		logger:             logger.With("component", "sync"),
	}
}

// DocumentsSince returns documents changed strictly after since, tombstones
// included so deletions propagate. A nil since returns the full set.
func (s *SyncService) DocumentsSince(ctx context.Context, userID string, since *time.Time) ([]*models.Document, error) {
	return s.repomanager.Documents(s.db).SelectUpdatedSince(ctx, userID, since)
}

// Push applies a pushed batch under last-writer-wins. Accepted ids are
// echoed back; for each losing record the stored winner is flagged conflicted
// and returned so the client can adopt it. The whole batch applies in one
// transaction and an audit entry is appended.
func (s *SyncService) Push(ctx context.Context, userID string, req *api.PushDocumentsRequest) (*api.PushDocumentsResponse, error) {
	resp := &api.PushDocumentsResponse{Accepted: []string{}}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Documents(tx)

		for _, pushed := range req.Documents {
			if pushed.ID == "" {
				return fmt.Errorf("%w: document without id", common.ErrorValidation)
			}

			doc := models.DocumentFromAPI(userID, pushed)
			accepted, err := repo.ApplyPush(ctx, doc)
			if err != nil {
				return err
			}
			if accepted {
				resp.Accepted = append(resp.Accepted, pushed.ID)
				continue
			}

			winner, err := repo.GetAny(ctx, userID, pushed.ID)
			if err != nil {
				return err
			}
			if !winner.Deleted {
				if err := repo.MarkConflict(ctx, userID, winner.ID); err != nil {
					return err
				}
				winner.SyncStatus = api.SyncStatusConflict
			}
			resp.Conflicts = append(resp.Conflicts, winner.ToAPI())
		}

		outcome := api.SyncOutcomeSuccess
		if len(resp.Conflicts) > 0 {
			outcome = api.SyncOutcomePartial
		}
		entry := &models.SyncHistoryEntry{
			UserID:        userID,
			DeviceID:      optionalID(req.DeviceID),
			Action:        api.SyncActionUp,
			DocumentCount: len(resp.Accepted),
			Status:        outcome,
		}
		return s.repomanager.SyncHistory(tx).Create(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "push applied",
		"accepted", len(resp.Accepted), "conflicts", len(resp.Conflicts))
	return resp, nil
}

// CompleteSync finishes a pull: the listed documents are flagged synced, the
// account watermark advances and an audit entry is appended.
func (s *SyncService) CompleteSync(ctx context.Context, userID string, req *api.CompleteSyncRequest) (*models.SyncHistoryEntry, error) {
	action := req.Action
	if action == "" {
		action = api.SyncActionDown
	}

	entry := &models.SyncHistoryEntry{
		UserID:        userID,
		DeviceID:      optionalID(req.DeviceID),
		Action:        action,
		DocumentCount: len(req.DocumentIDs),
		Status:        api.SyncOutcomeSuccess,
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Documents(tx).MarkSynced(ctx, userID, req.DocumentIDs); err != nil {
			return err
		}
		if err := s.repomanager.Users(tx).UpdateLastSync(ctx, userID, time.Now().UTC()); err != nil {
			return err
		}
		return s.repomanager.SyncHistory(tx).Create(ctx, entry)
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// RecordHistory appends an audit entry without touching documents. Clients
// use it to report failed attempts.
func (s *SyncService) RecordHistory(ctx context.Context, userID string, req *api.RecordSyncHistoryRequest) (*models.SyncHistoryEntry, error) {
	if req.Action == "" {
		return nil, fmt.Errorf("%w: action is required", common.ErrorValidation)
	}

	entry := &models.SyncHistoryEntry{
		UserID:        userID,
		DeviceID:      req.DeviceID,
		Action:        req.Action,
		DocumentCount: req.DocumentCount,
		Status:        req.Status,
		ErrorMessage:  req.ErrorMessage,
	}
	if err := s.repomanager.SyncHistory(s.db).Create(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// History returns the newest audit entries, at most limit rows.
func (s *SyncService) History(ctx context.Context, userID string, limit int) ([]*models.SyncHistoryEntry, error) {
	if limit <= 0 || limit > DefaultHistoryLimit {
		limit = DefaultHistoryLimit
	}
	return s.repomanager.SyncHistory(s.db).List(ctx, userID, limit)
}

// Conflicts lists documents still flagged conflicted from lost pushes.
func (s *SyncService) Conflicts(ctx context.Context, userID string) ([]*models.Document, error) {
	return s.repomanager.Documents(s.db).SelectConflicts(ctx, userID)
}

// PurgeTombstones drops tombstones older than the retention window.
func (s *SyncService) PurgeTombstones(ctx context.Context) (int64, error) {
	cutoff := time.Now().UTC().Add(-s.tombstoneRetention)
	n, err := s.repomanager.Documents(s.db).PurgeTombstones(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info(ctx, "purged tombstones", "count", n)
	}
	return n, nil
}

func optionalID(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}

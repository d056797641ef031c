// Package sync implements the offline-first reconciliation loop between the
// local sqlite store and the server of record: push pending changes, pull
// remote updates, resolve by last writer wins, and keep an audit trail.
package sync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/avoronovs/papertrail/internal/api"
	"github.com/avoronovs/papertrail/internal/client/client"
	"github.com/avoronovs/papertrail/internal/client/device"
	"github.com/avoronovs/papertrail/internal/client/models"
	"github.com/avoronovs/papertrail/internal/client/repositories/documents"
	"github.com/avoronovs/papertrail/internal/client/repositories/metadata"
	"github.com/avoronovs/papertrail/internal/logging"
	"github.com/sethvargo/go-retry"
)

// ErrSyncInProgress is returned when a sync is requested while another one is
// still running. At most one sync runs at a time per process.
var ErrSyncInProgress = errors.New("sync already in progress")

// DefaultMaxRetries is the total number of attempts a sync makes before
// giving up.
const DefaultMaxRetries = 3

// retryBaseDelay is the first backoff step; it doubles on each retry.
const retryBaseDelay = 2 * time.Second

// Options tunes a single sync run.
type Options struct {
	// ForceSync ignores the stored last-sync timestamp and pulls the full
	// remote set.
	ForceSync bool
	// MaxRetries overrides DefaultMaxRetries when > 0.
	MaxRetries int
}

// Result summarizes a successful sync run.
type Result struct {
	Pushed    int
	Pulled    int
	Conflicts int
}

// Engine owns the sync lifecycle for one logged-in session. It is safe for
// concurrent use; overlapping runs are rejected rather than queued.
type Engine struct {
	client   client.Client
	docs     documents.Repository
	meta     metadata.Repository
	registry *device.Registry
	logger   logging.Logger

	running atomic.Bool

	// retryBase is the first backoff step; shortened in tests.
	retryBase time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewEngine(c client.Client, docs documents.Repository, meta metadata.Repository, registry *device.Registry, logger logging.Logger) *Engine {
	return &Engine{
		client:   c,
		docs:     docs,
		meta:     meta,
		registry: registry,
		logger:   logger.With("component", "sync"),

		retryBase: retryBaseDelay,
	}
}

// Sync runs one push-then-pull reconciliation. Transient failures are retried
// with exponential backoff; after the attempts are exhausted a failed audit
// entry is reported to the server on a best-effort basis.
func (e *Engine) Sync(ctx context.Context, opts Options) (*Result, error) {
	if !e.running.CompareAndSwap(false, true) {
		return nil, ErrSyncInProgress
	}
	defer e.running.Store(false)

	maxRetries := opts.MaxRetries
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}

	// Device registration is not retried: if the server is unreachable the
	// sync attempts below would fail anyway, and a gone device is already
	// handled by re-registering inside EnsureRegistered.
	deviceID, err := e.registry.EnsureRegistered(ctx)
	if err != nil {
		return nil, fmt.Errorf("device registration failed: %w", err)
	}

	var result *Result
	attempt := 0
	backoff := retry.WithMaxRetries(uint64(maxRetries-1), retry.NewExponential(e.retryBase))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		r, err := e.performSync(ctx, deviceID, opts.ForceSync)
		if err != nil {
			e.logger.Warn(ctx, "sync attempt failed", "attempt", attempt, "error", err)
			return retry.RetryableError(err)
		}
		result = r
		return nil
	})
	if err != nil {
		e.reportFailure(ctx, deviceID, err)
		return nil, fmt.Errorf("sync failed after %d attempts: %w", attempt, err)
	}

	e.logger.Info(ctx, "sync completed",
		"pushed", result.Pushed, "pulled", result.Pulled, "conflicts", result.Conflicts)
	return result, nil
}

// performSync is one attempt: push pending records, pull remote changes since
// the last successful sync, reconcile, then confirm and advance the watermark.
// Every step is idempotent so a failed attempt can simply be replayed.
func (e *Engine) performSync(ctx context.Context, deviceID string, force bool) (*Result, error) {
	result := &Result{}

	if err := e.pushPending(ctx, deviceID, result); err != nil {
		return nil, err
	}
	if err := e.pullRemote(ctx, deviceID, force, result); err != nil {
		return nil, err
	}
	return result, nil
}

func (e *Engine) pushPending(ctx context.Context, deviceID string, result *Result) error {
	pending, err := e.docs.GetAllPending(ctx)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		return nil
	}

	req := &api.PushDocumentsRequest{DeviceID: deviceID, Documents: make([]api.Document, 0, len(pending))}
	byID := make(map[string]*models.Document, len(pending))
	for _, doc := range pending {
		req.Documents = append(req.Documents, doc.ToAPI())
		byID[doc.ID] = doc
	}

	resp, err := e.client.PushDocuments(ctx, req)
	if err != nil {
		return fmt.Errorf("push failed: %w", err)
	}

	var syncedIDs []string
	for _, id := range resp.Accepted {
		doc, ok := byID[id]
		if !ok {
			continue
		}
		if doc.Deleted {
			// The server took the tombstone; the local row can go.
			if err := e.docs.Remove(ctx, id); err != nil {
				return err
			}
			continue
		}
		syncedIDs = append(syncedIDs, id)
	}
	if err := e.docs.MarkSynced(ctx, syncedIDs); err != nil {
		return err
	}
	result.Pushed = len(resp.Accepted)

	// Records that lost last writer wins come back as the server's winning
	// copy; apply it over the local version.
	for i := range resp.Conflicts {
		if err := e.applyRemote(ctx, &resp.Conflicts[i]); err != nil {
			return err
		}
	}
	result.Conflicts = len(resp.Conflicts)
	return nil
}

func (e *Engine) pullRemote(ctx context.Context, deviceID string, force bool, result *Result) error {
	var since *time.Time
	if !force {
		lastSync, err := e.meta.GetTime(ctx, metadata.KeyLastSyncAt)
		if err != nil {
			return err
		}
		if !lastSync.IsZero() {
			since = &lastSync
		}
	}

	started := time.Now().UTC()
	remote, err := e.client.DocumentsSince(ctx, since)
	if err != nil {
		return fmt.Errorf("pull failed: %w", err)
	}

	pulledIDs := make([]string, 0, len(remote))
	for i := range remote {
		if err := e.applyRemote(ctx, &remote[i]); err != nil {
			return err
		}
		pulledIDs = append(pulledIDs, remote[i].ID)
	}
	result.Pulled = len(pulledIDs)

	// Confirmed even when nothing was pulled: every completed attempt leaves a
	// history entry, and the server tolerates an empty id list.
	_, err = e.client.CompleteSync(ctx, &api.CompleteSyncRequest{
		DocumentIDs: pulledIDs,
		DeviceID:    deviceID,
		Action:      api.SyncActionDown,
	})
	if err != nil {
		return fmt.Errorf("failed to confirm sync: %w", err)
	}

	// The watermark only advances after the whole pull succeeded, so a
	// failed attempt replays the same window.
	return e.meta.SetTime(ctx, metadata.KeyLastSyncAt, started)
}

// applyRemote writes one server record into the local store. Tombstones drop
// the local row entirely; live records are upserted as synced.
func (e *Engine) applyRemote(ctx context.Context, remote *api.Document) error {
	if remote.Deleted {
		return e.docs.Remove(ctx, remote.ID)
	}

	doc := models.FromAPI(*remote)
	doc.SyncStatus = api.SyncStatusSynced
	return e.docs.CreateOrUpdate(ctx, doc)
}

func (e *Engine) reportFailure(ctx context.Context, deviceID string, cause error) {
	req := &api.RecordSyncHistoryRequest{
		DeviceID:     &deviceID,
		Action:       api.SyncActionDown,
		Status:       api.SyncOutcomeFailed,
		ErrorMessage: cause.Error(),
	}
	if err := e.client.RecordSyncHistory(ctx, req); err != nil {
		e.logger.Warn(ctx, "failed to report sync failure", "error", err)
	}
}

// StartAutoSync begins periodic background syncing: one run immediately, then
// one per interval. Calling it while auto-sync is already running is a no-op.
func (e *Engine) StartAutoSync(ctx context.Context, interval time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	e.cancel = cancel
	e.done = done

	e.logger.Info(ctx, "auto-sync started", "interval", interval)

	go func() {
		defer close(done)

		e.autoSyncOnce(ctx)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				e.autoSyncOnce(ctx)
			}
		}
	}()
}

func (e *Engine) autoSyncOnce(ctx context.Context) {
	_, err := e.Sync(ctx, Options{})
	if err != nil && !errors.Is(err, ErrSyncInProgress) && !errors.Is(err, context.Canceled) {
		e.logger.Warn(ctx, "auto-sync run failed", "error", err)
	}
}

// StopAutoSync cancels the background loop and waits for it to exit, so no
// sync is still running when the session tears down.
func (e *Engine) StopAutoSync() {
	e.mu.Lock()
	cancel, done := e.cancel, e.done
	e.cancel, e.done = nil, nil
	e.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

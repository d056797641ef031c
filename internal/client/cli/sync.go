package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avoronovs/papertrail/internal/client/sync"
)

// Sync runs one manual synchronization. "sync force" ignores the stored
// watermark and pulls the full remote set.
func (a *App) Sync(ctx context.Context, args []string) error {
	opts := sync.Options{}
	if len(args) > 0 && args[0] == "force" {
		opts.ForceSync = true
	}

	result, err := a.engine.Sync(ctx, opts)
	if errors.Is(err, sync.ErrSyncInProgress) {
		fmt.Println("A sync is already running")
		return nil
	}
	if err != nil {
		a.logger.Error(ctx, "sync failed", "error", err)
		return err
	}

	fmt.Printf("Synced: %d pushed, %d pulled, %d conflicts resolved\n",
		result.Pushed, result.Pulled, result.Conflicts)
	return nil
}

// History prints the recent sync audit entries recorded on the server.
func (a *App) History(ctx context.Context) error {
	entries, err := a.apiClient.SyncHistory(ctx)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No sync history")
		return nil
	}

	for _, e := range entries {
		line := fmt.Sprintf("%s  %-20s %-8s %d docs",
			e.CreatedAt.Format(time.RFC3339), e.Action, e.Status, e.DocumentCount)
		if e.ErrorMessage != "" {
			line += "  " + e.ErrorMessage
		}
		fmt.Println(line)
	}
	return nil
}

// Conflicts prints the records currently marked conflicted on the server.
func (a *App) Conflicts(ctx context.Context) error {
	docs, err := a.apiClient.SyncConflicts(ctx)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		fmt.Println("No conflicts")
		return nil
	}
	for _, doc := range docs {
		fmt.Printf("%s  %-25s updated %s by %s\n",
			doc.ID, doc.Title, doc.UpdatedAt.Format(time.RFC3339), doc.LastModifiedDevice)
	}
	return nil
}

package cli

import (
	"bufio"
	"context"
	"os"

	"github.com/avoronovs/papertrail/internal/client/client"
	"github.com/avoronovs/papertrail/internal/client/config"
	"github.com/avoronovs/papertrail/internal/client/device"
	"github.com/avoronovs/papertrail/internal/client/repositories/metadata"
	"github.com/avoronovs/papertrail/internal/client/services"
	"github.com/avoronovs/papertrail/internal/client/sync"
	"github.com/avoronovs/papertrail/internal/filex"
	"github.com/avoronovs/papertrail/internal/logging"
)

// App wires the CLI together: local storage, HTTP client, services and the
// background sync engine.
type App struct {
	config    *config.Config
	apiClient client.Client
	repos     *client.Repositories
	docs      *services.DocumentService
	registry  *device.Registry
	engine    *sync.Engine
	logger    logging.Logger
	reader    *bufio.Reader
	email     string
}

func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	dbPath, err := filex.DatabasePath()
	if err != nil {
		return nil, err
	}

	repos, err := client.InitDatabase(ctx, dbPath)
	if err != nil {
		logger.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}

	apiClient := client.NewHTTPClient(c.ServerEndpointURL)
	registry := device.NewRegistry(apiClient, repos.Metadata, logger)

	a := &App{
		config:    c,
		apiClient: apiClient,
		repos:     repos,
		docs:      services.NewDocumentService(repos.Documents, repos.Metadata),
		registry:  registry,
		engine:    sync.NewEngine(apiClient, repos.Documents, repos.Metadata, registry, logger),
		logger:    logger,
		reader:    bufio.NewReader(os.Stdin),
	}

	// A previous session may still be valid; restore it so the user is not
	// prompted again.
	if err := a.restoreSession(ctx); err != nil {
		return nil, err
	}

	return a, nil
}

func (a *App) restoreSession(ctx context.Context) error {
	token, err := a.repos.Metadata.Get(ctx, metadata.KeyAccessToken)
	if err != nil {
		return err
	}
	if token == "" {
		return nil
	}

	email, err := a.repos.Metadata.Get(ctx, metadata.KeyUserEmail)
	if err != nil {
		return err
	}

	a.apiClient.SetToken(token)
	a.email = email
	a.engine.StartAutoSync(ctx, a.config.SyncInterval)
	return nil
}

func (a *App) isLoggedIn() bool {
	return a.email != ""
}

func (a *App) Run(ctx context.Context) {
	defer a.Close()
	a.Root(ctx)
}

func (a *App) Close() {
	a.engine.StopAutoSync()
	_ = a.apiClient.Close()
	_ = a.repos.DB.Close()
}

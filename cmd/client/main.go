package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/avoronovs/papertrail/internal/buildinfo"
	"github.com/avoronovs/papertrail/internal/client/cli"
	"github.com/avoronovs/papertrail/internal/client/config"
	"github.com/avoronovs/papertrail/internal/logging"
)

func main() {
	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(logFile(), nil)))

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app.Run(ctx)
}

// logFile keeps structured logs out of the interactive prompt.
func logFile() *os.File {
	home, err := os.UserHomeDir()
	if err != nil {
		return os.Stderr
	}
	f, err := os.OpenFile(filepath.Join(home, ".papertrail.log"),
		os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return os.Stderr
	}
	return f
}

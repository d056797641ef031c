package main

import (
	"context"
	"log"
	"os"

	"github.com/avoronovs/papertrail/internal/buildinfo"
	"github.com/avoronovs/papertrail/internal/server"
	"github.com/avoronovs/papertrail/internal/server/config"
	"github.com/joho/godotenv"
)

func main() {
	buildinfo.PrintBuildData(os.Stdout)

	// Optional .env for container and local development setups.
	_ = godotenv.Load()

	ctx := context.Background()
	cfg := config.LoadConfig()

	app, err := server.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := app.Run(ctx); err != nil {
		log.Fatalf("%v", err)
	}
}

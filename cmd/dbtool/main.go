package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"temple-locator-service/internal/adapters/repositories"
	"temple-locator-service/internal/config"
	"temple-locator-service/internal/platform/db"
	"temple-locator-service/internal/platform/logging"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	seedPath := flag.String("seed", cfg.Data.Path, "JSON file of temples to load")
	skipSeed := flag.Bool("schema-only", false, "create tables without seeding")
	flag.Parse()

	if cfg.Database.URL == "" {
		log.Fatal("database.url is required (TEMPLES_DATABASE_URL)")
	}

	db, err := db.Open(cfg.Database.URL)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := initAndSeed(context.Background(), db, *seedPath, *skipSeed); err != nil {
		log.Fatal(err)
	}
}

func initAndSeed(ctx context.Context, db *sql.DB, seedPath string, skipSeed bool) error {
	slog.Info("initializing database schema")
	if err := repositories.InitSchema(ctx, db); err != nil {
		return fmt.Errorf("schema initialization failed: %w", err)
	}
	slog.Info("schema ready")

	if skipSeed {
		return nil
	}

	slog.Info("seeding temples", "path", seedPath)
	n, err := repositories.SeedFromJSON(ctx, db, seedPath)
	if err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}
	slog.Info("seeding complete", "temples", n)

	return nil
}

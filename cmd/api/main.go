package main

import (
	"fmt"
	"log"
	"os"

	"github.com/mkurosawa/github-org-pulse/internal/aggregator"
	"github.com/mkurosawa/github-org-pulse/internal/api"
	"github.com/mkurosawa/github-org-pulse/internal/collector"
	"github.com/mkurosawa/github-org-pulse/internal/config"
	"github.com/mkurosawa/github-org-pulse/internal/storage"
	"github.com/mkurosawa/github-org-pulse/internal/storage/postgres"
	"github.com/mkurosawa/github-org-pulse/internal/storage/sqlite"
	"github.com/mkurosawa/github-org-pulse/internal/syncer"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Initialize storage, scoped to the process and released on exit
	var store storage.Storage
	switch cfg.StorageType {
	case "postgres":
		store, err = postgres.NewPostgresStorage(cfg.PostgresURL)
		if err != nil {
			log.Fatalf("Failed to initialize PostgreSQL storage: %v", err)
		}
	default:
		store, err = sqlite.NewSQLiteStorage(cfg.SQLitePath)
		if err != nil {
			log.Fatalf("Failed to initialize SQLite storage: %v", err)
		}
	}
	defer store.Close()

	// Wire the pipeline and the reports
	source := collector.NewGitHubSource(cfg.GitHubToken)
	sync := syncer.New(store, source, cfg.SyncPageSize, cfg.StatsWorkers)
	agg := aggregator.NewAggregator(store)

	handler := api.NewHandler(agg, sync, store)
	router := api.SetupRoutes(handler)

	// Start server
	addr := fmt.Sprintf("%s:%s", cfg.APIHost, cfg.APIPort)
	fmt.Printf("Starting API server on %s\n", addr)
	fmt.Printf("Storage type: %s\n", cfg.StorageType)

	if err := router.Run(addr); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start server: %v\n", err)
		os.Exit(1)
	}
}

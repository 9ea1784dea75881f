package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/portfolio-builder/portfolio-backend/config"
	"github.com/portfolio-builder/portfolio-backend/internal/audit"
	"github.com/portfolio-builder/portfolio-backend/internal/bootstrap"
	"github.com/portfolio-builder/portfolio-backend/internal/logging"
	"github.com/portfolio-builder/portfolio-backend/internal/profiles/repository"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: worker audit-usernames")
	}

	switch os.Args[1] {
	case "audit-usernames":
		os.Exit(runAudit())
	default:
		log.Fatalf("unknown command: %s", os.Args[1])
	}
}

// runAudit prints the report as JSON and exits non-zero when it is not clean.
func runAudit() int {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.App.Environment, cfg.App.LogLevel)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = logging.WithContext(ctx, logger)

	app, err := bootstrap.OpenFirebase(ctx, cfg)
	if err != nil {
		logger.Fatal("firebase init failed", zap.Error(err))
	}
	docs, err := bootstrap.OpenDocuments(ctx, cfg, app, logger)
	if err != nil {
		logger.Fatal("document store init failed", zap.Error(err))
	}
	defer docs.Close()

	report, err := audit.Usernames(ctx, repository.NewProfileRepository(docs.Store, cfg.Store.Collection))
	if err != nil {
		logger.Error("username audit failed", zap.Error(err))
		return 1
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		logger.Error("failed to write report", zap.Error(err))
		return 1
	}

	if !report.Clean() {
		return 2
	}
	return 0
}

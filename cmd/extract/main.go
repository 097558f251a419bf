// One-shot extraction: runs every configured source once and exits.
// Useful for cron-driven deployments and for seeding the data directory
// before first serving the dashboard.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/techcarrot/defectdash/common/id"
	"github.com/techcarrot/defectdash/common/logger"
	"github.com/techcarrot/defectdash/core/config"
	"github.com/techcarrot/defectdash/internal/extractor"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Setup(cfg)

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		slog.ErrorContext(ctx, "failed to create data directory", "error", err)
		os.Exit(1)
	}
	if err := id.Init(2); err != nil {
		slog.ErrorContext(ctx, "failed to initialize snowflake id generator", "error", err)
		os.Exit(1)
	}

	var extractors []extractor.Extractor
	if cfg.DevOps.Enabled() {
		extractors = append(extractors, extractor.NewDevOps(cfg.DevOps, cfg.DataDir, cfg.Refresh.HTTPTimeout))
	}
	if cfg.Jira.Enabled() {
		extractors = append(extractors, extractor.NewJira(cfg.Jira, cfg.DataDir, cfg.Refresh.HTTPTimeout))
	}

	runID := id.New()
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		RunID:     logger.Ptr(runID),
		Component: "defectdash.extract",
	})

	failed := false
	for _, ext := range extractors {
		rows, err := ext.Run(ctx)
		if err != nil {
			slog.ErrorContext(ctx, "extraction failed", "source", ext.Name(), "error", err)
			failed = true
			continue
		}
		slog.InfoContext(ctx, "source extracted", "source", ext.Name(), "rows", rows)
	}

	if failed {
		os.Exit(1)
	}
}

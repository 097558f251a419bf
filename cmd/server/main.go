package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/techcarrot/defectdash/common/id"
	"github.com/techcarrot/defectdash/common/logger"
	"github.com/techcarrot/defectdash/common/otel"
	"github.com/techcarrot/defectdash/core/config"
	"github.com/techcarrot/defectdash/internal/aggregate"
	"github.com/techcarrot/defectdash/internal/extractor"
	"github.com/techcarrot/defectdash/internal/http/middleware"
	httprouter "github.com/techcarrot/defectdash/internal/http/router"
	"github.com/techcarrot/defectdash/internal/scheduler"
)

func main() {
	fmt.Printf("%s\n", banner)
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	// OTel must init before logger (logger uses OTel provider in production)
	telemetry, err := otel.Setup(ctx, cfg.OTel)
	if err != nil {
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	if telemetry != nil {
		slog.InfoContext(ctx, "otel initialized", "endpoint", cfg.OTel.Endpoint)
	}

	slog.InfoContext(ctx, "defectdash starting", "env", cfg.Env, "data_dir", cfg.DataDir)
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		slog.ErrorContext(ctx, "failed to create data directory", "error", err)
		os.Exit(1)
	}
	if err := id.Init(1); err != nil {
		slog.ErrorContext(ctx, "failed to initialize snowflake id generator", "error", err)
		os.Exit(1)
	}

	projects, err := config.LoadProjects(cfg)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load project registry", "error", err)
		os.Exit(1)
	}
	slog.InfoContext(ctx, "project registry loaded", "projects", len(projects))

	loader := aggregate.NewLoader(cfg.DataDir, projects)
	cache := aggregate.NewCache(loader)

	var extractors []extractor.Extractor
	if cfg.DevOps.Enabled() {
		extractors = append(extractors, extractor.NewDevOps(cfg.DevOps, cfg.DataDir, cfg.Refresh.HTTPTimeout))
	}
	if cfg.Jira.Enabled() {
		extractors = append(extractors, extractor.NewJira(cfg.Jira, cfg.DataDir, cfg.Refresh.HTTPTimeout))
	}

	sched := scheduler.New(extractors, cfg.Refresh.Interval, cache.Invalidate)
	schedCtx, cancelSched := context.WithCancel(ctx)
	schedErr := make(chan error, 1)
	go func() {
		schedErr <- sched.Run(schedCtx)
	}()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := setupRouter(cfg, cache, sched)
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.InfoContext(ctx, "http server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.ErrorContext(ctx, "http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "http server shutdown error", "error", err)
	}

	// Stop before cancelling the scheduler context: Stop waits for a
	// mid-flight cycle, and cancelling first would abort its upstream
	// calls and turn the cycle into a spurious failure.
	sched.Stop()
	cancelSched()
	<-schedErr

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(shutdownCtx, "shutdown complete")
}

func setupRouter(cfg config.Config, cache *aggregate.Cache, sched *scheduler.Scheduler) *gin.Engine {
	router := gin.New()

	// Order matters: OTel creates span → Recovery catches panics → Logger logs with trace context
	if cfg.OTel.Enabled() {
		router.Use(otelgin.Middleware(cfg.OTel.ServiceName))
	}
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())

	httprouter.SetupRoutes(router, cache, sched)

	return router
}

const banner = `
██████╗ ███████╗███████╗███████╗ ██████╗████████╗██████╗  █████╗ ███████╗██╗  ██╗
██╔══██╗██╔════╝██╔════╝██╔════╝██╔════╝╚══██╔══╝██╔══██╗██╔══██╗██╔════╝██║  ██║
██║  ██║█████╗  █████╗  █████╗  ██║        ██║   ██║  ██║███████║███████╗███████║
██║  ██║██╔══╝  ██╔══╝  ██╔══╝  ██║        ██║   ██║  ██║██╔══██║╚════██║██╔══██║
██████╔╝███████╗██║     ███████╗╚██████╗   ██║   ██████╔╝██║  ██║███████║██║  ██║
╚═════╝ ╚══════╝╚═╝     ╚══════╝ ╚═════╝   ╚═╝   ╚═════╝ ╚═╝  ╚═╝╚══════╝╚═╝  ╚═╝
`

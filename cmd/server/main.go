package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/asakatsu/internal/clock"
	"github.com/asakatsu/internal/config"
	"github.com/asakatsu/internal/db"
	"github.com/asakatsu/internal/handler"
	"github.com/asakatsu/internal/logger"
	"github.com/asakatsu/internal/metrics"
	"github.com/asakatsu/internal/router"
	"github.com/asakatsu/internal/service"
	"github.com/gin-gonic/gin"
)

const (
	readHeaderTimeout = 5 * time.Second
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	shutdownTimeout   = 15 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := logger.Init(cfg.LogLevel, os.Stdout); err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loc, err := clock.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Fatalf("failed to load timezone: %v", err)
	}

	if err := db.Init(cfg.DatabasePath); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}
	defer db.Close()

	var m *metrics.Manager
	if cfg.MetricsEnabled {
		m = metrics.NewManager(metrics.WithRuntimeCollectors())
	}

	api := handler.NewAPI(db.DB, clock.NewSystem(loc), handler.Options{
		HistoryDays: cfg.HistoryDays,
		Metrics:     m,
	})

	catalog, err := service.DefaultCatalog()
	if err != nil {
		log.Fatalf("invalid title catalog: %v", err)
	}
	if err := api.Titles().Seed(ctx, catalog); err != nil {
		log.Fatalf("failed to seed title catalog: %v", err)
	}

	r := router.SetupRouter(api, router.Config{
		SessionSecret: cfg.SessionSecret,
		TemplateDir:   cfg.TemplateDir,
		StaticDir:     cfg.StaticDir,
		Metrics:       m,
	})

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           r,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}

	log := logger.Named("server")
	go func() {
		log.Info(ctx, "starting HTTP server",
			logger.String("addr", cfg.ListenAddr),
			logger.String("timezone", loc.String()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info(context.Background(), "shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(shutdownCtx, "server shutdown failed", logger.Error(err))
	}
}

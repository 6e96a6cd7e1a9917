package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/Skryldev/jobly/api"
	"github.com/Skryldev/jobly/auth"
	"github.com/Skryldev/jobly/config"
	"github.com/Skryldev/jobly/db"
	"github.com/Skryldev/jobly/metrics"
	"github.com/Skryldev/jobly/repo"
	"github.com/Skryldev/jobly/schemas"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg)
	},
}

func serve(ctx context.Context, cfg *config.Config) error {
	dsn, err := cfg.DB.DSN()
	if err != nil {
		return err
	}

	if cfg.Migrate.OnStart {
		if err := migrateUp(cfg.DB.Driver, dsn); err != nil {
			return err
		}
	}

	database, err := db.Open(db.Config{
		DSN:            dsn,
		DriverName:     cfg.DB.Driver,
		MaxOpenConns:   cfg.DB.MaxOpenConns,
		DefaultTimeout: cfg.DB.Timeout,
		Hooks: []db.Hook{
			db.NewLogHook(db.LogHookConfig{SlowQueryThreshold: cfg.DB.SlowQuery}),
			db.NewMetricsHook(metrics.QueryCollector{}),
		},
	})
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer database.Close()

	tokens, err := auth.NewTokens(cfg.JWT.Secret, cfg.JWT.TTL)
	if err != nil {
		return err
	}

	srv := api.New(api.Deps{
		Jobs:      repo.NewJobRepo(database),
		Companies: repo.NewCompanyRepo(database),
		Users:     repo.NewUserRepo(database, auth.NewPasswords(cfg.Bcrypt.Cost)),
		Tokens:    tokens,
		Schemas:   schemas.MustLoad(),
		DB:        database,
		RateLimit: api.RateLimitConfig{
			PerMinute: cfg.RateLimit.PerMinute,
			Burst:     cfg.RateLimit.Burst,
		},
	})

	gin.SetMode(gin.ReleaseMode)
	httpSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("jobly: listening", "addr", httpSrv.Addr, "driver", cfg.DB.Driver)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("jobly: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

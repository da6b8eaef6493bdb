package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MrJamesThe3rd/smartcity/internal/access"
	"github.com/MrJamesThe3rd/smartcity/internal/config"
	"github.com/MrJamesThe3rd/smartcity/internal/database"
	"github.com/MrJamesThe3rd/smartcity/internal/facade"
	api "github.com/MrJamesThe3rd/smartcity/internal/http"
	"github.com/MrJamesThe3rd/smartcity/internal/http/auth"
	orgHandler "github.com/MrJamesThe3rd/smartcity/internal/http/organization"
	taskHandler "github.com/MrJamesThe3rd/smartcity/internal/http/task"
	txHandler "github.com/MrJamesThe3rd/smartcity/internal/http/transaction"
	"github.com/MrJamesThe3rd/smartcity/internal/organization"
	orgStore "github.com/MrJamesThe3rd/smartcity/internal/organization/store"
	"github.com/MrJamesThe3rd/smartcity/internal/task"
	taskStore "github.com/MrJamesThe3rd/smartcity/internal/task/store"
	"github.com/MrJamesThe3rd/smartcity/internal/transaction"
	txStore "github.com/MrJamesThe3rd/smartcity/internal/transaction/store"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.App.LogLevel})))

	if cfg.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}

	dialect, err := database.DialectFor(cfg.DB.Driver)
	if err != nil {
		return err
	}

	db, err := database.New(cfg.DB.Driver, cfg.ConnectionString())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.DB.Migrate {
		if err := database.Migrate(ctx, db, dialect); err != nil {
			return fmt.Errorf("failed to migrate: %w", err)
		}

		slog.Info("schema migrated", "dialect", dialect)
	}

	policy, err := access.LoadPolicy(cfg.Auth.RolesFile)
	if err != nil {
		return fmt.Errorf("failed to load role policy: %w", err)
	}

	var (
		taskService         = task.NewService(taskStore.New(db, dialect))
		organizationService = organization.NewService(orgStore.New(db, dialect))
		transactionService  = transaction.NewService(txStore.New(db, dialect), taskService)
	)

	f := facade.New(taskService, transactionService, organizationService, access.NewResolver(policy))

	router := api.New(
		cfg.CORS.AllowedOrigins,
		auth.New(cfg.Auth.JWTSecret, f),
		txHandler.NewHandler(f),
		taskHandler.NewHandler(f),
		orgHandler.NewHandler(f),
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: cfg.Server.Timeout,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
	}

	errCh := make(chan error, 1)

	go func() {
		slog.Info("starting server", "name", cfg.App.Name, "addr", srv.Addr, "driver", cfg.DB.Driver)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

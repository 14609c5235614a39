// Package app wires the storage, business and delivery layers together and
// runs the HTTP server until the context is cancelled.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/artemivanov/shortlink/internal/config"
	"github.com/artemivanov/shortlink/internal/usecase"
	"github.com/artemivanov/shortlink/pkg/postgres"
	"github.com/go-chi/httplog/v2"
	"golang.org/x/sync/errgroup"

	delivery "github.com/artemivanov/shortlink/internal/adapter/delivery/http"
	repository "github.com/artemivanov/shortlink/internal/adapter/repository/postgres"
)

const migrationsPath = "file://migrations"

func newLogger(env string) *httplog.Logger {
	opts := httplog.Options{
		LogLevel: slog.LevelInfo,
		Concise:  true,
	}

	switch env {
	case config.EnvDev:
		opts.LogLevel = slog.LevelDebug
	case config.EnvProd:
		opts.JSON = true
	}

	return httplog.NewLogger("shortlink", opts)
}

func Run(ctx context.Context, cfg *config.Config) error {
	const op = "app.Run"

	logger := newLogger(cfg.Env)

	db, err := postgres.New(
		ctx,
		cfg.Postgres.DSN(),
		postgres.WithConnMaxIdleTime(cfg.Postgres.ConnMaxIdleTime),
		postgres.WithConnMaxLifetime(cfg.Postgres.ConnMaxLifetime),
		postgres.WithMaxIdleConns(cfg.Postgres.MaxIdleConns),
		postgres.WithMaxOpenConns(cfg.Postgres.MaxOpenConns),
	)
	if err != nil {
		return fmt.Errorf("%s: failed to connect to database: %w", op, err)
	}
	defer db.Close()

	if err := postgres.RunMigrations(migrationsPath, cfg.Postgres.DSN()); err != nil {
		return fmt.Errorf("%s: failed to run migrations: %w", op, err)
	}

	logger.Info("migrations applied")

	linkRepo := repository.NewShortLinkRepository(db)
	linkUseCase := usecase.NewShortLinkUseCase(cfg.ShortCodeLength, linkRepo)

	server := &http.Server{
		Addr:           cfg.HTTPServer.Addr(),
		Handler:        delivery.NewRouter(logger, linkUseCase),
		ReadTimeout:    cfg.HTTPServer.ReadTimeout,
		WriteTimeout:   cfg.HTTPServer.WriteTimeout,
		IdleTimeout:    cfg.HTTPServer.IdleTimeout,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	logger.Info("starting server",
		slog.String("addr", server.Addr),
		slog.String("env", cfg.Env),
	)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error

		switch cfg.Env {
		case config.EnvProd:
			err = server.ListenAndServeTLS(cfg.HTTPServer.CertFile, cfg.HTTPServer.KeyFile)
		default:
			err = server.ListenAndServe()
		}

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("%s: server error occurred: %w", op, err)
		}

		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		logger.Info("shutting down server")

		if err := server.Shutdown(context.Background()); err != nil {
			return fmt.Errorf("%s: failed to shutdown server: %w", op, err)
		}

		return nil
	})

	return g.Wait()
}

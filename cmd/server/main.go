package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/saaskit/saaskit/assets"
	"github.com/saaskit/saaskit/internal"
	"github.com/saaskit/saaskit/internal/account"
	accountdb "github.com/saaskit/saaskit/internal/account/db"
	"github.com/saaskit/saaskit/internal/db"
	"github.com/saaskit/saaskit/internal/email"
	"github.com/saaskit/saaskit/internal/email/postmark"
	"github.com/saaskit/saaskit/internal/email/view"
	"github.com/saaskit/saaskit/internal/migrate"
	"github.com/saaskit/saaskit/internal/session"
	"github.com/saaskit/saaskit/internal/web"
	"github.com/saaskit/saaskit/migrations"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Stderr))
}

func run(ctx context.Context, w io.Writer) int {
	logger := slog.New(slog.NewTextHandler(w, nil))

	// A .env file is optional, real deployments set the environment
	// directly.
	_ = godotenv.Load()

	cfg, err := configFromEnv()
	if err != nil {
		logger.Error("failed to get config from environment", "error", err)
		return 1
	}

	writeDB, err := db.OpenSQLite(cfg.db.file, true)
	if err != nil {
		logger.Error("failed to open write database", "error", err)
		return 1
	}
	defer writeDB.Close()

	readDB, err := db.OpenSQLite(cfg.db.file, false)
	if err != nil {
		logger.Error("failed to open read database", "error", err)
		return 1
	}
	defer readDB.Close()

	if cfg.db.migrate {
		migrateCtx, cancel := context.WithTimeout(ctx, time.Minute)
		defer cancel()

		ran, err := migrate.RunFS(migrateCtx, writeDB, migrations.FS, migrate.Metadata{
			AppVersion: internal.BuildRevision,
			Timestamp:  time.Now(),
		})
		if err != nil {
			logger.Error("failed to run migrations", "error", err)
			return 1
		}

		logger.Info("ran migrations", "count", len(ran))
	}

	store := accountdb.New(readDB, writeDB)

	passwords := account.NewPasswordService(store)
	tokens := account.NewTokenService(store, account.TokenServiceConfig{
		TokenExpiry: cfg.account.tokenExpiry,
	})

	sessions, err := session.NewService(store, passwords, session.Config{
		SigningKey: cfg.session.signingKey,
		TTL:        cfg.session.ttl,
		Issuer:     cfg.session.issuer,
	})
	if err != nil {
		logger.Error("failed to create session service", "error", err)
		return 1
	}

	sender, err := emailSender(cfg, logger)
	if err != nil {
		logger.Error("failed to create email sender", "error", err)
		return 1
	}

	emailer := email.NewService(view.NewFSRenderer(assets.EmailFS), sender, cfg.email.from)

	errFunc := func(err error) {
		logger.Error("async worker failed", "error", err)
	}

	accounts := account.NewService(store, passwords, tokens, sessions, emailer, errFunc, account.ServiceConfig{
		WorkerTimeout: cfg.account.workerTimeout,
	})

	srv := &http.Server{
		Addr:         cfg.http.addr,
		ReadTimeout:  cfg.http.readTimeout,
		WriteTimeout: cfg.http.writeTimeout,
		IdleTimeout:  cfg.http.idleTimeout,
		Handler:      web.NewServer(logger, accounts, sessions),
	}

	// We need to run two tasks concurrently:
	// - Listen and serving of the HTTP server.
	// - Waiting for a signal to stop the server.

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting http server",
			"addr", cfg.http.addr,
			"buildRevision", internal.BuildRevision,
			"buildRevisionTime", internal.BuildRevisionTime,
			"buildLocalModified", internal.BuildLocalModified,
		)
		// ListenAndServe always returns a non-nil error,
		// g will cancel gCtx when an error is returned, so
		// this will also stop the other goroutine.
		return srv.ListenAndServe()
	})

	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("stopping http server")

		shutCtx, cancel := context.WithTimeout(context.Background(), cfg.http.shutdownTimeout)
		defer cancel()

		return srv.Shutdown(shutCtx)
	})

	err = g.Wait()

	// Let open workers finish before closing the databases.
	accounts.Wait()

	if err != nil && err != http.ErrServerClosed {
		logger.Error("http server stopped with error", "error", err)
		return 1
	}

	logger.Info("http server stopped successfully")

	return 0
}

func emailSender(cfg config, logger *slog.Logger) (email.Sender, error) {
	switch cfg.email.driver {
	case "log":
		return email.NewLogSender(logger), nil
	case "memory":
		return email.NewMemorySender(), nil
	case "postmark":
		return postmark.NewSender(&http.Client{Timeout: time.Second * 10}, cfg.email.postmark), nil
	}

	return nil, fmt.Errorf("unknown email driver %q", cfg.email.driver)
}

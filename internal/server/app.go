// Package server wires configuration, storage, the link service and the
// HTTP server together and runs them until a shutdown signal arrives.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrijs2005/tnyr/internal/cryptox"
	"github.com/dmitrijs2005/tnyr/internal/dbx"
	"github.com/dmitrijs2005/tnyr/internal/filex"
	"github.com/dmitrijs2005/tnyr/internal/logging"
	"github.com/dmitrijs2005/tnyr/internal/server/config"
	"github.com/dmitrijs2005/tnyr/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/tnyr/internal/server/rest"
	"github.com/dmitrijs2005/tnyr/internal/server/services"
)

const dbPingTimeout = 5 * time.Second

type App struct {
	config      *config.Config
	logger      logging.Logger
	repomanager repomanager.RepositoryManager
	linkService *services.LinkService
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	level, _ := logging.ParseLevel(c.LogLevel)
	logger := logging.NewJSONLogger(os.Stdout, level)

	rm, err := newRepositoryManager(ctx, c, logger)
	if err != nil {
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	if err := rm.RunMigrations(ctx); err != nil {
		_ = rm.Close()
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	ls, err := services.NewLinkService(rm, c, cryptox.NewClientKeys(), logger)
	if err != nil {
		_ = rm.Close()
		return nil, err
	}

	if c.DeletionToken == "" {
		logger.Warn(ctx, "No deletion token configured, takedown is disabled")
	}

	return &App{config: c, logger: logger, repomanager: rm, linkService: ls}, nil
}

func newRepositoryManager(ctx context.Context, c *config.Config, logger logging.Logger) (repomanager.RepositoryManager, error) {
	switch c.StorageBackend {
	case config.BackendPostgres:
		db, err := dbx.Open(ctx, "pgx", c.DatabaseDSN, dbPingTimeout)
		if err != nil {
			return nil, err
		}
		return repomanager.NewPostgresRepositoryManager(db), nil

	case config.BackendSQLite:
		db, err := dbx.Open(ctx, "sqlite", c.DatabaseDSN, dbPingTimeout)
		if err != nil {
			return nil, err
		}
		return repomanager.NewSQLiteRepositoryManager(db), nil

	case config.BackendBadger:
		dir, err := filex.EnsureDir(c.BadgerPath)
		if err != nil {
			return nil, err
		}
		db, err := repomanager.OpenBadger(dir, logger)
		if err != nil {
			return nil, err
		}
		return repomanager.NewBadgerRepositoryManager(db), nil

	case config.BackendS3:
		opts := repomanager.S3Options{
			AccessKey:    c.S3RootUser,
			SecretKey:    c.S3RootPassword,
			Region:       c.S3Region,
			BaseEndpoint: c.S3BaseEndpoint,
			Bucket:       c.S3Bucket,
			Prefix:       c.S3Prefix,
		}
		client, err := repomanager.NewS3Client(ctx, opts)
		if err != nil {
			return nil, err
		}
		return repomanager.NewS3RepositoryManager(client, opts), nil

	case config.BackendMemory:
		return repomanager.NewMemoryRepositoryManager(), nil
	}
	return nil, fmt.Errorf("unknown storage backend %q", c.StorageBackend)
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves HTTP until SIGINT/SIGTERM, then releases storage.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "backend", app.config.StorageBackend)
	app.initSignalHandler(cancelFunc)

	s := rest.NewServer(app.config, app.linkService, app.logger)
	runErr := s.Run(ctx)

	if err := app.repomanager.Close(); err != nil {
		app.logger.Error(ctx, "closing storage", "error", err.Error())
	}
	app.logger.Info(ctx, "App stopped")
	return runErr
}

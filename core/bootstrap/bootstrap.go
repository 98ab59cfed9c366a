// Package bootstrap prepares the shared infrastructure a bot needs before it
// starts polling.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	coreconfig "github.com/m3rciful/postbot/core/config"
	coredatabase "github.com/m3rciful/postbot/core/database"
	"github.com/m3rciful/postbot/core/logger"
)

const defaultTimeout = time.Minute

// Options select what Run initializes. Nil hooks fall back to the real
// implementations.
type Options struct {
	Config *coreconfig.Config
	// Database is optional; when nil no connection is opened and Result.DB stays nil.
	Database *coredatabase.Config
	// Timeout bounds the database steps. Default: one minute.
	Timeout time.Duration

	LoggerInit func(*coreconfig.Config) error
	Connect    func(context.Context, coredatabase.Config) (*sqlx.DB, error)
	Migrate    func(context.Context, coredatabase.Config) error
}

// Result holds what Run opened.
type Result struct {
	DB *sqlx.DB
}

// Close releases resources held by the result.
func (r *Result) Close() error {
	if r == nil || r.DB == nil {
		return nil
	}
	return r.DB.Close()
}

// Run starts the logger first so that the database steps are logged, then
// connects and migrates when a database is configured.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.Config == nil {
		return nil, errors.New("bootstrap: nil config provided")
	}
	initLogger := opts.LoggerInit
	if initLogger == nil {
		initLogger = logger.InitLogger
	}
	if err := initLogger(opts.Config); err != nil {
		return nil, fmt.Errorf("bootstrap: logger init failed: %w", err)
	}

	res := &Result{}
	if opts.Database == nil {
		logger.Info(ctx, "app", "bootstrap.done", slog.Bool("database", false))
		return res, nil
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	connect, migrate := opts.Connect, opts.Migrate
	if connect == nil {
		connect = coredatabase.Connect
	}
	if migrate == nil {
		migrate = coredatabase.RunMigrations
	}

	db, err := connect(ctx, *opts.Database)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: database initialization failed: %w", err)
	}
	res.DB = db
	if err := migrate(ctx, *opts.Database); err != nil {
		_ = res.Close()
		return nil, fmt.Errorf("bootstrap: migrations failed: %w", err)
	}
	logger.Info(ctx, "app", "bootstrap.done", slog.Bool("database", true))
	return res, nil
}

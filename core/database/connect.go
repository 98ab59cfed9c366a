package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/m3rciful/postbot/core/logger"
)

const (
	driverName     = "postgres"
	connectTimeout = 5 * time.Second
	readyPoll      = 2 * time.Second
)

// Connect opens a pooled connection and pings it before handing it out.
func Connect(ctx context.Context, cfg Config) (*sqlx.DB, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	started := time.Now()
	db, err := sqlx.ConnectContext(ctx, driverName, cfg.DSN())
	if err == nil {
		if err = db.PingContext(ctx); err != nil {
			_ = db.Close()
		}
	}
	attrs := append(cfg.attrs(), slog.Duration("duration", logger.Took(started)))
	if err != nil {
		logger.Error(ctx, "db", "db.connect", append(attrs,
			slog.String("status", logger.Status(err)),
			slog.String("err", err.Error()),
		)...)
		return nil, fmt.Errorf("db connect: %w", err)
	}

	pool := max(cfg.MaxConnections, 1)
	db.SetMaxOpenConns(pool)
	db.SetMaxIdleConns(pool)
	logger.Info(ctx, "db", "db.connect", append(attrs,
		slog.String("status", "ok"),
		slog.Int("pool_open", pool),
	)...)
	return db, nil
}

// WaitForPostgres polls until the server accepts a ping, ctx ends or
// timeout elapses.
func WaitForPostgres(ctx context.Context, dsn string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	tick := time.NewTicker(readyPoll)
	defer tick.Stop()
	for attempt := 1; ; attempt++ {
		err = db.PingContext(ctx)
		if err == nil {
			return nil
		}
		logger.Debug(ctx, "db", "db.wait",
			slog.Int("attempt", attempt),
			slog.String("err", err.Error()),
		)
		select {
		case <-ctx.Done():
			return fmt.Errorf("database not ready after %s: %w", timeout, err)
		case <-tick.C:
		}
	}
}

func (c Config) attrs() []slog.Attr {
	return []slog.Attr{
		slog.String("driver", driverName),
		slog.String("host", c.Host),
		slog.String("port", c.Port),
		slog.String("db", c.Name),
	}
}

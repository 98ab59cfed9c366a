package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/m3rciful/postbot/core/logger"
)

// DefaultMigrationsDir is used when Config.MigrationsDir is empty.
const DefaultMigrationsDir = "migrations"

const (
	migrateComponent = "db.migrate"
	readyTimeout     = 30 * time.Second
	previewFiles     = 6
)

// RunMigrations waits for the server and applies every pending up migration.
func RunMigrations(ctx context.Context, cfg Config) error {
	if err := WaitForPostgres(ctx, cfg.DSN(), readyTimeout); err != nil {
		return migrateFailed(ctx, "db.wait", err)
	}

	dir, err := migrationsDir(cfg)
	if err != nil {
		return migrateFailed(ctx, "db.migrate.resolve", err)
	}
	files := listMigrationFiles(dir)
	logger.Debug(ctx, migrateComponent, "db.migrate.resolve",
		append([]slog.Attr{slog.String("path", dir)}, fileAttrs(files)...)...)

	m, err := migrate.New("file://"+filepath.ToSlash(dir), cfg.URL())
	if err != nil {
		return migrateFailed(ctx, "db.migrate.init", err)
	}
	defer func() { _, _ = m.Close() }()

	from := version(m)
	started := time.Now()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return migrateFailed(ctx, "db.migrate.apply", err, slog.Duration("duration", logger.Took(started)))
	}
	to := version(m)

	applied := selectApplied(files, from, to)
	if len(applied) > 0 {
		logger.Debug(ctx, migrateComponent, "db.migrate.apply", fileAttrs(applied)...)
	}
	logger.Info(ctx, migrateComponent, "db.migrate.summary",
		slog.String("status", "ok"),
		slog.Uint64("from_ver", from),
		slog.Uint64("to_ver", to),
		slog.Int("files", len(applied)),
		slog.Duration("duration", logger.Took(started)),
	)
	return nil
}

func migrateFailed(ctx context.Context, event string, err error, attrs ...slog.Attr) error {
	logger.Error(ctx, migrateComponent, event, append(attrs,
		slog.String("status", logger.Status(err)),
		slog.String("err", err.Error()),
	)...)
	return fmt.Errorf("%s: %w", event, err)
}

// version reports the current schema version, 0 for an empty database.
func version(m *migrate.Migrate) uint64 {
	v, _, err := m.Version()
	if err != nil {
		return 0
	}
	return uint64(v)
}

func fileAttrs(files []string) []slog.Attr {
	preview, truncated := logger.SummarizeStrings(files, previewFiles)
	attrs := []slog.Attr{slog.Int("files_total", len(files))}
	if preview != "" {
		attrs = append(attrs, slog.String("files_preview", preview))
	}
	if truncated {
		attrs = append(attrs, slog.Bool("files_truncated", true))
	}
	return attrs
}

func migrationsDir(cfg Config) (string, error) {
	dir := strings.TrimSpace(cfg.MigrationsDir)
	if dir == "" {
		dir = DefaultMigrationsDir
	}
	return filepath.Abs(dir)
}

// listMigrationFiles returns the sorted *.up.sql names in dir; unreadable
// directories yield nil and leave the error to golang-migrate.
func listMigrationFiles(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".up.sql") {
			names = append(names, e.Name())
		}
	}
	slices.Sort(names)
	return names
}

func parseVersion(name string) uint64 {
	prefix, _, _ := strings.Cut(name, "_")
	v, _ := strconv.ParseUint(prefix, 10, 64)
	return v
}

// selectApplied returns the files whose version lies in (from, to].
func selectApplied(files []string, from, to uint64) []string {
	var out []string
	for _, f := range files {
		if v := parseVersion(f); v > from && v <= to {
			out = append(out, f)
		}
	}
	return out
}

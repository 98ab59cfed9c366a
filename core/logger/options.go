package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	coreconfig "github.com/m3rciful/postbot/core/config"
)

// options is the resolved form of the logging config section.
type options struct {
	format    logFormat
	order     []string
	level     slog.Level
	sampleNum int
	sampleDen int
	profile   string
	file      string
	errorFile string
}

func resolveOptions(cfg *coreconfig.Config) options {
	o := options{
		format:    formatJSON,
		order:     defaultKeyOrder,
		level:     slog.LevelInfo,
		sampleNum: 1,
		sampleDen: 50,
		profile:   "prod",
	}
	if cfg == nil {
		return o
	}
	lc := cfg.Logging
	if p := strings.ToLower(strings.TrimSpace(lc.Profile)); p != "" {
		o.profile = p
	}

	switch strings.ToLower(strings.TrimSpace(lc.Format)) {
	case "kv", "text", "pretty":
		o.format = formatKV
	case "json":
	default:
		if o.profile == "debug" || o.profile == "dev" {
			o.format = formatKV
		}
	}

	if order := splitKeys(lc.KeysOrder); len(order) > 0 {
		o.order = order
	}

	switch strings.ToLower(strings.TrimSpace(lc.Level)) {
	case "debug":
		o.level = slog.LevelDebug
	case "warn", "warning":
		o.level = slog.LevelWarn
	case "error":
		o.level = slog.LevelError
	}

	if spec := strings.TrimSpace(lc.DebugSample); spec != "" {
		o.sampleNum, o.sampleDen = parseRatio(spec)
	}

	if dir := strings.TrimSpace(lc.Dir); dir != "" {
		if f := strings.TrimSpace(lc.BotFile); f != "" {
			o.file = filepath.Join(dir, f)
		}
		if f := strings.TrimSpace(lc.ErrorsFile); f != "" {
			o.errorFile = filepath.Join(dir, f)
		}
	}
	return o
}

func splitKeys(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "default" {
		return nil
	}
	var keys []string
	for _, k := range strings.Split(raw, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

// openLogFile opens path for appending, creating its directory.
func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("logger: create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logger: open log file: %w", err)
	}
	return f, nil
}

// sinks opens the configured outputs. Stdout is always included; files
// that cannot be opened are reported and skipped.
func (o options) sinks() (main, errs []io.Writer, closers []io.Closer, problems []error) {
	main = []io.Writer{os.Stdout}
	if o.file != "" {
		if f, err := openLogFile(o.file); err != nil {
			problems = append(problems, err)
		} else {
			main = append(main, f)
			closers = append(closers, f)
		}
	}
	if o.errorFile != "" {
		if f, err := openLogFile(o.errorFile); err != nil {
			problems = append(problems, err)
		} else {
			errs = append(errs, f)
			closers = append(closers, f)
		}
	}
	return main, errs, closers, problems
}

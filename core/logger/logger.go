package logger

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/m3rciful/postbot/core/buildinfo"
	coreconfig "github.com/m3rciful/postbot/core/config"
)

// Component names shared by the post composer packages.
const (
	ComponentPosts   = "service.posts"
	ComponentDrafts  = "service.drafts"
	ComponentJournal = "service.journal"
)

var (
	initOnce sync.Once
	stopOnce sync.Once

	writers []*fanout
	closers []io.Closer

	levelVar      slog.LevelVar
	debugSampler  = newRatioSampler(1, 50)
	traceOverride bool

	root atomic.Pointer[slog.Logger]
)

// Until InitLogger runs every logger discards its output, so packages and
// tests may log without initializing the pipeline.
func init() {
	setRoot(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func setRoot(l *slog.Logger) { root.Store(l) }

// Root returns the process logger. Prefer Info/Warn/Error with a context.
func Root() *slog.Logger { return root.Load() }

// InitLogger installs the structured logger described by cfg as the process
// default. Only the first call has an effect. Log files that cannot be
// opened are reported on stderr and skipped.
func InitLogger(cfg *coreconfig.Config) error {
	initOnce.Do(func() {
		o := resolveOptions(cfg)
		levelVar.Set(o.level)
		debugSampler.Set(o.sampleNum, o.sampleDen)
		traceOverride = envTrue("TRACE") || envTrue("LOG_TRACE")

		mainSinks, errSinks, fileClosers, problems := o.sinks()
		for _, err := range problems {
			_, _ = io.WriteString(os.Stderr, err.Error()+"\n")
		}
		closers = fileClosers

		hc := handlerConfig{
			level:    &levelVar,
			out:      track(newFanout(mainSinks, 0)),
			format:   o.format,
			keyOrder: o.order,
		}
		if len(errSinks) > 0 {
			hc.errOut = track(newFanout(errSinks, 0))
		}

		root := slog.New(newStructuredHandler(hc))
		setRoot(root)
		slog.SetDefault(root)

		build := buildinfo.Read()
		root.LogAttrs(context.Background(), slog.LevelInfo, "startup",
			slog.String("component", "app"),
			slog.String("go_version", runtime.Version()),
			slog.String("build_version", build.Version),
			slog.String("build_commit", build.Commit),
			slog.String("build_time", build.Date),
			slog.Bool("build_dirty", build.Modified),
			slog.String("cfg_profile", o.profile),
		)
	})
	return nil
}

func track(f *fanout) *fanout {
	writers = append(writers, f)
	return f
}

// Shutdown flushes buffered output and closes log files. Calls after the
// first are no-ops.
func Shutdown() error {
	var errs []error
	stopOnce.Do(func() {
		for _, w := range writers {
			errs = append(errs, w.Close())
		}
		for _, c := range closers {
			errs = append(errs, c.Close())
		}
	})
	return errors.Join(errs...)
}

func envTrue(name string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(name))) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

// Background returns context.Background().
func Background() context.Context {
	return context.Background()
}

// LogEvent writes event through logg, falling back to the context logger
// and then to Root.
func LogEvent(ctx context.Context, logg *slog.Logger, level slog.Level, event string, attrs ...slog.Attr) {
	if logg == nil {
		logg = FromContext(ctx)
	}
	if event != "" {
		attrs = append([]slog.Attr{slog.String("event", event)}, attrs...)
	}
	logg.LogAttrs(orBackground(ctx), level, "", attrs...)
}

// Component returns Root scoped to the named component.
func Component(name string) *slog.Logger {
	if name = strings.TrimSpace(name); name == "" {
		return Root()
	}
	return Root().With("component", name)
}

// Event logs event at level under the named component.
func Event(ctx context.Context, component string, level slog.Level, event string, attrs ...slog.Attr) {
	LogEvent(ctx, Component(component), level, event, attrs...)
}

// Debug logs a debug-level event for the given component.
func Debug(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelDebug, event, attrs...)
}

// Info logs an info-level event for the given component.
func Info(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelInfo, event, attrs...)
}

// Warn logs a warn-level event for the given component.
func Warn(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelWarn, event, attrs...)
}

// Error logs an error-level event for the given component.
func Error(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelError, event, attrs...)
}

// ShouldSampleDebug reports whether a high-volume debug event should be
// logged. TRACE=1 lets every event through.
func ShouldSampleDebug() bool {
	return traceOverride || debugSampler.Allow()
}

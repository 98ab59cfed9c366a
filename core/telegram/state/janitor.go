package state

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/m3rciful/postbot/core/logger"
)

const defaultSweepInterval = time.Minute

// Sweeper is the part of Store the janitor needs.
type Sweeper interface {
	Sweep(idle time.Duration) int
	Len() int
}

// JanitorOptions configures periodic eviction of abandoned sessions.
type JanitorOptions struct {
	// Idle is the inactivity period after which a session is dropped.
	Idle time.Duration
	// Interval between sweeps; defaults to one minute.
	Interval time.Duration
	// OnSweep is invoked after each sweep that removed at least one session.
	OnSweep func(removed int)
}

// Janitor runs Sweep on a cron schedule.
type Janitor struct {
	cron *cron.Cron
	opts JanitorOptions
}

// NewJanitor schedules sweeps of s. Call Start to begin and Stop to end.
func NewJanitor(s Sweeper, opts JanitorOptions) (*Janitor, error) {
	if s == nil {
		return nil, fmt.Errorf("state: nil sweeper")
	}
	if opts.Idle <= 0 {
		return nil, fmt.Errorf("state: janitor idle must be > 0, got %s", opts.Idle)
	}
	if opts.Interval <= 0 {
		opts.Interval = defaultSweepInterval
	}

	c := cron.New()
	spec := fmt.Sprintf("@every %s", opts.Interval)
	if _, err := c.AddFunc(spec, func() { sweepOnce(s, opts) }); err != nil {
		return nil, fmt.Errorf("state: schedule sweep %q: %w", spec, err)
	}
	return &Janitor{cron: c, opts: opts}, nil
}

// Start launches the scheduler in its own goroutine.
func (j *Janitor) Start() {
	j.cron.Start()
	logger.Info(context.Background(), logger.ComponentDrafts, "drafts.janitor.start",
		slog.Duration("idle", j.opts.Idle),
		slog.Duration("interval", j.opts.Interval),
	)
}

// Stop halts the scheduler and waits for a running sweep to finish or ctx to expire.
func (j *Janitor) Stop(ctx context.Context) {
	done := j.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

func sweepOnce(s Sweeper, opts JanitorOptions) {
	start := time.Now()
	removed := s.Sweep(opts.Idle)
	if removed == 0 {
		return
	}
	logger.Info(context.Background(), logger.ComponentDrafts, "drafts.sweep",
		slog.String("status", "ok"),
		slog.Int("count", removed),
		slog.Int("pending_count", s.Len()),
		slog.Duration("duration", logger.Took(start)),
	)
	if opts.OnSweep != nil {
		opts.OnSweep(removed)
	}
}

package sender

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/m3rciful/postbot/core/logger"
	"github.com/m3rciful/postbot/core/telegram/netutil"

	tele "gopkg.in/telebot.v4"
)

// process runs j with retries and logs the result.
func (d *Dispatcher) process(j job) error {
	ctx, cancel := context.WithTimeout(j.ctx, d.opts.MaxDuration)
	defer cancel()

	start := time.Now()
	logger.Debug(j.ctx, component, "send.start", j.attrs()...)
	attempts, err := d.attempt(ctx, j)
	attrs := append(j.attrs(),
		slog.Int("attempts", attempts),
		slog.Duration("duration", logger.Took(start)),
	)

	switch {
	case err != nil:
		logger.Error(j.ctx, component, "send.fail", append(attrs,
			slog.String("status", "fail"),
			slog.String("err", redact(err)),
			slog.String("err_code", classifyError(err)),
		)...)
	case attempts > 1:
		logger.Info(j.ctx, component, "send.retry.success", append(attrs, slog.String("status", "ok"))...)
	default:
		logger.Debug(j.ctx, component, "send.success", append(attrs, slog.String("status", "ok"))...)
	}
	return err
}

// attempt calls j.run until it succeeds, fails permanently, runs out of
// retries or ctx ends. It returns the number of calls made.
func (d *Dispatcher) attempt(ctx context.Context, j job) (int, error) {
	limit := d.opts.MaxRetries + 1
	for n := 1; ; n++ {
		if err := ctx.Err(); err != nil {
			return n - 1, err
		}
		err := j.run()
		if err == nil {
			return n, nil
		}
		delay, retry := d.backoff(err, n)
		if !retry || n >= limit {
			return n, err
		}
		logger.Debug(j.ctx, component, "send.retry", append(j.attrs(),
			slog.String("status", "retry"),
			slog.Int("attempts", n),
			slog.Duration("backoff", delay),
			slog.String("err_code", classifyError(err)),
		)...)
		if !sleep(ctx, delay) {
			return n, ctx.Err()
		}
	}
}

// backoff decides whether err is worth another attempt and how long to wait.
// Flood control answers carry their own pause.
func (d *Dispatcher) backoff(err error, attempt int) (time.Duration, bool) {
	var flood tele.FloodError
	if errors.As(err, &flood) {
		return time.Duration(flood.RetryAfter) * time.Second, true
	}
	if netutil.ShouldRetry(err) {
		return d.opts.RetryBackoff * time.Duration(attempt), true
	}
	return 0, false
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (j job) attrs() []slog.Attr {
	attrs := []slog.Attr{slog.String("op", j.action)}
	if j.endpoint != "" {
		attrs = append(attrs, slog.String("endpoint", j.endpoint))
	}
	return attrs
}

package middleware

import (
	"log/slog"
	"sync"
	"time"

	coreconfig "github.com/m3rciful/postbot/core/config"
	"github.com/m3rciful/postbot/core/logger"
	tghelpers "github.com/m3rciful/postbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// RateLimitOptions configures behaviour of the rate limit middleware.
type RateLimitOptions struct {
	Interval time.Duration
	// Exclude holds update kinds (see UpdateKind) that are never limited.
	Exclude   map[string]struct{}
	OnLimited tele.HandlerFunc
}

// UpdateKind classifies an update for rate limit exclusions. Album items
// share the "media_group" kind so a whole album passes when excluded.
func UpdateKind(upd tele.Update) string {
	switch {
	case upd.Callback != nil:
		return coreconfig.UpdateCallback
	case upd.Message != nil && upd.Message.AlbumID != "":
		return coreconfig.UpdateMediaGroup
	case upd.Message != nil:
		return coreconfig.UpdateMessage
	case upd.Query != nil:
		return coreconfig.UpdateInlineQuery
	}
	return "other"
}

type limiter struct {
	interval time.Duration
	mu       sync.Mutex
	last     map[int64]time.Time
}

// allow records a hit for userID and reports whether it came at least one
// interval after the previous one. Entries older than the interval are
// dropped once the map grows.
func (l *limiter) allow(userID int64, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if last, ok := l.last[userID]; ok && now.Sub(last) < l.interval {
		return false
	}
	if len(l.last) >= 1024 {
		for id, ts := range l.last {
			if now.Sub(ts) >= l.interval {
				delete(l.last, id)
			}
		}
	}
	l.last[userID] = now
	return true
}

// RateLimitMiddleware returns a middleware that enforces a minimum interval
// between updates from the same user.
func RateLimitMiddleware(opts RateLimitOptions) tele.MiddlewareFunc {
	lim := &limiter{interval: opts.Interval, last: make(map[int64]time.Time)}
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			user := c.Sender()
			if user == nil || opts.Interval <= 0 {
				return next(c)
			}
			kind := UpdateKind(c.Update())
			if _, skip := opts.Exclude[kind]; skip {
				return next(c)
			}
			if lim.allow(user.ID, time.Now()) {
				return next(c)
			}

			logger.Warn(tghelpers.BuildContext(c), "tg", "tg.rate_limit",
				slog.String("status", "skip"),
				slog.String("kind", kind),
			)
			if opts.OnLimited != nil {
				_ = opts.OnLimited(c)
			}
			return nil
		}
	}
}

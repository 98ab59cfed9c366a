package telegram

import (
	"strings"
	"time"

	coreconfig "github.com/m3rciful/postbot/core/config"
	"github.com/m3rciful/postbot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// DefaultMiddlewares builds the global chain: panic recovery, request
// logging, the optional per-user rate limit and message counters.
func DefaultMiddlewares(cfg *coreconfig.Config, onLimited tele.HandlerFunc) []Middleware {
	mws := []Middleware{
		{Name: "recover", Use: middleware.RecoverMiddleware},
		{Name: "logger", Use: middleware.LoggerMiddleware},
	}
	if opts, ok := rateLimitOptions(cfg, onLimited); ok {
		mws = append(mws, Middleware{Name: "rate_limit", Use: middleware.RateLimitMiddleware(opts)})
	}
	return append(mws, Middleware{Name: "metrics", Use: middleware.MessageMetricsMiddleware})
}

func rateLimitOptions(cfg *coreconfig.Config, onLimited tele.HandlerFunc) (middleware.RateLimitOptions, bool) {
	if cfg == nil || cfg.RateLimit.IntervalMS <= 0 {
		return middleware.RateLimitOptions{}, false
	}
	ex := make(map[string]struct{}, len(cfg.RateLimit.ExcludeUpdates))
	for _, kind := range cfg.RateLimit.ExcludeUpdates {
		ex[strings.ToLower(strings.TrimSpace(kind))] = struct{}{}
	}
	return middleware.RateLimitOptions{
		Interval:  time.Duration(cfg.RateLimit.IntervalMS) * time.Millisecond,
		Exclude:   ex,
		OnLimited: onLimited,
	}, true
}

package middleware

import (
	"log/slog"
	"sync"
	"time"

	"github.com/m3rciful/postbot/core/logger"
	"github.com/m3rciful/postbot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/postbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// receipts remembers update ids logged within the last window so an update
// reaching several wrapped routes is reported once.
type receipts struct {
	mu     sync.Mutex
	window time.Duration
	seen   map[int]time.Time
	swept  time.Time
}

var logged = &receipts{window: 10 * time.Second, seen: make(map[int]time.Time)}

func (r *receipts) first(updateID int, now time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if now.Sub(r.swept) > r.window {
		for id, ts := range r.seen {
			if now.Sub(ts) > r.window {
				delete(r.seen, id)
			}
		}
		r.swept = now
	}
	if _, ok := r.seen[updateID]; ok {
		return false
	}
	r.seen[updateID] = now
	return true
}

// LoggerMiddleware assigns the request id, caches the request context on the
// update and writes one sampled "update.received" line per update.
func LoggerMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		upd := c.Update()
		var chatID, userID int64
		if chat := c.Chat(); chat != nil {
			chatID = chat.ID
		}
		user := c.Sender()
		if user != nil {
			userID = user.ID
		}
		rid := logger.BuildRID(upd.ID, chatID, userID)
		c.Set(tghelpers.RIDKey, rid)
		ctx := tghelpers.BuildContext(c)

		if logger.ShouldSampleDebug() && logged.first(upd.ID, time.Now()) {
			attrs := []slog.Attr{
				slog.String("status", "ok"),
				slog.Int("update_id", upd.ID),
			}
			if user != nil && user.Username != "" {
				attrs = append(attrs, slog.String("username", logger.SanitizeLimit(user.Username, 64)))
			}
			attrs = append(attrs, receiptAttrs(c, upd)...)
			logger.LogEvent(ctx, logger.Component("tg"), slog.LevelDebug, "update.received", attrs...)
		}

		return next(c)
	}
}

func receiptAttrs(c tele.Context, upd tele.Update) []slog.Attr {
	var attrs []slog.Attr
	switch {
	case upd.Callback != nil:
		key, payload := callbacks.ParseCallbackData(upd.Callback)
		if key != "" {
			attrs = append(attrs, slog.String("cb_key", logger.SanitizeLimit(key, 128)))
		}
		if payload != "" {
			attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(payload, 256)))
		}
	case upd.Message != nil:
		m := upd.Message
		switch {
		case m.Photo != nil:
			attrs = append(attrs, slog.String("media_kind", "photo"))
		case m.Video != nil:
			attrs = append(attrs, slog.String("media_kind", "video"))
		case m.Document != nil:
			attrs = append(attrs, slog.String("media_kind", "document"))
		}
		if m.AlbumID != "" {
			attrs = append(attrs, slog.String("album", m.AlbumID))
		}
		if t := c.Text(); t != "" {
			attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(t, 256)))
		}
	}
	return attrs
}

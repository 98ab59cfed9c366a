package helpers

import (
	"context"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/postbot/core/logger"
)

// RIDKey is the tele.Context storage key of the request id assigned by the
// logger middleware.
const RIDKey = "rid"

const ctxKey = "logger_ctx"

// BuildContext returns the logging context of the update behind c. The
// first call derives it from the rid set by the logger middleware (or a
// fresh one) plus the update, user and chat ids; later calls return the
// same value.
func BuildContext(c tele.Context) context.Context {
	if ctx, ok := c.Get(ctxKey).(context.Context); ok && ctx != nil {
		return ctx
	}

	upd := c.Update()
	var userID, chatID int64
	if u := c.Sender(); u != nil {
		userID = u.ID
	}
	if ch := c.Chat(); ch != nil {
		chatID = ch.ID
	}
	rid, _ := c.Get(RIDKey).(string)
	if rid == "" {
		rid = logger.BuildRID(upd.ID, chatID, userID)
	}

	ctx := logger.WithUpdateMeta(logger.WithRID(context.Background(), rid), upd.ID, userID, chatID)
	ctx = logger.WithLogger(ctx, logger.Component("tg"))
	c.Set(ctxKey, ctx)
	return ctx
}

// WithHandler tags the update's context with the handler name so that
// everything logged downstream carries it.
func WithHandler(c tele.Context, handler string) context.Context {
	ctx := BuildContext(c)
	if handler != "" {
		ctx = logger.WithHandler(ctx, handler)
		c.Set(ctxKey, ctx)
	}
	return ctx
}

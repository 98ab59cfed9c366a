package logger

import (
	"context"
	"log/slog"
)

type ctxKey int

const (
	keyLogger ctxKey = iota
	keyRID
	keyUpdate
	keyHandler
	keyDraft
)

// updateMeta identifies the Telegram update a context belongs to.
type updateMeta struct {
	updateID int
	userID   int64
	chatID   int64
}

// draftMeta identifies the draft a composer step works on.
type draftMeta struct {
	id    string
	state string
}

func orBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

// WithLogger stores log in ctx. A nil logger leaves ctx unchanged.
func WithLogger(ctx context.Context, log *slog.Logger) context.Context {
	ctx = orBackground(ctx)
	if log == nil {
		return ctx
	}
	return context.WithValue(ctx, keyLogger, log)
}

// FromContext returns the logger stored by WithLogger, or Root.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(keyLogger).(*slog.Logger); ok {
			return l
		}
	}
	return Root()
}

// WithRID attaches the request correlation id.
func WithRID(ctx context.Context, rid string) context.Context {
	return context.WithValue(orBackground(ctx), keyRID, rid)
}

// RIDFrom returns the request correlation id.
func RIDFrom(ctx context.Context) string {
	return stringValue(ctx, keyRID)
}

// WithUpdateMeta attaches the update, user and chat identifiers.
func WithUpdateMeta(ctx context.Context, updateID int, userID, chatID int64) context.Context {
	return context.WithValue(orBackground(ctx), keyUpdate, updateMeta{updateID: updateID, userID: userID, chatID: chatID})
}

func updateFrom(ctx context.Context) updateMeta {
	if ctx == nil {
		return updateMeta{}
	}
	m, _ := ctx.Value(keyUpdate).(updateMeta)
	return m
}

// UpdateIDFrom returns the Telegram update id.
func UpdateIDFrom(ctx context.Context) int { return updateFrom(ctx).updateID }

// UserIDFrom returns the Telegram user id.
func UserIDFrom(ctx context.Context) int64 { return updateFrom(ctx).userID }

// ChatIDFrom returns the Telegram chat id.
func ChatIDFrom(ctx context.Context) int64 { return updateFrom(ctx).chatID }

// WithHandler records the name of the handler serving the update.
func WithHandler(ctx context.Context, handler string) context.Context {
	ctx = orBackground(ctx)
	if handler == "" {
		return ctx
	}
	return context.WithValue(ctx, keyHandler, handler)
}

// HandlerFrom returns the handler name recorded by WithHandler.
func HandlerFrom(ctx context.Context) string {
	return stringValue(ctx, keyHandler)
}

// WithDraft attaches the draft id and its conversation state. Empty values
// keep whatever an outer call attached.
func WithDraft(ctx context.Context, draftID, state string) context.Context {
	ctx = orBackground(ctx)
	m, _ := ctx.Value(keyDraft).(draftMeta)
	if draftID != "" {
		m.id = draftID
	}
	if state != "" {
		m.state = state
	}
	return context.WithValue(ctx, keyDraft, m)
}

func draftFrom(ctx context.Context) draftMeta {
	if ctx == nil {
		return draftMeta{}
	}
	m, _ := ctx.Value(keyDraft).(draftMeta)
	return m
}

// DraftIDFrom returns the draft id.
func DraftIDFrom(ctx context.Context) string { return draftFrom(ctx).id }

// StateFrom returns the conversation state.
func StateFrom(ctx context.Context) string { return draftFrom(ctx).state }

func stringValue(ctx context.Context, key ctxKey) string {
	if ctx == nil {
		return ""
	}
	s, _ := ctx.Value(key).(string)
	return s
}

// contextFields lists the context values copied into every record that
// does not carry the key explicitly.
var contextFields = []struct {
	key string
	get func(context.Context) any
}{
	{"rid", func(ctx context.Context) any { return RIDFrom(ctx) }},
	{"draft_id", func(ctx context.Context) any { return DraftIDFrom(ctx) }},
	{"state", func(ctx context.Context) any { return StateFrom(ctx) }},
	{"update_id", func(ctx context.Context) any { return int64(UpdateIDFrom(ctx)) }},
	{"user_id", func(ctx context.Context) any { return UserIDFrom(ctx) }},
	{"chat_id", func(ctx context.Context) any { return ChatIDFrom(ctx) }},
	{"handler", func(ctx context.Context) any { return HandlerFrom(ctx) }},
}

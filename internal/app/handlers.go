package app

import (
	"fmt"
	"strings"

	"github.com/m3rciful/postbot/core/telegram/commands"
	"github.com/m3rciful/postbot/core/telegram/format"
	tghelpers "github.com/m3rciful/postbot/core/telegram/helpers"
	"github.com/m3rciful/postbot/core/telegram/middleware"
	"github.com/m3rciful/postbot/core/telegram/ui"
	"github.com/m3rciful/postbot/internal/post"

	tele "gopkg.in/telebot.v4"
)

const (
	historyLimit = 10

	msgNotAllowed     = "⛔ This bot is restricted to its operator"
	msgUnknownText    = "Send /start to create a new post"
	msgUnknownMedia   = "Start a post with /start before sending media"
	msgUnknownButton  = "This button is no longer active"
	msgHistoryEmpty   = "No posts published yet"
	msgHistoryOff     = "Publication history is not configured"
	msgHistoryFailed  = "Could not load the history"
	msgHistoryHeading = "Last publications:"
)

var _ ui.FallbackProvider = (*App)(nil)

func (a *App) register() error {
	admin := a.cfg.CoreConfig().Telegram.AdminID != 0

	cmds := map[string]commands.Command{
		"/start": {
			Handler:     a.onNew,
			Description: "Create a new post",
			AdminOnly:   admin,
			Aliases:     []string{"new"},
		},
		"/cancel": {
			Handler:     a.onCancel,
			Description: "Cancel the current post",
			AdminOnly:   admin,
		},
	}
	if a.journal != nil {
		cmds["/history"] = commands.Command{
			Handler:     a.onHistory,
			Description: "Show recent publications",
			AdminOnly:   admin,
		}
	}
	for name, cmd := range cmds {
		if err := a.registry.RegisterCommand(name, cmd); err != nil {
			return fmt.Errorf("app: %w", err)
		}
	}

	for _, b := range post.Buttons {
		if err := a.registry.RegisterCallback(string(b), a.onButton(b)); err != nil {
			return fmt.Errorf("app: %w", err)
		}
	}
	a.registry.SetCallbackNotFound(a.UnknownCallback())
	return nil
}

// InProgress reports whether the sender of an update has an active draft.
func (a *App) InProgress(userID int64) bool {
	return a.composer.InProgress(userID)
}

// ManagerHandler feeds a message from a user with an active draft to the composer.
func (a *App) ManagerHandler(c tele.Context) error {
	return a.handle(c, eventFrom(c))
}

func (a *App) onNew(c tele.Context) error {
	ev := eventFrom(c)
	ev.Kind = post.EventStart
	return a.handle(c, ev)
}

func (a *App) onCancel(c tele.Context) error {
	ev := eventFrom(c)
	ev.Kind = post.EventCancel
	return a.handle(c, ev)
}

func (a *App) onButton(b post.Button) tele.HandlerFunc {
	return func(c tele.Context) error {
		if !a.allowed(c) {
			return tghelpers.Respond(c, msgNotAllowed)
		}
		ev := eventFrom(c)
		ev.Kind = post.EventButton
		ev.Button = b
		return a.handle(c, ev)
	}
}

func (a *App) handle(c tele.Context, ev post.Event) error {
	out := a.composer.Handle(tghelpers.BuildContext(c), ev)
	return a.execute(c, out.Effects)
}

// allowed applies the operator restriction to callbacks, which bypass command middleware.
func (a *App) allowed(c tele.Context) bool {
	return middleware.AdminOptions{AdminID: a.cfg.CoreConfig().Telegram.AdminID}.IsAdmin(c)
}

func (a *App) onHistory(c tele.Context) error {
	if a.journal == nil {
		return tghelpers.SendText(c, msgHistoryOff)
	}
	recs, err := a.journal.Recent(tghelpers.BuildContext(c), historyLimit)
	if err != nil {
		_ = tghelpers.SendText(c, msgHistoryFailed)
		return err
	}
	if len(recs) == 0 {
		return tghelpers.SendText(c, msgHistoryEmpty)
	}
	var b strings.Builder
	b.WriteString(msgHistoryHeading)
	for _, r := range recs {
		kind := r.MediaKind
		if kind == "" {
			kind = "text"
		}
		fmt.Fprintf(&b, "\n%s %s %s×%d", r.CreatedAt.Format("2006-01-02 15:04"), r.Status, kind, r.MediaCount)
		if r.Error != "" {
			fmt.Fprintf(&b, " (%s)", r.Error)
		}
	}
	return tghelpers.SendText(c, b.String())
}

func (a *App) rejectNonAdmin(c tele.Context) error {
	return tghelpers.Respond(c, msgNotAllowed)
}

// UnknownText answers text sent outside a conversation.
func (a *App) UnknownText() tele.HandlerFunc {
	return func(c tele.Context) error {
		return tghelpers.SendText(c, msgUnknownText)
	}
}

// UnknownMedia answers media sent outside a conversation.
func (a *App) UnknownMedia() tele.HandlerFunc {
	return func(c tele.Context) error {
		return tghelpers.SendText(c, msgUnknownMedia)
	}
}

// UnknownCallback answers buttons the registry does not know.
func (a *App) UnknownCallback() tele.HandlerFunc {
	return func(c tele.Context) error {
		return tghelpers.Respond(c, msgUnknownButton)
	}
}

// eventFrom maps an update to a composer event. Callers override Kind for
// commands and buttons.
func eventFrom(c tele.Context) post.Event {
	var ev post.Event
	if u := c.Sender(); u != nil {
		ev.UserID = u.ID
	}
	if ch := c.Chat(); ch != nil {
		ev.ChatID = ch.ID
	}

	msg := c.Message()
	switch {
	case c.Callback() != nil:
		ev.Kind = post.EventButton
	case msg == nil:
		ev.Kind = post.EventOther
	case msg.Photo != nil:
		ev.Kind = post.EventPhoto
		ev.FileID = msg.Photo.FileID
	case msg.Video != nil:
		ev.Kind = post.EventVideo
		ev.FileID = msg.Video.FileID
	case msg.Text != "":
		ev.Kind = post.EventText
		ev.Text = msg.Text
		ev.Markup = format.EntitiesToMarkdownV2(msg.Text, msg.Entities)
	default:
		ev.Kind = post.EventOther
	}
	return ev
}

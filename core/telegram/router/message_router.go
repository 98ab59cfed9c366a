package router

import (
	"strings"

	tg "github.com/m3rciful/postbot/core/telegram"
	"github.com/m3rciful/postbot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// FSM defines the minimal interface for a conversation driver.
type FSM interface {
	InProgress(userID int64) bool
	ManagerHandler(c tele.Context) error
}

// MessageOptions controls fallback behaviour for text and media updates.
type MessageOptions struct {
	UnknownText  tele.HandlerFunc
	UnknownMedia tele.HandlerFunc
	// Admin guards admin-only commands reached through their aliases.
	Admin middleware.AdminOptions
}

// MediaEndpoints are the non-text message kinds forwarded to the FSM.
var MediaEndpoints = []string{
	tele.OnPhoto,
	tele.OnVideo,
	tele.OnDocument,
	tele.OnAnimation,
	tele.OnAudio,
	tele.OnVoice,
	tele.OnVideoNote,
	tele.OnSticker,
}

// MessageRoutes builds handlers for text and media routing. While the sender
// has a conversation in progress, messages go to the FSM; command-shaped text
// is resolved through the registry and never reaches the FSM.
func MessageRoutes(fsmMgr FSM, reg *tg.Registry, opts MessageOptions) []tg.Route {
	handler := func(c tele.Context) error {
		text := c.Text()

		if strings.HasPrefix(text, "/") {
			if reg != nil {
				if key, cmd, ok := reg.LookupCommand(commandName(text)); ok && cmd.Handler != nil {
					h := cmd.Handler
					if cmd.AdminOnly {
						h = middleware.AdminOnlyMiddleware(opts.Admin)(h)
					}
					return run(c, handlerName(key), h)
				}
			}
			if fsmMgr != nil && fsmMgr.InProgress(c.Sender().ID) {
				skip(c, "fsm")
				return nil
			}
		} else if fsmMgr != nil && fsmMgr.InProgress(c.Sender().ID) {
			return run(c, "fsm", fsmMgr.ManagerHandler)
		}

		if opts.UnknownText != nil {
			return run(c, "unknown_text", opts.UnknownText)
		}

		skip(c, "unknown_text")
		return nil
	}

	mediaHandler := func(c tele.Context) error {
		if fsmMgr != nil && fsmMgr.InProgress(c.Sender().ID) {
			return run(c, "fsm_media", fsmMgr.ManagerHandler)
		}
		if opts.UnknownMedia != nil {
			return run(c, "unexpected_media", opts.UnknownMedia)
		}
		skip(c, "unexpected_media")
		return nil
	}

	wrap := func(h tele.HandlerFunc) tele.HandlerFunc {
		return middleware.RecoverMiddleware(middleware.LoggerMiddleware(h))
	}

	routes := []tg.Route{{Endpoint: tele.OnText, Handler: wrap(handler)}}
	for _, ep := range MediaEndpoints {
		routes = append(routes, tg.Route{Endpoint: ep, Handler: wrap(mediaHandler)})
	}
	return routes
}

// commandName strips arguments and the @bot suffix from a command message.
func commandName(text string) string {
	name := strings.Fields(text)[0]
	if at := strings.IndexByte(name, '@'); at > 0 {
		name = name[:at]
	}
	return name
}

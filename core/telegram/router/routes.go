package router

import (
	tg "github.com/m3rciful/postbot/core/telegram"
	"github.com/m3rciful/postbot/core/telegram/middleware"
	"github.com/m3rciful/postbot/core/telegram/ui"
)

// Routes assembles command, message and callback routes for a bot whose
// conversation is driven by fsm. fb may be nil.
func Routes(fsm FSM, reg *tg.Registry, fb ui.FallbackProvider, admin middleware.AdminOptions) []tg.Route {
	msg := MessageOptions{Admin: admin}
	var cb CallbackOptions
	if fb != nil {
		msg.UnknownText = fb.UnknownText()
		msg.UnknownMedia = fb.UnknownMedia()
		cb.NotFound = fb.UnknownCallback()
	}

	routes := CommandRoutes(reg, CommandRouteOptions{
		AdminID:       admin.AdminID,
		OnAdminReject: admin.OnReject,
	})
	routes = append(routes, MessageRoutes(fsm, reg, msg)...)
	return append(routes, CallbackRoute(reg, cb))
}

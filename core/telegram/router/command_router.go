package router

import (
	"log/slog"
	"sort"

	"github.com/m3rciful/postbot/core/logger"
	tg "github.com/m3rciful/postbot/core/telegram"
	"github.com/m3rciful/postbot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// CommandRouteOptions configures how commands are wrapped and exposed.
type CommandRouteOptions struct {
	AdminID       int64
	OnAdminReject tele.HandlerFunc
}

// CommandRoutes returns one route per registered command, sorted by name.
// Each handler is logged under the command name; admin-only commands reject
// other senders before the handler runs.
func CommandRoutes(reg *tg.Registry, opts CommandRouteOptions) []tg.Route {
	if reg == nil {
		return nil
	}
	admin := middleware.AdminOptions{AdminID: opts.AdminID, OnReject: opts.OnAdminReject}

	cmds := reg.Commands()
	names := make([]string, 0, len(cmds))
	for name := range cmds {
		names = append(names, name)
	}
	sort.Strings(names)

	routes := make([]tg.Route, 0, len(names))
	for _, name := range names {
		def := cmds[name]
		h := def.Handler
		if def.AdminOnly {
			h = middleware.AdminOnlyMiddleware(admin)(h)
		}
		h = summarized(handlerName(name), h)
		routes = append(routes, tg.Route{
			Endpoint: name,
			Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(h)),
		})
	}

	logger.Info(logger.Background(), "tg.wire", "wire.commands",
		slog.String("status", "ok"),
		slog.Int("commands", len(routes)),
		slog.Int("callbacks", len(reg.ListCallbacks())),
	)
	return routes
}

func summarized(name string, h tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		return run(c, name, h)
	}
}

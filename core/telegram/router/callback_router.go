package router

import (
	"log/slog"

	tg "github.com/m3rciful/postbot/core/telegram"
	"github.com/m3rciful/postbot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/postbot/core/telegram/helpers"
	"github.com/m3rciful/postbot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// CallbackOptions customises fallback behaviour for callbacks.
type CallbackOptions struct {
	// NotFound handles keys with no registered handler; nil uses the
	// registry's fallback.
	NotFound tele.HandlerFunc
}

// CallbackRoute returns the tele.OnCallback route. Callbacks are looked up
// by the key of their "\f<key>|<payload>" data. Handlers may answer the
// query themselves via helpers.Respond; otherwise an empty answer is sent
// once they return so the client stops its spinner.
func CallbackRoute(reg *tg.Registry, opts CallbackOptions) tg.Route {
	handler := func(c tele.Context) error {
		if c.Callback() == nil {
			return nil
		}
		defer func() {
			if !tghelpers.Responded(c) {
				_ = c.Respond()
			}
		}()

		key, _ := callbacks.ParseCallbackData(c.Callback())
		name := "callback." + handlerName(key)
		if h, ok := reg.GetCallback(key); ok && h != nil {
			return run(c, name, h, slog.String("cb_key", key))
		}

		fallback := opts.NotFound
		if fallback == nil {
			fallback = reg.CallbackNotFound()
		}
		return run(c, name, fallback, slog.String("cb_key", key), slog.String("reason", "not_found"))
	}
	return tg.Route{
		Endpoint: tele.OnCallback,
		Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(handler)),
	}
}

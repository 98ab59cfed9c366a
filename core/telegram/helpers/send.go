package helpers

import (
	"errors"
	"log/slog"
	"sync/atomic"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/postbot/core/logger"
	"github.com/m3rciful/postbot/core/telegram/sender"
)

const respondedKey = "cb_responded"

var dispatcher atomic.Pointer[sender.Dispatcher]

// SetDispatcher installs the async sender used by SendAsync; nil restores
// inline sending.
func SetDispatcher(d *sender.Dispatcher) {
	dispatcher.Store(d)
}

// SendAsync queues run on the dispatcher. It runs inline when no dispatcher
// is installed or the queue refuses the job.
func SendAsync(c tele.Context, action, endpoint string, run func() error) error {
	d := dispatcher.Load()
	if d == nil {
		return run()
	}
	ctx := BuildContext(c)
	err := d.Enqueue(ctx, action, endpoint, run)
	if !errors.Is(err, sender.ErrQueueFull) && !errors.Is(err, sender.ErrQueueClosed) {
		return err
	}
	logger.Warn(ctx, "tg.sender", "queue.fallback",
		slog.String("op", action),
		slog.String("endpoint", endpoint),
		slog.String("err", err.Error()),
	)
	return run()
}

// SendText sends text to the current chat without a parse mode. opts are
// passed to tele.Context.Send unchanged.
func SendText(c tele.Context, text string, opts ...interface{}) error {
	return SendAsync(c, "send.text", "sendMessage", func() error {
		return c.Send(text, opts...)
	})
}

// Respond answers the current callback query and marks it answered. Outside
// a callback a non-empty text goes out as a message instead.
func Respond(c tele.Context, text string) error {
	if c.Callback() == nil {
		if text == "" {
			return nil
		}
		return SendText(c, text)
	}
	c.Set(respondedKey, true)
	if text == "" {
		return c.Respond()
	}
	return c.Respond(&tele.CallbackResponse{Text: text})
}

// Responded reports whether Respond already answered the current callback.
func Responded(c tele.Context) bool {
	answered, _ := c.Get(respondedKey).(bool)
	return answered
}

package middleware

import (
	"sync/atomic"

	tele "gopkg.in/telebot.v4"
)

const countersKey = "response_counters"

// Counters tracks the responses a handler produced for one update.
type Counters struct {
	messages atomic.Int32
	keyboard atomic.Bool
}

func (c *Counters) add(opts []interface{}) {
	c.messages.Add(1)
	for _, o := range opts {
		switch v := o.(type) {
		case *tele.SendOptions:
			if v != nil && v.ReplyMarkup != nil {
				c.keyboard.Store(true)
			}
		case *tele.ReplyMarkup:
			if v != nil {
				c.keyboard.Store(true)
			}
		}
	}
}

// countingContext counts successful sends made through the update context.
type countingContext struct {
	tele.Context
	n *Counters
}

func (m countingContext) counted(err error, opts []interface{}) error {
	if err == nil {
		m.n.add(opts)
	}
	return err
}

func (m countingContext) Send(what interface{}, opts ...interface{}) error {
	return m.counted(m.Context.Send(what, opts...), opts)
}

func (m countingContext) Reply(what interface{}, opts ...interface{}) error {
	return m.counted(m.Context.Reply(what, opts...), opts)
}

// SendAlbum counts an album as one response.
func (m countingContext) SendAlbum(a tele.Album, opts ...interface{}) error {
	return m.counted(m.Context.SendAlbum(a, opts...), opts)
}

func (m countingContext) Edit(what interface{}, opts ...interface{}) error {
	return m.counted(m.Context.Edit(what, opts...), opts)
}

func (m countingContext) EditOrSend(what interface{}, opts ...interface{}) error {
	return m.counted(m.Context.EditOrSend(what, opts...), opts)
}

// MessageMetricsMiddleware counts the messages sent while handling an
// update and whether any of them carried a keyboard.
func MessageMetricsMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		n := &Counters{}
		c.Set(countersKey, n)
		return next(countingContext{Context: c, n: n})
	}
}

// GetCounters returns the message count and keyboard flag recorded for the
// update; both are zero when the middleware is not installed.
func GetCounters(c tele.Context) (int, bool) {
	n, ok := c.Get(countersKey).(*Counters)
	if !ok || n == nil {
		return 0, false
	}
	return int(n.messages.Load()), n.keyboard.Load()
}

package middleware

import (
	"errors"
	"testing"
	"time"

	tele "gopkg.in/telebot.v4"
)

type fakeContext struct {
	tele.Context
	update tele.Update
	store  map[string]interface{}
}

func newContext(upd tele.Update) *fakeContext {
	return &fakeContext{update: upd, store: map[string]interface{}{}}
}

func message(from int64, album string) *fakeContext {
	return newContext(tele.Update{ID: 7, Message: &tele.Message{
		Sender:  &tele.User{ID: from},
		Chat:    &tele.Chat{ID: from},
		AlbumID: album,
	}})
}

func (f *fakeContext) Update() tele.Update             { return f.update }
func (f *fakeContext) Get(key string) interface{}      { return f.store[key] }
func (f *fakeContext) Set(key string, val interface{}) { f.store[key] = val }
func (f *fakeContext) Text() string                    { return "" }

func (f *fakeContext) Sender() *tele.User {
	if f.update.Callback != nil {
		return f.update.Callback.Sender
	}
	return f.update.Message.Sender
}

func (f *fakeContext) Chat() *tele.Chat {
	if f.update.Message != nil {
		return f.update.Message.Chat
	}
	return nil
}

func TestUpdateKind(t *testing.T) {
	cases := []struct {
		upd  tele.Update
		want string
	}{
		{tele.Update{Callback: &tele.Callback{}}, "callback"},
		{tele.Update{Message: &tele.Message{AlbumID: "a1"}}, "media_group"},
		{tele.Update{Message: &tele.Message{}}, "message"},
		{tele.Update{}, "other"},
	}
	for _, tc := range cases {
		if got := UpdateKind(tc.upd); got != tc.want {
			t.Fatalf("UpdateKind = %q, want %q", got, tc.want)
		}
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	var passed, limited int
	mw := RateLimitMiddleware(RateLimitOptions{
		Interval:  time.Hour,
		Exclude:   map[string]struct{}{"media_group": {}},
		OnLimited: func(tele.Context) error { limited++; return nil },
	})
	h := mw(func(tele.Context) error { passed++; return nil })

	_ = h(message(1, ""))
	_ = h(message(1, ""))
	_ = h(message(2, ""))
	if passed != 2 || limited != 1 {
		t.Fatalf("passed=%d limited=%d, want 2 and 1", passed, limited)
	}

	for i := 0; i < 3; i++ {
		_ = h(message(1, "album"))
	}
	if passed != 5 {
		t.Fatalf("album items limited, passed = %d", passed)
	}
}

func TestLimiterPrunes(t *testing.T) {
	lim := &limiter{interval: time.Second, last: make(map[int64]time.Time)}
	base := time.Unix(0, 0)
	for i := int64(0); i < 1024; i++ {
		lim.allow(i, base)
	}
	if !lim.allow(5000, base.Add(2*time.Second)) {
		t.Fatalf("new user limited")
	}
	if len(lim.last) != 1 {
		t.Fatalf("stale entries kept: %d", len(lim.last))
	}
}

func TestRecoverMiddlewareReturnsError(t *testing.T) {
	h := RecoverMiddleware(func(tele.Context) error { panic("boom") })
	err := h(message(1, ""))
	if err == nil {
		t.Fatalf("expected error from recovered panic")
	}

	want := errors.New("plain")
	h = RecoverMiddleware(func(tele.Context) error { return want })
	if err := h(message(1, "")); !errors.Is(err, want) {
		t.Fatalf("err = %v, want %v", err, want)
	}
}

func TestAdminOnlyMiddleware(t *testing.T) {
	var rejected, passed int
	mw := AdminOnlyMiddleware(AdminOptions{
		AdminID:  1,
		OnReject: func(tele.Context) error { rejected++; return nil },
	})
	h := mw(func(tele.Context) error { passed++; return nil })
	_ = h(message(1, ""))
	_ = h(message(2, ""))
	if passed != 1 || rejected != 1 {
		t.Fatalf("passed=%d rejected=%d", passed, rejected)
	}
}

func TestReceiptsFirst(t *testing.T) {
	r := &receipts{window: time.Second, seen: make(map[int]time.Time)}
	now := time.Unix(100, 0)
	if !r.first(1, now) || r.first(1, now) {
		t.Fatalf("duplicate update not detected")
	}
	if !r.first(1, now.Add(3*time.Second)) {
		t.Fatalf("expired update still remembered")
	}
}

type sendingContext struct {
	*fakeContext
	fail bool
}

func (s sendingContext) Send(interface{}, ...interface{}) error {
	if s.fail {
		return errors.New("blocked")
	}
	return nil
}

func TestMessageMetricsMiddleware(t *testing.T) {
	c := sendingContext{fakeContext: message(1, "")}
	var inner tele.Context
	h := MessageMetricsMiddleware(func(c tele.Context) error {
		inner = c
		_ = c.Send("one")
		_ = c.Send("two", &tele.SendOptions{ReplyMarkup: &tele.ReplyMarkup{}})
		return nil
	})
	if err := h(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	msgs, kb := GetCounters(inner)
	if msgs != 2 || !kb {
		t.Fatalf("counters = %d %v", msgs, kb)
	}

	failing := sendingContext{fakeContext: message(1, ""), fail: true}
	_ = MessageMetricsMiddleware(func(c tele.Context) error { return c.Send("x") })(failing)
	if msgs, _ := GetCounters(failing); msgs != 0 {
		t.Fatalf("failed send counted: %d", msgs)
	}
}

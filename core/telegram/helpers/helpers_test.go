package helpers

import (
	"testing"

	"github.com/m3rciful/postbot/core/logger"

	tele "gopkg.in/telebot.v4"
)

// fakeContext implements the parts of tele.Context the helpers touch.
type fakeContext struct {
	tele.Context
	update    tele.Update
	store     map[string]interface{}
	sent      []interface{}
	responses []*tele.CallbackResponse
}

func newFake(upd tele.Update) *fakeContext {
	return &fakeContext{update: upd, store: map[string]interface{}{}}
}

func (f *fakeContext) Update() tele.Update             { return f.update }
func (f *fakeContext) Callback() *tele.Callback        { return f.update.Callback }
func (f *fakeContext) Get(key string) interface{}      { return f.store[key] }
func (f *fakeContext) Set(key string, val interface{}) { f.store[key] = val }
func (f *fakeContext) Send(what interface{}, _ ...interface{}) error {
	f.sent = append(f.sent, what)
	return nil
}

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

func (f *fakeContext) Respond(resp ...*tele.CallbackResponse) error {
	f.responses = append(f.responses, resp...)
	return nil
}

func TestBuildContextCachesMetadata(t *testing.T) {
	c := newFake(tele.Update{ID: 9, Message: &tele.Message{
		Sender: &tele.User{ID: 3},
		Chat:   &tele.Chat{ID: 4},
	}})
	ctx := BuildContext(c)
	if logger.UserIDFrom(ctx) != 3 || logger.ChatIDFrom(ctx) != 4 || logger.UpdateIDFrom(ctx) != 9 {
		t.Fatalf("metadata missing from context")
	}
	if logger.RIDFrom(ctx) == "" {
		t.Fatal("rid missing")
	}
	if again := BuildContext(c); again != ctx {
		t.Fatal("context not cached")
	}
	if h := logger.HandlerFrom(WithHandler(c, "fsm")); h != "fsm" {
		t.Fatalf("handler = %q", h)
	}
}

func TestRespondCallback(t *testing.T) {
	c := newFake(tele.Update{Callback: &tele.Callback{Sender: &tele.User{ID: 1}}})
	if Responded(c) {
		t.Fatal("fresh callback marked as answered")
	}
	if err := Respond(c, "done"); err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if !Responded(c) || len(c.responses) != 1 || c.responses[0].Text != "done" {
		t.Fatalf("callback not answered: %+v", c.responses)
	}
	if len(c.sent) != 0 {
		t.Fatalf("callback answer sent as message: %v", c.sent)
	}
}

func TestRespondOutsideCallbackSendsMessage(t *testing.T) {
	c := newFake(tele.Update{Message: &tele.Message{Sender: &tele.User{ID: 1}, Chat: &tele.Chat{ID: 1}}})
	if err := Respond(c, "cancelled"); err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if len(c.sent) != 1 || c.sent[0] != "cancelled" {
		t.Fatalf("sent = %v", c.sent)
	}
	if err := Respond(c, ""); err != nil || len(c.sent) != 1 {
		t.Fatalf("empty respond should be a no-op outside callbacks")
	}
}

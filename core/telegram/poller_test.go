package telegram

import (
	"reflect"
	"testing"
	"time"

	tele "gopkg.in/telebot.v4"

	coreconfig "github.com/m3rciful/postbot/core/config"
)

func TestNewPollerLongpoll(t *testing.T) {
	cfg := &coreconfig.Config{}
	cfg.Telegram.RunMode = coreconfig.RunModeLongpoll
	p, ok := NewPoller(cfg).(*tele.LongPoller)
	if !ok {
		t.Fatalf("expected long poller")
	}
	if p.Timeout != defaultLongPollTimeout {
		t.Fatalf("timeout = %s", p.Timeout)
	}
	if !reflect.DeepEqual(p.AllowedUpdates, AllowedUpdates) {
		t.Fatalf("allowed updates = %v", p.AllowedUpdates)
	}

	cfg.Telegram.LongPollTimeoutSeconds = 25
	if p := NewPoller(cfg).(*tele.LongPoller); p.Timeout != 25*time.Second {
		t.Fatalf("timeout = %s", p.Timeout)
	}
}

func TestNewPollerWebhook(t *testing.T) {
	cfg := &coreconfig.Config{}
	cfg.Telegram.RunMode = "WEBHOOK"
	cfg.Webhook = coreconfig.WebhookConfig{
		Listen:      "0.0.0.0",
		Port:        8443,
		URL:         "https://bot.example.com/hook",
		SecretToken: "s3cret",
	}
	w, ok := NewPoller(cfg).(*tele.Webhook)
	if !ok {
		t.Fatalf("expected webhook poller")
	}
	if w.Listen != "0.0.0.0:8443" || w.Endpoint.PublicURL != "https://bot.example.com/hook" || w.SecretToken != "s3cret" {
		t.Fatalf("unexpected webhook %+v", w)
	}
}

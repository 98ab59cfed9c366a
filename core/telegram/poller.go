package telegram

import (
	"net"
	"strconv"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"

	coreconfig "github.com/m3rciful/postbot/core/config"
)

const defaultLongPollTimeout = 10 * time.Second

// AllowedUpdates are the update kinds the bot subscribes to: messages carry
// the composition input, callback queries the button presses.
var AllowedUpdates = []string{"message", "callback_query"}

// NewPoller returns the update source for cfg: a webhook listener in webhook
// mode, a long poller otherwise.
func NewPoller(cfg *coreconfig.Config) tele.Poller {
	if strings.EqualFold(strings.TrimSpace(cfg.Telegram.RunMode), coreconfig.RunModeWebhook) {
		wh := cfg.Webhook
		return &tele.Webhook{
			Listen:         net.JoinHostPort(wh.Listen, strconv.Itoa(wh.Port)),
			SecretToken:    wh.SecretToken,
			AllowedUpdates: AllowedUpdates,
			Endpoint:       &tele.WebhookEndpoint{PublicURL: wh.URL},
		}
	}
	return &tele.LongPoller{
		Timeout:        longPollTimeout(cfg.Telegram.LongPollTimeoutSeconds),
		AllowedUpdates: AllowedUpdates,
	}
}

func longPollTimeout(seconds int) time.Duration {
	if seconds <= 0 {
		return defaultLongPollTimeout
	}
	return time.Duration(seconds) * time.Second
}

package app

import (
	"log/slog"

	"github.com/m3rciful/postbot/core/logger"
	tghelpers "github.com/m3rciful/postbot/core/telegram/helpers"
	"github.com/m3rciful/postbot/core/telegram/keyboard"
	"github.com/m3rciful/postbot/internal/post"

	tele "gopkg.in/telebot.v4"
)

// effectJob sends message effects in order. It is retried as a whole by the
// dispatcher and resumes from the effect that failed.
type effectJob struct {
	api     Sender
	chat    tele.Recipient
	effects []post.Effect
	next    int
}

func (j *effectJob) run() error {
	for j.next < len(j.effects) {
		eff := j.effects[j.next]
		if err := deliver(j.api, j.recipient(eff), eff); err != nil {
			return err
		}
		j.next++
	}
	return nil
}

// recipient prefers the chat named by the effect over the chat of the update.
func (j *effectJob) recipient(eff post.Effect) tele.Recipient {
	var id int64
	switch e := eff.(type) {
	case post.SendText:
		id = e.ChatID
	case post.SendMediaGroup:
		id = e.ChatID
	}
	if id != 0 {
		return &tele.Chat{ID: id}
	}
	return j.chat
}

// splitEffects separates acknowledgments, answered inline, from messages.
func splitEffects(effects []post.Effect) (acks []string, msgs []post.Effect) {
	for _, eff := range effects {
		if a, ok := eff.(post.Ack); ok {
			acks = append(acks, a.Text)
			continue
		}
		msgs = append(msgs, eff)
	}
	return acks, msgs
}

// execute answers acks on c and queues the remaining effects as one job.
func (a *App) execute(c tele.Context, effects []post.Effect) error {
	acks, msgs := splitEffects(effects)
	for _, text := range acks {
		if err := tghelpers.Respond(c, text); err != nil {
			logger.Warn(tghelpers.BuildContext(c), "tg", "ack.fail",
				slog.String("status", "fail"),
				slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
			)
		}
	}
	if len(msgs) == 0 {
		return nil
	}
	api := a.sender()
	if api == nil {
		return ErrNotBound
	}
	job := &effectJob{api: api, chat: c.Recipient(), effects: msgs}
	return tghelpers.SendAsync(c, "send.effects", endpointFor(msgs), job.run)
}

func endpointFor(msgs []post.Effect) string {
	for _, eff := range msgs {
		if g, ok := eff.(post.SendMediaGroup); ok && len(g.Items) > 1 {
			return "sendMediaGroup"
		}
	}
	return "sendMessage"
}

func choicesMarkup(choices []post.Choice) *tele.ReplyMarkup {
	if len(choices) == 0 {
		return nil
	}
	btns := make([]keyboard.Button, len(choices))
	for i, ch := range choices {
		btns[i] = keyboard.Button{Text: ch.Label, Unique: string(ch.Button)}
	}
	return keyboard.Grid(2, btns...)
}

package app

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/m3rciful/postbot/internal/post"

	tele "gopkg.in/telebot.v4"
)

// ErrNotBound is returned by Publish before the publisher is attached to a bot.
var ErrNotBound = errors.New("channel publisher: bot not bound")

// Sender is the part of tele.Bot used to deliver effects.
type Sender interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
	SendAlbum(to tele.Recipient, a tele.Album, opts ...interface{}) ([]tele.Message, error)
}

// channel addresses a chat by username ("@news") or numeric id.
type channel string

func (c channel) Recipient() string { return string(c) }

type senderBox struct{ s Sender }

// ChannelPublisher posts finished drafts to the broadcast channel.
type ChannelPublisher struct {
	to  channel
	api atomic.Pointer[senderBox]
}

// NewChannelPublisher returns a publisher for the channel id or username.
func NewChannelPublisher(channelID string) *ChannelPublisher {
	return &ChannelPublisher{to: channel(channelID)}
}

// Bind attaches the bot used for delivery.
func (p *ChannelPublisher) Bind(s Sender) {
	p.api.Store(&senderBox{s: s})
}

// Destination returns the configured channel.
func (p *ChannelPublisher) Destination() string {
	return string(p.to)
}

// Publish delivers eff to the channel in a single Bot API call.
func (p *ChannelPublisher) Publish(ctx context.Context, eff post.Effect) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	box := p.api.Load()
	if box == nil || box.s == nil {
		return ErrNotBound
	}
	return deliver(box.s, p.to, eff)
}

// deliver performs one effect through s. A media group of a single item is
// sent as a plain photo or video, since albums need at least two items.
func deliver(s Sender, to tele.Recipient, eff post.Effect) error {
	switch e := eff.(type) {
	case post.SendText:
		_, err := s.Send(to, e.Text, sendOptions(e.Markup, choicesMarkup(e.Choices)))
		return err
	case post.SendMediaGroup:
		items := album(e)
		if len(items) == 0 {
			return fmt.Errorf("deliver: empty media group")
		}
		if len(items) == 1 {
			_, err := s.Send(to, items[0], sendOptions(e.Markup, nil))
			return err
		}
		_, err := s.SendAlbum(to, items, sendOptions(e.Markup, nil))
		return err
	default:
		return fmt.Errorf("deliver: unsupported effect %T", eff)
	}
}

func sendOptions(m post.Markup, rm *tele.ReplyMarkup) *tele.SendOptions {
	opts := &tele.SendOptions{ReplyMarkup: rm}
	if m == post.MarkupMarkdownV2 {
		opts.ParseMode = tele.ModeMarkdownV2
	}
	return opts
}

// album builds the media group; the caption goes on the first item only.
func album(e post.SendMediaGroup) tele.Album {
	out := make(tele.Album, 0, len(e.Items))
	for i, it := range e.Items {
		caption := ""
		if i == 0 {
			caption = e.Caption
		}
		file := tele.File{FileID: it.FileID}
		switch it.Kind {
		case post.MediaVideo:
			out = append(out, &tele.Video{File: file, Caption: caption})
		default:
			out = append(out, &tele.Photo{File: file, Caption: caption})
		}
	}
	return out
}

var _ post.Publisher = (*ChannelPublisher)(nil)

package post

import "github.com/m3rciful/postbot/core/telegram/state"

// Markup names the text encoding of an outbound message.
type Markup string

const (
	// MarkupNone sends text as is.
	MarkupNone Markup = ""
	// MarkupMarkdownV2 asks Telegram to parse MarkdownV2.
	MarkupMarkdownV2 Markup = "MarkdownV2"
)

// Effect is an outbound action produced by the conversation.
type Effect interface {
	effect()
}

// Choice is an inline button offered with a message.
type Choice struct {
	Label  string
	Button Button
}

// SendText sends a text message, optionally with inline choices.
type SendText struct {
	ChatID  int64
	Text    string
	Markup  Markup
	Choices []Choice
}

// SendMediaGroup sends Items as a single album. Caption is attached to the
// first item only.
type SendMediaGroup struct {
	ChatID  int64
	Items   []MediaItem
	Caption string
	Markup  Markup
}

// Ack is a transient acknowledgment shown to the user who triggered the event.
type Ack struct {
	Text string
}

func (SendText) effect()       {}
func (SendMediaGroup) effect() {}
func (Ack) effect()            {}

// Outcome is the result of handling one event.
type Outcome struct {
	State   state.State
	Effects []Effect

	// Published is the effect handed to the Publisher, if a publish was attempted.
	Published Effect
	// PublishErr is the failure returned by the Publisher.
	PublishErr error
}

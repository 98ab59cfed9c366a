package post

// EventKind classifies an inbound update.
type EventKind string

const (
	EventText   EventKind = "text"
	EventPhoto  EventKind = "photo"
	EventVideo  EventKind = "video"
	EventOther  EventKind = "other"
	EventButton EventKind = "button"
	EventStart  EventKind = "command:start"
	EventCancel EventKind = "command:cancel"
)

// Button is the token carried by an inline keyboard press.
type Button string

const (
	ButtonSkipMedia    Button = "skip_media"
	ButtonConfirmMedia Button = "confirm_media"
	ButtonPublish      Button = "publish"
	ButtonEdit         Button = "edit"
	ButtonCancel       Button = "cancel"
)

// Buttons lists every token the conversation reacts to.
var Buttons = []Button{ButtonSkipMedia, ButtonConfirmMedia, ButtonPublish, ButtonEdit, ButtonCancel}

// Event is a single update addressed to the conversation of UserID.
type Event struct {
	UserID int64
	ChatID int64
	Kind   EventKind

	// Text is the raw message text.
	Text string
	// Markup is Text rendered as MarkdownV2 source. When empty, Text is taken as markup.
	Markup string

	// FileID references the media of photo and video events. For photos it is
	// the largest size available.
	FileID string

	Button Button
}

func (e Event) markup() string {
	if e.Markup != "" {
		return e.Markup
	}
	return e.Text
}

func (e Event) mediaKind() (MediaKind, bool) {
	switch e.Kind {
	case EventPhoto:
		return MediaPhoto, e.FileID != ""
	case EventVideo:
		return MediaVideo, e.FileID != ""
	}
	return "", false
}

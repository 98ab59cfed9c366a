// Package post implements the conversation that assembles a channel post
// step by step and publishes it in a single call.
package post

import (
	"time"

	"github.com/google/uuid"

	"github.com/m3rciful/postbot/core/telegram/state"
)

// MaxMedia is the largest number of media items a post can carry; it matches
// the Bot API limit for a media group.
const MaxMedia = 10

// Conversation states of a draft.
const (
	StateAwaitingTitle        state.State = "post.awaiting_title"
	StateAwaitingBody         state.State = "post.awaiting_body"
	StateAwaitingMedia        state.State = "post.awaiting_media"
	StateAwaitingConfirmation state.State = "post.awaiting_confirmation"
	StatePublished            state.State = "post.published"
	StateCancelled            state.State = "post.cancelled"
)

// MediaKind tags a media item.
type MediaKind string

const (
	MediaPhoto MediaKind = "photo"
	MediaVideo MediaKind = "video"
)

// MediaItem references uploaded content by its Telegram file id.
type MediaItem struct {
	FileID string
	Kind   MediaKind
}

// Draft is the in-progress post of a single user.
type Draft struct {
	// ID is unique per composition; edit starts a new one.
	ID     string
	Owner  int64
	ChatID int64

	Title string
	// Body holds MarkdownV2 source exactly as received.
	Body string

	// Media is append-only; order is publish order.
	Media []MediaItem
	// Kind is fixed by the first accepted item and empty before that.
	Kind MediaKind

	State     state.State
	StartedAt time.Time
}

func newDraft(owner, chatID int64, now time.Time) *Draft {
	return &Draft{
		ID:        uuid.NewString(),
		Owner:     owner,
		ChatID:    chatID,
		State:     StateAwaitingTitle,
		StartedAt: now,
	}
}

// Full reports whether the draft reached MaxMedia.
func (d *Draft) Full() bool {
	return len(d.Media) >= MaxMedia
}

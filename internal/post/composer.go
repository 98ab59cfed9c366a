package post

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/m3rciful/postbot/core/logger"
	"github.com/m3rciful/postbot/core/telegram/state"
)

const component = logger.ComponentPosts

// ErrNoPublisher is returned by NewComposer when no Publisher is configured.
var ErrNoPublisher = errors.New("post: publisher is required")

// Publisher delivers an effect to the broadcast destination. A nil error means
// the destination accepted the post.
type Publisher interface {
	Publish(ctx context.Context, eff Effect) error
}

// Publication describes one publish attempt.
type Publication struct {
	DraftID     string
	UserID      int64
	ChatID      int64
	Destination string
	Kind        MediaKind
	MediaCount  int
	Err         error
	At          time.Time
}

// Recorder keeps an audit trail of publish attempts.
type Recorder interface {
	Record(ctx context.Context, p Publication) error
}

// Options configures a Composer.
type Options struct {
	Store     state.Store[*Draft]
	Publisher Publisher
	// Recorder is optional.
	Recorder Recorder
	// Destination is used for logs and publication records only.
	Destination string
	Now         func() time.Time
}

// Composer drives the per-user conversation that builds a post.
type Composer struct {
	store       state.Store[*Draft]
	publisher   Publisher
	recorder    Recorder
	destination string
	now         func() time.Time
}

// NewComposer validates opts and returns a ready Composer.
func NewComposer(opts Options) (*Composer, error) {
	if opts.Publisher == nil {
		return nil, ErrNoPublisher
	}
	if opts.Store == nil {
		opts.Store = state.NewMemoryStore[*Draft]()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Composer{
		store:       opts.Store,
		publisher:   opts.Publisher,
		recorder:    opts.Recorder,
		destination: opts.Destination,
		now:         opts.Now,
	}, nil
}

// InProgress reports whether userID has an active draft.
func (c *Composer) InProgress(userID int64) bool {
	_, ok := c.store.Get(userID)
	return ok
}

// StateOf returns the conversation state of userID, or state.StateIdle.
func (c *Composer) StateOf(userID int64) state.State {
	if d, ok := c.store.Get(userID); ok {
		return d.State
	}
	return state.StateIdle
}

// Handle applies ev to the conversation of ev.UserID. Events for the same user
// are serialized; a state-bearing event for a user without a draft is ignored.
func (c *Composer) Handle(ctx context.Context, ev Event) Outcome {
	unlock := c.store.Lock(ev.UserID)
	defer unlock()

	switch {
	case ev.Kind == EventStart:
		return c.start(ctx, ev)
	case ev.Kind == EventCancel, ev.Kind == EventButton && ev.Button == ButtonCancel:
		return c.cancel(ctx, ev)
	}

	d, ok := c.store.Get(ev.UserID)
	if !ok {
		logger.Debug(ctx, component, "draft.skip",
			slog.String("status", "skip"),
			slog.String("cause", "no_draft"),
			slog.String("kind", string(ev.Kind)),
		)
		return Outcome{State: state.StateIdle}
	}
	ctx = logger.WithDraft(ctx, d.ID, string(d.State))

	switch d.State {
	case StateAwaitingTitle:
		if ev.Kind == EventText && strings.TrimSpace(ev.Text) != "" {
			return c.titleReceived(ctx, d, ev)
		}
	case StateAwaitingBody:
		if ev.Kind == EventText && strings.TrimSpace(ev.Text) != "" {
			return c.bodyReceived(ctx, d, ev)
		}
	case StateAwaitingMedia:
		switch ev.Kind {
		case EventButton:
			if ev.Button == ButtonSkipMedia || ev.Button == ButtonConfirmMedia {
				return c.confirmMedia(ctx, d, nil)
			}
		default:
			return c.mediaReceived(ctx, d, ev)
		}
	case StateAwaitingConfirmation:
		if ev.Kind == EventButton {
			switch ev.Button {
			case ButtonPublish:
				return c.publish(ctx, d)
			case ButtonEdit:
				return c.start(ctx, ev)
			}
		}
	}

	logger.Debug(ctx, component, "draft.skip",
		slog.String("status", "skip"),
		slog.String("cause", "unexpected_event"),
		slog.String("state", string(d.State)),
		slog.String("kind", string(ev.Kind)),
		slog.String("cb_key", string(ev.Button)),
	)
	return Outcome{State: d.State}
}

func (c *Composer) start(ctx context.Context, ev Event) Outcome {
	_, stale := c.store.Get(ev.UserID)
	d := newDraft(ev.UserID, ev.ChatID, c.now())
	c.store.Put(ev.UserID, d)
	ctx = logger.WithDraft(ctx, d.ID, string(d.State))

	logger.Info(ctx, component, "draft.start",
		slog.String("status", "ok"),
		slog.Bool("replaced", stale),
	)
	return Outcome{
		State:   d.State,
		Effects: []Effect{SendText{ChatID: d.ChatID, Text: msgAskTitle}},
	}
}

func (c *Composer) titleReceived(ctx context.Context, d *Draft, ev Event) Outcome {
	d.Title = ev.Text
	d.State = StateAwaitingBody
	c.store.Put(d.Owner, d)

	logger.Debug(ctx, component, "draft.title", slog.String("state", string(d.State)))
	return Outcome{
		State:   d.State,
		Effects: []Effect{SendText{ChatID: d.ChatID, Text: msgAskBody}},
	}
}

func (c *Composer) bodyReceived(ctx context.Context, d *Draft, ev Event) Outcome {
	d.Body = ev.markup()
	d.State = StateAwaitingMedia
	c.store.Put(d.Owner, d)

	logger.Debug(ctx, component, "draft.body", slog.String("state", string(d.State)))
	return Outcome{
		State: d.State,
		Effects: []Effect{SendText{
			ChatID: d.ChatID,
			Text:   msgAskMedia,
			Choices: []Choice{
				{Label: labelSkip, Button: ButtonSkipMedia},
				{Label: labelCancel, Button: ButtonCancel},
			},
		}},
	}
}

func (c *Composer) mediaReceived(ctx context.Context, d *Draft, ev Event) Outcome {
	kind, ok := ev.mediaKind()
	if !ok {
		logger.Debug(ctx, component, "draft.media.reject",
			slog.String("status", "skip"),
			slog.String("cause", "not_media"),
			slog.String("kind", string(ev.Kind)),
		)
		return Outcome{
			State:   d.State,
			Effects: []Effect{SendText{ChatID: d.ChatID, Text: msgNeedMedia}},
		}
	}
	if d.Kind != "" && d.Kind != kind {
		logger.Debug(ctx, component, "draft.media.reject",
			slog.String("status", "skip"),
			slog.String("cause", "mixed_kind"),
			slog.String("media_kind", string(d.Kind)),
			slog.String("kind", string(kind)),
		)
		return Outcome{
			State:   d.State,
			Effects: []Effect{SendText{ChatID: d.ChatID, Text: fmt.Sprintf(msgMixedMedia, d.Kind)}},
		}
	}

	if d.Kind == "" {
		d.Kind = kind
	}
	d.Media = append(d.Media, MediaItem{FileID: ev.FileID, Kind: kind})
	c.store.Put(d.Owner, d)

	logger.Debug(ctx, component, "draft.media",
		slog.String("status", "ok"),
		slog.String("media_kind", string(d.Kind)),
		slog.Int("count", len(d.Media)),
	)

	if d.Full() {
		notice := SendText{ChatID: d.ChatID, Text: msgMediaLimit}
		return c.confirmMedia(ctx, d, []Effect{notice})
	}
	return Outcome{
		State: d.State,
		Effects: []Effect{SendText{
			ChatID: d.ChatID,
			Text:   msgMediaAdded,
			Choices: []Choice{
				{Label: labelConfirm, Button: ButtonConfirmMedia},
				{Label: labelCancel, Button: ButtonCancel},
			},
		}},
	}
}

// confirmMedia moves the draft to confirmation and renders the preview.
// Skip and confirm share this path; preview rendering leaves the content untouched.
func (c *Composer) confirmMedia(ctx context.Context, d *Draft, lead []Effect) Outcome {
	d.State = StateAwaitingConfirmation
	c.store.Put(d.Owner, d)

	logger.Info(ctx, component, "draft.preview",
		slog.String("status", "ok"),
		slog.String("media_kind", string(d.Kind)),
		slog.Int("count", len(d.Media)),
	)
	return Outcome{
		State:   d.State,
		Effects: append(lead, previewEffects(d)...),
	}
}

func (c *Composer) publish(ctx context.Context, d *Draft) Outcome {
	eff := publishEffect(d)
	start := time.Now()
	err := c.publisher.Publish(ctx, eff)
	c.store.Remove(d.Owner)

	attrs := []slog.Attr{
		slog.String("status", logger.Status(err)),
		slog.String("media_kind", string(d.Kind)),
		slog.Int("count", len(d.Media)),
		slog.String("destination", c.destination),
		slog.Duration("duration", logger.Took(start)),
	}
	ack := Ack{Text: ackPublished}
	if err != nil {
		ack = Ack{Text: truncate(fmt.Sprintf(ackFailed, err.Error()), maxAckLen)}
		attrs = append(attrs, slog.String("err", logger.SanitizeLimit(err.Error(), 256)))
		logger.Error(ctx, component, "draft.publish", attrs...)
	} else {
		logger.Info(ctx, component, "draft.publish", attrs...)
	}

	c.record(ctx, d, err)
	return Outcome{
		State:      StatePublished,
		Effects:    []Effect{ack},
		Published:  eff,
		PublishErr: err,
	}
}

func (c *Composer) cancel(ctx context.Context, ev Event) Outcome {
	_, had := c.store.Get(ev.UserID)
	c.store.Remove(ev.UserID)

	logger.Info(ctx, component, "draft.cancel",
		slog.String("status", "cancelled"),
		slog.Bool("had_draft", had),
	)
	return Outcome{
		State:   StateCancelled,
		Effects: []Effect{Ack{Text: ackCancelled}},
	}
}

func (c *Composer) record(ctx context.Context, d *Draft, publishErr error) {
	if c.recorder == nil {
		return
	}
	p := Publication{
		DraftID:     d.ID,
		UserID:      d.Owner,
		ChatID:      d.ChatID,
		Destination: c.destination,
		Kind:        d.Kind,
		MediaCount:  len(d.Media),
		Err:         publishErr,
		At:          c.now(),
	}
	if err := c.recorder.Record(ctx, p); err != nil {
		logger.Warn(ctx, logger.ComponentJournal, "publication.record",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
	}
}

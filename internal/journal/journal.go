// Package journal keeps an audit trail of publish attempts in Postgres.
// Post content is not stored, only who published what kind of post and how it went.
package journal

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/postbot/core/logger"
	"github.com/m3rciful/postbot/internal/post"
)

const (
	StatusOK     = "ok"
	StatusFailed = "fail"

	maxErrorLen = 1024
)

// Record is a stored publish attempt.
type Record struct {
	ID          uuid.UUID `db:"id"`
	DraftID     uuid.UUID `db:"draft_id"`
	UserID      int64     `db:"user_id"`
	ChatID      int64     `db:"chat_id"`
	Destination string    `db:"destination"`
	MediaKind   string    `db:"media_kind"`
	MediaCount  int       `db:"media_count"`
	Status      string    `db:"status"`
	Error       string    `db:"error"`
	CreatedAt   time.Time `db:"created_at"`
}

// Store persists records through sqlx.
type Store struct {
	db *sqlx.DB
}

// NewStore wraps an open database handle.
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

const insertRecord = `
INSERT INTO publications (id, draft_id, user_id, chat_id, destination, media_kind, media_count, status, error, created_at)
VALUES (:id, :draft_id, :user_id, :chat_id, :destination, :media_kind, :media_count, :status, :error, :created_at)`

// Record implements post.Recorder.
func (s *Store) Record(ctx context.Context, p post.Publication) error {
	rec := FromPublication(p)
	start := time.Now()
	if _, err := s.db.NamedExecContext(ctx, insertRecord, rec); err != nil {
		return fmt.Errorf("journal: insert publication: %w", err)
	}
	logger.Debug(ctx, logger.ComponentJournal, "publication.record",
		slog.String("status", "ok"),
		slog.String("id", rec.ID.String()),
		slog.Duration("duration", logger.Took(start)),
	)
	return nil
}

const selectRecent = `
SELECT id, draft_id, user_id, chat_id, destination, media_kind, media_count, status, error, created_at
FROM publications
ORDER BY created_at DESC
LIMIT $1`

// Recent returns up to limit records, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 10
	}
	var out []Record
	if err := s.db.SelectContext(ctx, &out, selectRecent, limit); err != nil {
		return nil, fmt.Errorf("journal: select recent: %w", err)
	}
	return out, nil
}

// FromPublication converts a publish attempt into a new record.
func FromPublication(p post.Publication) Record {
	rec := Record{
		ID:          uuid.New(),
		DraftID:     draftID(p.DraftID),
		UserID:      p.UserID,
		ChatID:      p.ChatID,
		Destination: p.Destination,
		MediaKind:   string(p.Kind),
		MediaCount:  p.MediaCount,
		Status:      StatusOK,
		CreatedAt:   p.At.UTC(),
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	if p.Err != nil {
		rec.Status = StatusFailed
		rec.Error = logger.SanitizeLimit(p.Err.Error(), maxErrorLen)
	}
	return rec
}

// draftID parses the draft identifier; a missing or malformed one maps to uuid.Nil.
func draftID(s string) uuid.UUID {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil
	}
	return id
}

var _ post.Recorder = (*Store)(nil)

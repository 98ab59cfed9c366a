package journal

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/m3rciful/postbot/internal/post"
)

func TestFromPublicationSuccess(t *testing.T) {
	at := time.Date(2026, 5, 1, 9, 30, 0, 0, time.FixedZone("X", 3*3600))
	rec := FromPublication(post.Publication{
		UserID:      1,
		ChatID:      2,
		Destination: "@news",
		Kind:        post.MediaPhoto,
		MediaCount:  3,
		At:          at,
	})

	if rec.ID == uuid.Nil {
		t.Fatal("expected generated id")
	}
	if rec.Status != StatusOK || rec.Error != "" {
		t.Fatalf("status = %q, error = %q", rec.Status, rec.Error)
	}
	if rec.MediaKind != "photo" || rec.MediaCount != 3 || rec.Destination != "@news" {
		t.Fatalf("unexpected record: %#v", rec)
	}
	if !rec.CreatedAt.Equal(at) || rec.CreatedAt.Location() != time.UTC {
		t.Fatalf("created_at = %v", rec.CreatedAt)
	}
}

func TestFromPublicationFailure(t *testing.T) {
	rec := FromPublication(post.Publication{Err: errors.New(strings.Repeat("e", 2000))})
	if rec.Status != StatusFailed {
		t.Fatalf("status = %q", rec.Status)
	}
	if len(rec.Error) != maxErrorLen {
		t.Fatalf("error length = %d, want %d", len(rec.Error), maxErrorLen)
	}
	if rec.CreatedAt.IsZero() {
		t.Fatal("created_at must default to now")
	}
}

func TestFromPublicationUniqueIDs(t *testing.T) {
	a := FromPublication(post.Publication{})
	b := FromPublication(post.Publication{})
	if a.ID == b.ID {
		t.Fatal("ids must differ")
	}
}

func TestFromPublicationDraftID(t *testing.T) {
	id := uuid.New()
	if rec := FromPublication(post.Publication{DraftID: id.String()}); rec.DraftID != id {
		t.Fatalf("draft id = %s, want %s", rec.DraftID, id)
	}
	if rec := FromPublication(post.Publication{DraftID: "not-a-uuid"}); rec.DraftID != uuid.Nil {
		t.Fatalf("malformed draft id should map to nil, got %s", rec.DraftID)
	}
}

package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dnaweav/tradesman-ai-assist/internal/store"
	"github.com/dnaweav/tradesman-ai-assist/internal/types"
)

// The in-memory store must report the same sentinels as the SQLite store or
// the resolve and toggle protocols behave differently under test.

func TestDuplicateSessionSentinel(t *testing.T) {
	s := New()
	ctx := context.Background()
	id := types.NewSessionID()

	if err := s.InsertSession(ctx, &types.Session{ID: id, UserID: "u1"}); err != nil {
		t.Fatal(err)
	}
	err := s.InsertSession(ctx, &types.Session{ID: id, UserID: "u1"})
	if !errors.Is(err, store.ErrSessionExists) {
		t.Fatalf("err = %v, want ErrSessionExists", err)
	}
}

func TestNotFoundSentinels(t *testing.T) {
	s := New()
	ctx := context.Background()

	if _, err := s.GetSession(ctx, types.NewSessionID()); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetSession err = %v, want ErrNotFound", err)
	}
	err := s.UpdateSession(ctx, types.NewSessionID(), types.SessionFields{Title: "x"})
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("UpdateSession err = %v, want ErrNotFound", err)
	}
}

func TestDuplicateTagSentinel(t *testing.T) {
	s := New()
	ctx := context.Background()
	sid, tid := types.NewSessionID(), types.NewTagID()

	if err := s.InsertSessionTag(ctx, sid, tid); err != nil {
		t.Fatal(err)
	}
	if err := s.InsertSessionTag(ctx, sid, tid); !errors.Is(err, store.ErrDuplicateTag) {
		t.Fatalf("err = %v, want ErrDuplicateTag", err)
	}
	if err := s.DeleteSessionTag(ctx, sid, tid); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.DeleteSessionTag(ctx, sid, tid); err != nil {
		t.Fatalf("delete of missing pair must not error: %v", err)
	}
}

func TestMessagesSeqBreaksTies(t *testing.T) {
	s := New()
	ctx := context.Background()

	fixed := time.Date(2026, 8, 2, 12, 0, 0, 0, time.UTC)
	s.SetClock(func() time.Time { return fixed })

	sid := types.NewSessionID()
	for _, c := range []string{"a", "b", "c"} {
		if _, err := s.InsertMessage(ctx, &types.Message{SessionID: sid, Sender: types.SenderUser, Content: c}); err != nil {
			t.Fatal(err)
		}
	}

	msgs, err := s.ListMessages(ctx, sid)
	if err != nil {
		t.Fatal(err)
	}
	for i, want := range []string{"a", "b", "c"} {
		if msgs[i].Content != want {
			t.Errorf("msgs[%d] = %q, want %q", i, msgs[i].Content, want)
		}
	}
}

func TestSnapshotsAreCopies(t *testing.T) {
	s := New()
	ctx := context.Background()
	id := types.NewSessionID()

	if err := s.InsertSession(ctx, &types.Session{ID: id, UserID: "u1", Title: "original"}); err != nil {
		t.Fatal(err)
	}

	got, _ := s.GetSession(ctx, id)
	got.Title = "mutated by caller"

	again, _ := s.GetSession(ctx, id)
	if again.Title != "original" {
		t.Errorf("title = %q, caller mutation leaked into the store", again.Title)
	}
}

//go:build integration

package test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/dnaweav/tradesman-ai-assist/internal/pipeline"
	"github.com/dnaweav/tradesman-ai-assist/internal/responder"
	"github.com/dnaweav/tradesman-ai-assist/internal/session"
	"github.com/dnaweav/tradesman-ai-assist/internal/settings"
	"github.com/dnaweav/tradesman-ai-assist/internal/store"
	"github.com/dnaweav/tradesman-ai-assist/internal/transcript"
	"github.com/dnaweav/tradesman-ai-assist/internal/types"
)

func TestEndToEnd(t *testing.T) {
	dir := t.TempDir()

	db, err := store.Open(store.Config{Path: filepath.Join(dir, "assist.db")})
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	files := store.NewLocalFileStore(filepath.Join(dir, "files"))
	resolver := session.NewResolver(db, session.DefaultRetryPolicy(), nil)
	p := pipeline.New(pipeline.Config{
		Store:     db,
		Files:     files,
		Resolver:  resolver,
		Responder: &responder.Simulated{Delay: 10 * time.Millisecond},
	})
	coord := settings.NewCoordinator(db, db, nil)

	ctx := context.Background()
	sessionID := types.NewSessionID()

	// Opening twice with the same ID converges on one row.
	v := p.Open(ctx, sessionID, "user1")
	defer v.Close()
	v2 := p.Open(ctx, sessionID, "user1")
	v2.Close()

	sessions, err := db.ListSessions(ctx, "user1")
	if err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 1 {
		t.Fatalf("expected 1 session, got %d", len(sessions))
	}

	// Send a few turns and let each settle.
	for _, text := range []string{"need a quote template", "add my logo", "send it to Dave"} {
		if err := v.Send(ctx, text, nil); err != nil {
			t.Fatal(err)
		}
		if !v.WaitIdle(5 * time.Second) {
			t.Fatal("generation did not settle")
		}
	}

	msgs, err := db.ListMessages(ctx, sessionID)
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 6 {
		t.Fatalf("expected 6 messages, got %d", len(msgs))
	}
	for i := 1; i < len(msgs); i++ {
		if msgs[i].Seq <= msgs[i-1].Seq {
			t.Fatalf("messages out of order at %d", i)
		}
	}

	groups := transcript.Group(msgs, time.Now())
	if len(groups) != 1 || groups[0].Label != "Today" {
		t.Fatalf("groups = %+v, expected one Today group", groups)
	}

	// Settings save and tag toggle against the same row.
	err = coord.Save(ctx, sessionID, types.SessionFields{Title: "Quotes", VoiceEnabled: true})
	if err != nil {
		t.Fatal(err)
	}
	tag := &types.Tag{Name: "admin", UserID: "user1"}
	if err := db.InsertTag(ctx, tag); err != nil {
		t.Fatal(err)
	}
	if err := coord.ToggleTag(ctx, sessionID, tag.ID); err != nil {
		t.Fatal(err)
	}

	sess, err := db.GetSession(ctx, sessionID)
	if err != nil {
		t.Fatal(err)
	}
	if sess.Title != "Quotes" || !sess.VoiceEnabled {
		t.Fatalf("session = %+v", sess)
	}
	tagIDs, err := db.ListSessionTags(ctx, sessionID)
	if err != nil {
		t.Fatal(err)
	}
	if len(tagIDs) != 1 || tagIDs[0] != tag.ID {
		t.Fatalf("tags = %v", tagIDs)
	}
}

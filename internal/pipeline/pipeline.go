// internal/pipeline/pipeline.go
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/dnaweav/tradesman-ai-assist/internal/responder"
	"github.com/dnaweav/tradesman-ai-assist/internal/session"
	"github.com/dnaweav/tradesman-ai-assist/internal/speech"
	"github.com/dnaweav/tradesman-ai-assist/internal/types"
)

// AttachmentBucket is the file-store bucket chat uploads land in.
const AttachmentBucket = "chat-attachments"

var (
	// ErrEmptySend is returned for a send with no text and no attachments.
	ErrEmptySend = errors.New("nothing to send")

	// ErrBusy is returned when a send arrives while a previous turn is
	// still sending or streaming.
	ErrBusy = errors.New("send already in progress")

	// ErrNotRetryable is returned by RetryGenerate outside the error state.
	ErrNotRetryable = errors.New("no failed generation to retry")
)

// Pipeline owns message delivery for chat views: it resolves sessions,
// loads transcripts, and drives the send → stream → settle cycle. One
// Pipeline serves many concurrently open views; a weighted semaphore caps
// how many assistant generations run at once across all of them.
type Pipeline struct {
	store     types.RecordStore
	files     types.FileStore
	resolver  *session.Resolver
	responder responder.Responder
	synth     speech.Synthesizer
	sem       *semaphore.Weighted
	logger    *slog.Logger
}

// Config wires a Pipeline's collaborators.
type Config struct {
	Store         types.RecordStore
	Files         types.FileStore
	Resolver      *session.Resolver
	Responder     responder.Responder
	Synth         speech.Synthesizer
	MaxConcurrent int64
	Logger        *slog.Logger
}

// New creates a Pipeline. MaxConcurrent defaults to 2 generations.
func New(cfg Config) *Pipeline {
	concurrency := cfg.MaxConcurrent
	if concurrency <= 0 {
		concurrency = 2
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	synth := cfg.Synth
	if synth == nil {
		synth = noopSynth{}
	}
	return &Pipeline{
		store:     cfg.Store,
		files:     cfg.Files,
		resolver:  cfg.Resolver,
		responder: cfg.Responder,
		synth:     synth,
		sem:       semaphore.NewWeighted(concurrency),
		logger:    logger,
	}
}

// Open resolves (or creates) the session and loads its transcript,
// returning a View bound to it. Open never fails outright: if resolution
// exhausts its retries the view falls back to a locally-held, unsaved
// session with the load error flagged, so the screen is never blank.
func (p *Pipeline) Open(ctx context.Context, sessionID types.SessionID, userID types.UserID) *View {
	v := &View{
		pipeline: p,
		status:   StatusIdle,
		subs:     make(map[int]func()),
	}

	sess, err := p.resolver.ResolveOrCreate(ctx, sessionID, userID)
	if err != nil {
		p.logger.Error("session resolve failed", "session_id", sessionID, "error", err)
		now := time.Now()
		v.session = &types.Session{
			ID:        sessionID,
			UserID:    userID,
			Title:     types.DefaultSessionTitle,
			CreatedAt: now,
			UpdatedAt: now,
		}
		v.loadErr = "Failed to load chat session. Please try again."
		v.reader = speech.NewReader(p.synth, false)
		return v
	}

	v.session = sess
	v.reader = speech.NewReader(p.synth, sess.VoiceEnabled)

	msgs, err := p.store.ListMessages(ctx, sessionID)
	if err != nil {
		// Show the session with an empty transcript rather than failing
		// the whole screen.
		p.logger.Warn("load transcript failed", "session_id", sessionID, "error", err)
		return v
	}
	v.transcript = msgs
	return v
}

type noopSynth struct{}

func (noopSynth) Speak(string) error { return nil }
func (noopSynth) Cancel()            {}

// internal/pipeline/view.go
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dnaweav/tradesman-ai-assist/internal/speech"
	"github.com/dnaweav/tradesman-ai-assist/internal/types"
)

// Status is the view's position in the send/stream/settle cycle.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusSending   Status = "sending"
	StatusStreaming Status = "streaming"
	StatusError     Status = "error"
)

// View is one open chat screen. The transcript is owned by the view and
// mutated only by its pipeline operations; everything else reads through
// Snapshot. Safe for concurrent use.
type View struct {
	pipeline *Pipeline
	reader   *speech.Reader

	mu           sync.Mutex
	session      *types.Session
	transcript   []*types.Message
	status       Status
	errText      string
	loadErr      string
	lastUserText string
	initialSent  bool
	generating   bool
	closed       bool
	subs         map[int]func()
	nextSub      int
}

// Snapshot is a race-free copy of the view's observable state.
type Snapshot struct {
	Session   types.Session
	Messages  []*types.Message
	Status    Status
	Error     string
	LoadError string
	Streaming bool
}

// Snapshot returns the current transcript and status.
func (v *View) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()

	msgs := make([]*types.Message, len(v.transcript))
	copy(msgs, v.transcript)
	return Snapshot{
		Session:   *v.session,
		Messages:  msgs,
		Status:    v.status,
		Error:     v.errText,
		LoadError: v.loadErr,
		Streaming: v.status == StatusStreaming,
	}
}

// Subscribe registers a change notification callback and returns an
// unsubscribe function. Callbacks fire after every transcript or status
// mutation, on the mutating goroutine.
func (v *View) Subscribe(fn func()) (unsubscribe func()) {
	v.mu.Lock()
	id := v.nextSub
	v.nextSub++
	v.subs[id] = fn
	v.mu.Unlock()

	return func() {
		v.mu.Lock()
		delete(v.subs, id)
		v.mu.Unlock()
	}
}

// Notify re-fires all subscriber callbacks without changing state. The
// midnight label refresh uses this to make open views re-render.
func (v *View) Notify() {
	v.notify()
}

func (v *View) notify() {
	v.mu.Lock()
	subs := make([]func(), 0, len(v.subs))
	for _, fn := range v.subs {
		subs = append(subs, fn)
	}
	v.mu.Unlock()

	for _, fn := range subs {
		fn()
	}
}

// Send accepts a user turn: persists it, appends it to the transcript on
// store acknowledgment, uploads any attachments, and starts exactly one
// assistant generation. Returns once the user turn is accepted; the
// assistant turn settles asynchronously.
func (v *View) Send(ctx context.Context, text string, uploads []types.Upload) error {
	text = strings.TrimSpace(text)
	if text == "" && len(uploads) == 0 {
		return ErrEmptySend
	}

	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return fmt.Errorf("send: view closed")
	}
	if v.status == StatusSending || v.status == StatusStreaming {
		v.mu.Unlock()
		return ErrBusy
	}
	sessionID := v.session.ID
	v.status = StatusSending
	v.errText = ""
	v.mu.Unlock()
	v.notify()

	stored, err := v.pipeline.store.InsertMessage(ctx, &types.Message{
		SessionID: sessionID,
		Sender:    types.SenderUser,
		Content:   text,
	})
	if err != nil {
		v.pipeline.logger.Error("persist user turn failed", "session_id", sessionID, "error", err)
		v.fail("Failed to send message.")
		return fmt.Errorf("send: %w", err)
	}

	v.mu.Lock()
	v.transcript = append(v.transcript, stored)
	v.lastUserText = text
	v.mu.Unlock()
	v.notify()

	v.storeAttachments(ctx, sessionID, uploads)

	v.beginGeneration(text)
	return nil
}

// SendInitial forwards the navigation-state "initial message" exactly
// once per view. Later calls are no-ops.
func (v *View) SendInitial(ctx context.Context, text string, uploads []types.Upload) error {
	v.mu.Lock()
	if v.initialSent {
		v.mu.Unlock()
		return nil
	}
	v.initialSent = true
	v.mu.Unlock()

	return v.Send(ctx, text, uploads)
}

// RetryGenerate re-invokes the responder for the last accepted user turn.
// Only valid from the error state; the user turn is never re-appended.
func (v *View) RetryGenerate() error {
	v.mu.Lock()
	if v.status != StatusError || v.lastUserText == "" {
		v.mu.Unlock()
		return ErrNotRetryable
	}
	text := v.lastUserText
	v.errText = ""
	// Claim the retry under the lock so a concurrent RetryGenerate sees a
	// non-error status and is rejected instead of starting a second run.
	v.status = StatusSending
	v.mu.Unlock()

	v.beginGeneration(text)
	return nil
}

// beginGeneration flips the view to streaming and runs the responder on
// its own goroutine. Callers serialize through the status transitions: a
// send or retry is only accepted while no generation is in flight, and
// generation is cleared in the same critical section that settles the
// terminal status, so an accepted turn is never dropped here. Generation
// is deliberately detached from the caller's context: once started it
// runs to completion or failure, matching the fire-and-forget behavior
// of the send flow.
func (v *View) beginGeneration(userText string) {
	v.mu.Lock()
	v.generating = true
	v.status = StatusStreaming
	history := make([]*types.Message, len(v.transcript))
	copy(history, v.transcript)
	sess := *v.session
	v.mu.Unlock()
	v.notify()

	go v.generate(context.Background(), &sess, history, userText)
}

func (v *View) generate(ctx context.Context, sess *types.Session, history []*types.Message, userText string) {
	p := v.pipeline
	if err := p.sem.Acquire(ctx, 1); err != nil {
		v.fail("Failed to generate a response. Please try again.")
		return
	}
	reply, err := p.responder.GenerateReply(ctx, sess, history, userText)
	p.sem.Release(1)

	if err != nil {
		p.logger.Error("responder failed", "session_id", sess.ID, "error", err)
		v.fail("Failed to generate a response. Please try again.")
		return
	}

	stored, err := p.store.InsertMessage(ctx, &types.Message{
		SessionID: sess.ID,
		Sender:    types.SenderAssistant,
		Content:   reply,
	})
	if err != nil {
		p.logger.Error("persist assistant turn failed", "session_id", sess.ID, "error", err)
		v.fail("Failed to send message.")
		return
	}

	// Speech starts before the view settles so an idle view means the
	// turn has been handed to the reader.
	v.reader.AssistantTurn(stored.Content)

	v.mu.Lock()
	v.transcript = append(v.transcript, stored)
	v.status = StatusIdle
	v.generating = false
	v.mu.Unlock()
	v.notify()
}

// fail settles the view into the error state. The generating flag clears
// in the same critical section: a subscriber reacting to the error
// notification may immediately send again, and that send must find the
// previous generation fully retired.
func (v *View) fail(msg string) {
	v.mu.Lock()
	v.status = StatusError
	v.errText = msg
	v.generating = false
	v.mu.Unlock()
	v.notify()
}

// storeAttachments uploads each blob and records its metadata. Attachment
// failures are logged and skipped; they never abort the turn.
func (v *View) storeAttachments(ctx context.Context, sessionID types.SessionID, uploads []types.Upload) {
	p := v.pipeline
	if p.files == nil {
		if len(uploads) > 0 {
			p.logger.Warn("attachments dropped, no file store configured", "session_id", sessionID)
		}
		return
	}
	for _, up := range uploads {
		path := string(sessionID) + "/" + up.Name
		url, err := p.files.UploadFile(ctx, AttachmentBucket, path, up.Data)
		if err != nil {
			p.logger.Warn("attachment upload failed", "session_id", sessionID, "file", up.Name, "error", err)
			continue
		}
		att := &types.Attachment{
			SessionID: sessionID,
			FileName:  up.Name,
			FilePath:  url,
			FileSize:  int64(len(up.Data)),
			MimeType:  up.MimeType,
		}
		if err := p.store.InsertAttachment(ctx, att); err != nil {
			p.logger.Warn("attachment record failed", "session_id", sessionID, "file", up.Name, "error", err)
		}
	}
}

// SetAutoRead toggles voice auto-read for this view. Toggling off cancels
// any utterance in progress.
func (v *View) SetAutoRead(enabled bool) {
	v.reader.SetEnabled(enabled)
}

// AutoRead reports whether voice auto-read is on.
func (v *View) AutoRead() bool {
	return v.reader.Enabled()
}

// WaitIdle blocks until no turn is in flight, or the timeout expires.
// Returns true if idle.
func (v *View) WaitIdle(timeout time.Duration) bool {
	deadline := time.After(timeout)
	for {
		v.mu.Lock()
		busy := v.generating || v.status == StatusSending || v.status == StatusStreaming
		v.mu.Unlock()
		if !busy {
			return true
		}
		select {
		case <-deadline:
			return false
		case <-time.After(10 * time.Millisecond):
		}
	}
}

// Close releases the view: speech stops, further sends are rejected.
// Any generation already started runs to completion against the store.
func (v *View) Close() {
	v.mu.Lock()
	v.closed = true
	v.mu.Unlock()
	v.reader.Close()
}

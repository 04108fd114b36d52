// internal/speech/speech.go
package speech

import (
	"sync"
)

// Synthesizer is the text-to-speech facility. Speak replaces any utterance
// in progress; Cancel stops playback immediately.
type Synthesizer interface {
	Speak(text string) error
	Cancel()
}

// Reader submits newly settled assistant turns to a Synthesizer exactly
// once each, tracked by comparing against the last spoken content. It
// stops speech before every new utterance, when auto-read is toggled off,
// and when the owning view closes.
type Reader struct {
	mu         sync.Mutex
	synth      Synthesizer
	enabled    bool
	lastSpoken string
}

// NewReader creates a Reader over the synthesizer. Auto-read starts in the
// state given by enabled (the session's voice-response flag).
func NewReader(synth Synthesizer, enabled bool) *Reader {
	return &Reader{synth: synth, enabled: enabled}
}

// SetEnabled toggles auto-read. Turning it off cancels any utterance in
// progress.
func (r *Reader) SetEnabled(enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.enabled && !enabled {
		r.synth.Cancel()
	}
	r.enabled = enabled
}

// Enabled reports whether auto-read is on.
func (r *Reader) Enabled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.enabled
}

// AssistantTurn offers a settled assistant turn for reading. Content equal
// to the last spoken turn is skipped, which is what makes re-renders of
// the same transcript idempotent.
func (r *Reader) AssistantTurn(content string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.enabled || content == "" || content == r.lastSpoken {
		return
	}
	r.lastSpoken = content
	r.synth.Cancel()
	// A failed utterance never disturbs the transcript.
	_ = r.synth.Speak(content)
}

// Close cancels playback. Called on view unmount.
func (r *Reader) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.synth.Cancel()
}

package speech

import (
	"errors"
	"testing"
)

type fakeSynth struct {
	spoken  []string
	cancels int
	err     error
}

func (f *fakeSynth) Speak(text string) error {
	f.spoken = append(f.spoken, text)
	return f.err
}

func (f *fakeSynth) Cancel() { f.cancels++ }

func TestReaderSpeaksSettledTurn(t *testing.T) {
	synth := &fakeSynth{}
	r := NewReader(synth, true)

	r.AssistantTurn("On my way to the job now.")
	if len(synth.spoken) != 1 || synth.spoken[0] != "On my way to the job now." {
		t.Fatalf("spoken = %v", synth.spoken)
	}
	// Prior playback is stopped before a new utterance starts.
	if synth.cancels != 1 {
		t.Errorf("cancels = %d, want 1", synth.cancels)
	}
}

func TestReaderSpeaksEachTurnOnce(t *testing.T) {
	synth := &fakeSynth{}
	r := NewReader(synth, true)

	r.AssistantTurn("first reply")
	r.AssistantTurn("first reply") // re-render of the same transcript
	r.AssistantTurn("second reply")

	want := []string{"first reply", "second reply"}
	if len(synth.spoken) != len(want) {
		t.Fatalf("spoken = %v, want %v", synth.spoken, want)
	}
	for i := range want {
		if synth.spoken[i] != want[i] {
			t.Errorf("spoken[%d] = %q, want %q", i, synth.spoken[i], want[i])
		}
	}
}

func TestReaderDisabledStaysSilent(t *testing.T) {
	synth := &fakeSynth{}
	r := NewReader(synth, false)

	r.AssistantTurn("anything")
	if len(synth.spoken) != 0 {
		t.Errorf("spoken = %v, want none while disabled", synth.spoken)
	}
}

func TestReaderSkipsEmptyContent(t *testing.T) {
	synth := &fakeSynth{}
	r := NewReader(synth, true)

	r.AssistantTurn("")
	if len(synth.spoken) != 0 {
		t.Errorf("spoken = %v, want none for empty content", synth.spoken)
	}
}

func TestReaderToggleOffCancelsPlayback(t *testing.T) {
	synth := &fakeSynth{}
	r := NewReader(synth, true)

	r.AssistantTurn("long reply being read aloud")
	cancelsBefore := synth.cancels

	r.SetEnabled(false)
	if synth.cancels != cancelsBefore+1 {
		t.Errorf("cancels = %d, want playback stopped on toggle off", synth.cancels)
	}

	// Toggling off again must not cancel twice.
	r.SetEnabled(false)
	if synth.cancels != cancelsBefore+1 {
		t.Errorf("cancels = %d, repeat toggle should be a no-op", synth.cancels)
	}
}

func TestReaderSpeakErrorIsSwallowed(t *testing.T) {
	synth := &fakeSynth{err: errors.New("audio device busy")}
	r := NewReader(synth, true)

	// Must not panic or change reader state observably.
	r.AssistantTurn("reply")
	if !r.Enabled() {
		t.Error("a failed utterance must not disable auto-read")
	}
}

func TestReaderCloseCancels(t *testing.T) {
	synth := &fakeSynth{}
	r := NewReader(synth, true)
	r.Close()
	if synth.cancels != 1 {
		t.Errorf("cancels = %d, want 1 on close", synth.cancels)
	}
}

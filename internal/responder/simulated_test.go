package responder

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestSimulatedEchoesUserText(t *testing.T) {
	s := &Simulated{}
	reply, err := s.GenerateReply(context.Background(), nil, nil, "send the quote")
	if err != nil {
		t.Fatalf("GenerateReply: %v", err)
	}
	if !strings.Contains(reply, `"send the quote"`) {
		t.Errorf("reply = %q, want it to echo the user text", reply)
	}
}

func TestSimulatedScriptedError(t *testing.T) {
	boom := errors.New("backend down")
	s := &Simulated{Err: boom}
	_, err := s.GenerateReply(context.Background(), nil, nil, "hi")
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want scripted error", err)
	}
}

func TestSimulatedHonorsContextDuringDelay(t *testing.T) {
	s := &Simulated{Delay: time.Minute}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.GenerateReply(ctx, nil, nil, "hi")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

// internal/responder/simulated.go
package responder

import (
	"context"
	"fmt"
	"time"

	"github.com/dnaweav/tradesman-ai-assist/internal/types"
)

// Simulated is a placeholder responder: it waits a configurable delay and
// echoes the user's text. Useful for local development without a
// generation backend, and for tests that need a deterministic reply or a
// scripted failure.
type Simulated struct {
	// Delay before the reply settles. Zero replies immediately.
	Delay time.Duration

	// Err, when set, is returned instead of a reply.
	Err error
}

func (s *Simulated) GenerateReply(ctx context.Context, _ *types.Session, _ []*types.Message, userText string) (string, error) {
	if s.Delay > 0 {
		select {
		case <-time.After(s.Delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if s.Err != nil {
		return "", s.Err
	}
	return fmt.Sprintf("I understand you said: %q. This is a placeholder reply.", userText), nil
}

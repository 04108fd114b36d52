// internal/responder/responder.go
package responder

import (
	"context"

	"github.com/dnaweav/tradesman-ai-assist/internal/types"
)

// Responder produces the assistant's reply for an accepted user turn. It
// is invoked exactly once per turn by the pipeline; implementations may be
// a real generation backend or a simulated delay.
type Responder interface {
	GenerateReply(ctx context.Context, session *types.Session, history []*types.Message, userText string) (string, error)
}

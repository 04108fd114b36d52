// internal/responder/llm.go
package responder

import (
	"context"
	"fmt"

	"github.com/pkoukk/tiktoken-go"

	"github.com/dnaweav/tradesman-ai-assist/internal/types"
	"github.com/dnaweav/tradesman-ai-assist/pkg/llm"
)

const systemPrompt = `You are a helpful assistant for a self-employed tradesperson. ` +
	`You help with quotes, invoices, client messages and scheduling. ` +
	`Keep replies short and practical.`

// LLMResponder generates replies through an llm.Provider, trimming history
// to a token budget before each call.
type LLMResponder struct {
	provider  llm.Provider
	tokenizer *tiktoken.Tiktoken
	maxTokens int
	reserve   int
}

// NewLLMResponder creates a responder over the provider. model selects the
// tokenizer; maxContextTokens is the model's window and reserve is held
// back for the reply.
func NewLLMResponder(provider llm.Provider, model string, maxContextTokens, reserve int) (*LLMResponder, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		// Fallback to cl100k_base for unknown models
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return nil, fmt.Errorf("get tokenizer: %w", err)
		}
	}
	return &LLMResponder{
		provider:  provider,
		tokenizer: enc,
		maxTokens: maxContextTokens,
		reserve:   reserve,
	}, nil
}

// GenerateReply assembles a token-budgeted prompt from the transcript and
// returns the provider's completion. The newest turns always survive
// trimming; only the oldest history is dropped.
func (r *LLMResponder) GenerateReply(ctx context.Context, session *types.Session, history []*types.Message, userText string) (string, error) {
	budget := r.maxTokens - r.reserve
	budget -= r.countTokens(systemPrompt)
	budget -= r.countTokens(userText)

	// Walk history newest-first, keeping turns while they fit.
	var kept []llm.Message
	for i := len(history) - 1; i >= 0; i-- {
		msg := history[i]
		cost := r.countTokens(msg.Content)
		if cost > budget {
			break
		}
		budget -= cost
		kept = append(kept, llm.Message{
			Role:    roleFor(msg.Sender),
			Content: msg.Content,
		})
	}

	messages := make([]llm.Message, 0, len(kept)+2)
	messages = append(messages, llm.Message{Role: "system", Content: systemPrompt})
	for i := len(kept) - 1; i >= 0; i-- {
		messages = append(messages, kept[i])
	}
	messages = append(messages, llm.Message{Role: "user", Content: userText})

	resp, err := r.provider.Complete(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("generate reply: %w", err)
	}
	return resp.Content, nil
}

func (r *LLMResponder) countTokens(text string) int {
	return len(r.tokenizer.Encode(text, nil, nil))
}

func roleFor(sender types.Sender) string {
	if sender == types.SenderAssistant {
		return "assistant"
	}
	return "user"
}

package output

import (
	"context"
	"errors"

	"parts-assistant/internal/domain/entity"
)

// ErrRateLimited marks a provider 429 that survived the adapter's retry
// schedule. Implementations wrap it so callers can match with errors.Is.
var ErrRateLimited = errors.New("model provider rate limited")

// LLMPort is the upstream model client. ChatStream establishes one streaming
// completion; onDelta is invoked for each text fragment as it arrives and the
// fully assembled assistant message (including any tool calls) is returned
// once the stream ends.
type LLMPort interface {
	ChatStream(ctx context.Context, req ChatRequest, onDelta func(string)) (*ChatResponse, error)
}

type ChatRequest struct {
	Messages    []entity.Message
	Tools       []entity.ToolDefinition
	Temperature float32
}

type ChatResponse struct {
	Message entity.Message
}

package input

import (
	"context"
	"encoding/json"

	"parts-assistant/internal/domain/entity"
)

type StreamEventType string

const (
	EventTextDelta  StreamEventType = "text-delta"
	EventToolCall   StreamEventType = "tool-call"
	EventToolResult StreamEventType = "tool-result"
	EventError      StreamEventType = "error"
	EventDone       StreamEventType = "done"
)

// StreamEvent is one increment of a chat response, in the order produced:
// text deltas and tool lifecycle events interleaved, terminated by a single
// done or error event.
type StreamEvent struct {
	Type       StreamEventType `json:"type"`
	Content    string          `json:"content,omitempty"`
	ToolCallID string          `json:"toolCallId,omitempty"`
	ToolName   string          `json:"toolName,omitempty"`
	Args       json.RawMessage `json:"args,omitempty"`
	Result     json.RawMessage `json:"result,omitempty"`
}

// ChatService runs one conversation turn. emit is called synchronously from
// the streaming goroutine; the error return covers transport-level failures
// only; tool failures travel inside tool-result events.
type ChatService interface {
	Stream(ctx context.Context, history []entity.Message, emit func(StreamEvent)) error
}

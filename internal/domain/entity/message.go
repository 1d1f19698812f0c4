package entity

type MessageRole string

const (
	RoleSystem    MessageRole = "system"
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleTool      MessageRole = "tool"
)

// Message is one entry in a conversation. History is supplied fresh on every
// request; nothing here is persisted server-side.
type Message struct {
	Role       MessageRole `json:"role"`
	Content    string      `json:"content"`
	ToolCalls  []ToolCall  `json:"toolCalls,omitempty"`
	ToolCallID string      `json:"toolCallId,omitempty"`
	Name       string      `json:"name,omitempty"`
}

// ToolCall is a tool invocation produced by the model. Arguments is the raw
// JSON string exactly as the model emitted it.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolDefinition is the schema surface sent to the model. It must stay in
// sync with what the tool's Call actually accepts.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  map[string]interface{}
}

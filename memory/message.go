package memory

import "errors"

// Role tags a message with its author.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

var (
	ErrEmptyHistory  = errors.New("history is empty")
	ErrMissingSystem = errors.New("history must start with a system message")

	errShrunk = errors.New("replacement history is shorter than the current one")
)

// ToolCall is a structured request from the model to run a local tool.
// Arguments holds the serialized argument object exactly as received.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Message is one entry of the conversation.
type Message struct {
	Role       Role       `json:"role"`
	Content    string     `json:"content"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	Name       string     `json:"name,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
}

func System(text string) Message { return Message{Role: RoleSystem, Content: text} }

func User(text string) Message { return Message{Role: RoleUser, Content: text} }

func Assistant(text string, calls ...ToolCall) Message {
	return Message{Role: RoleAssistant, Content: text, ToolCalls: calls}
}

// ToolResult builds the tool message answering call id with the tool's output.
func ToolResult(id, name, content string) Message {
	return Message{Role: RoleTool, ToolCallID: id, Name: name, Content: content}
}

// IsFinalAnswer reports whether m is an assistant reply the caller can show as an answer.
func (m Message) IsFinalAnswer() bool {
	return m.Role == RoleAssistant && m.Content != "" && len(m.ToolCalls) == 0
}

// Validate checks the dispatch preconditions on a history.
func Validate(history []Message) error {
	if len(history) == 0 {
		return ErrEmptyHistory
	}
	if history[0].Role != RoleSystem {
		return ErrMissingSystem
	}
	return nil
}

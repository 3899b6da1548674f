package domain

import "time"

// Role identifies who produced a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
	RoleSystem    Role = "system"
)

// Message is a single entry in a thread's history. Messages are never
// modified after they are appended.
type Message struct {
	Role       Role       `json:"role"`
	Content    string     `json:"content"`
	Name       string     `json:"name,omitempty"`       // producing specialist, e.g. "hotel_agent"
	ToolCallID string     `json:"toolCallId,omitempty"` // set on role=tool
	ToolCalls  []ToolCall `json:"toolCalls,omitempty"`
	Timestamp  time.Time  `json:"timestamp"`
}

// ToolCall is a model's request to invoke a tool.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"` // JSON object
}

// UserMessage builds a user message stamped with the current time.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content, Timestamp: time.Now().UTC()}
}

// AssistantMessage builds an assistant message attributed to name.
func AssistantMessage(name, content string) Message {
	return Message{Role: RoleAssistant, Name: name, Content: content, Timestamp: time.Now().UTC()}
}

// ToolResult builds the tool message answering call id.
func ToolResult(id, content string) Message {
	return Message{Role: RoleTool, ToolCallID: id, Content: content, Timestamp: time.Now().UTC()}
}

// LatestUser returns the content of the most recent user message, or "".
func LatestUser(msgs []Message) string {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == RoleUser {
			return msgs[i].Content
		}
	}
	return ""
}

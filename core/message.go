package core

import "time"

// Message is a single conversational exchange stored inside an AgentState.
// Timestamp is an RFC 3339 string so merged histories sort lexically; an
// empty timestamp disables sorting for the whole merge (see
// Session.ConversationHistory).
type Message struct {
	Role      string `json:"role"` // "user" or "assistant"
	Content   string `json:"content"`
	Timestamp string `json:"timestamp,omitempty"`
}

// NewMessage stamps a message with the current UTC time.
func NewMessage(role, content string) Message {
	return Message{Role: role, Content: content, Timestamp: time.Now().UTC().Format(time.RFC3339Nano)}
}

package testutil

import (
	"github.com/hupe1980/agentrelay/core"
)

// SessionBuilder helps construct sessions with fluent chaining for tests.
// Example:
//
//	sess := NewSessionBuilder("sess-1").Global("k","v").Message("calendar_agent", "user", "hi").Build()
type SessionBuilder struct {
	id       string
	global   map[string]any
	messages map[string][]core.Message
	events   []core.WorkflowEvent
}

// NewSessionBuilder creates a new builder for a session with the given id.
// Use chainable methods (Global, Message, Event) then call Build.
func NewSessionBuilder(id string) *SessionBuilder {
	return &SessionBuilder{id: id, global: map[string]any{}, messages: map[string][]core.Message{}}
}

// Global sets or overwrites a global-context key/value pair (chainable).
func (b *SessionBuilder) Global(key string, val any) *SessionBuilder {
	b.global[key] = val
	return b
}

// Message appends a timestamped message to one variant's conversation (chainable).
func (b *SessionBuilder) Message(agent, role, content string) *SessionBuilder {
	b.messages[agent] = append(b.messages[agent], core.NewMessage(role, content))
	return b
}

// RawMessage appends a pre-built message, allowing empty timestamps (chainable).
func (b *SessionBuilder) RawMessage(agent string, msg core.Message) *SessionBuilder {
	b.messages[agent] = append(b.messages[agent], msg)
	return b
}

// Event appends a workflow event to the session history (chainable).
func (b *SessionBuilder) Event(kind core.EventKind, agent string, payload map[string]any) *SessionBuilder {
	b.events = append(b.events, core.NewWorkflowEvent(kind, agent, 0, payload))
	return b
}

// Build returns a *core.Session with pre-populated state and history.
func (b *SessionBuilder) Build() *core.Session {
	s := core.NewSession(b.id)

	for k, v := range b.global {
		s.GlobalContext[k] = v
	}
	for agent, msgs := range b.messages {
		st := s.EnsureAgentState(agent)
		st.Messages = append(st.Messages, msgs...)
	}
	s.History = append(s.History, b.events...)

	return s
}

package core

import (
	"time"

	"github.com/google/uuid"
)

// EventKind categorizes workflow history entries.
type EventKind string

// Workflow event kinds recorded by the engine.
const (
	EventUserInput     EventKind = "user_input"
	EventAgentStart    EventKind = "agent_start"
	EventAgentComplete EventKind = "agent_complete"
	EventAgentError    EventKind = "agent_error"
	EventError         EventKind = "error"
)

// WorkflowEvent is an immutable history record. Events are append-only and
// ordered by insertion.
type WorkflowEvent struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	Kind      EventKind      `json:"kind"`
	Agent     string         `json:"agent"`
	Iteration int            `json:"iteration"`
	Payload   map[string]any `json:"payload,omitempty"`
}

// NewWorkflowEvent stamps a new event with a UUID and the current UTC time.
func NewWorkflowEvent(kind EventKind, agent string, iteration int, payload map[string]any) WorkflowEvent {
	return WorkflowEvent{
		ID:        NewID(),
		Timestamp: time.Now().UTC(),
		Kind:      kind,
		Agent:     agent,
		Iteration: iteration,
		Payload:   payload,
	}
}

// NewID generates a new unique identifier for events and sessions.
func NewID() string { return uuid.NewString() }

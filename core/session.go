package core

import (
	"encoding/json"
	"sort"
	"sync"
)

// AgentState tracks one variant's conversation inside a session: its ordered
// message list, the last action it performed, the last envelope it produced
// and a running error counter. Messages are append-only within a turn; role
// alternation is policy, not an enforced invariant.
type AgentState struct {
	Agent      string    `json:"agent"`
	SessionID  string    `json:"session_id"`
	Messages   []Message `json:"messages"`
	LastAction string    `json:"last_action,omitempty"`
	LastResult *Response `json:"last_result,omitempty"`
	ErrorCount int       `json:"error_count"`
}

// NewAgentState creates an empty conversation state for (agent, session).
func NewAgentState(agent, sessionID string) *AgentState {
	return &AgentState{Agent: agent, SessionID: sessionID, Messages: []Message{}}
}

// AddMessage appends a timestamped message to the conversation.
func (a *AgentState) AddMessage(role, content string) {
	a.Messages = append(a.Messages, NewMessage(role, content))
}

// RecentMessages returns up to the last n messages.
func (a *AgentState) RecentMessages(n int) []Message {
	if n <= 0 || len(a.Messages) == 0 {
		return nil
	}
	if len(a.Messages) <= n {
		return a.Messages
	}
	return a.Messages[len(a.Messages)-n:]
}

func (a *AgentState) clone() *AgentState {
	c := &AgentState{
		Agent:      a.Agent,
		SessionID:  a.SessionID,
		Messages:   make([]Message, len(a.Messages)),
		LastAction: a.LastAction,
		ErrorCount: a.ErrorCount,
	}
	copy(c.Messages, a.Messages)
	if a.LastResult != nil {
		r := *a.LastResult
		c.LastResult = &r
	}
	return c
}

// Session is the unit of multi-turn continuity. It owns a per-variant
// AgentState map, a global key/value context bag, an append-only workflow
// history, an iteration counter, a completion flag and the last produced
// envelope. All methods are safe for concurrent use.
type Session struct {
	ID            string                 `json:"session_id"`
	CurrentAgent  string                 `json:"current_agent,omitempty"`
	AgentStates   map[string]*AgentState `json:"agent_states"`
	GlobalContext map[string]any         `json:"global_context"`
	History       []WorkflowEvent        `json:"workflow_history"`
	Iterations    int                    `json:"iteration_count"`
	Complete      bool                   `json:"is_complete"`
	FinalResult   *Response              `json:"final_result,omitempty"`

	mu sync.RWMutex
}

// NewSession creates an empty session for the given id.
func NewSession(id string) *Session {
	return &Session{
		ID:            id,
		AgentStates:   map[string]*AgentState{},
		GlobalContext: map[string]any{},
		History:       []WorkflowEvent{},
	}
}

// AgentState returns the conversation state for a variant, or nil.
func (s *Session) AgentState(agent string) *AgentState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.AgentStates[agent]
}

// EnsureAgentState returns the existing state for a variant, creating an
// empty one on first use.
func (s *Session) EnsureAgentState(agent string) *AgentState {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.AgentStates[agent]
	if !ok {
		st = NewAgentState(agent, s.ID)
		s.AgentStates[agent] = st
	}
	return st
}

// SetAgentState replaces the conversation state for a variant.
func (s *Session) SetAgentState(agent string, st *AgentState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.AgentStates[agent] = st
}

// AddEvent appends a workflow event stamped with the current iteration.
func (s *Session) AddEvent(kind EventKind, agent string, payload map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.History = append(s.History, NewWorkflowEvent(kind, agent, s.Iterations, payload))
}

// Events returns a defensive copy of the workflow history.
func (s *Session) Events() []WorkflowEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	events := make([]WorkflowEvent, len(s.History))
	copy(events, s.History)
	return events
}

// ConversationHistory merges every variant's message list and sorts it by
// timestamp string. If any message lacks a timestamp the merge falls back to
// unsorted concatenation; that fallback is observable behavior, not a bug.
func (s *Session) ConversationHistory() []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var all []Message
	sortable := true
	for _, st := range s.AgentStates {
		for _, m := range st.Messages {
			if m.Timestamp == "" {
				sortable = false
			}
			all = append(all, m)
		}
	}
	if sortable {
		sort.SliceStable(all, func(i, j int) bool { return all[i].Timestamp < all[j].Timestamp })
	}
	return all
}

// Clone returns a deep copy of the session safe for independent mutation.
func (s *Session) Clone() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c := &Session{
		ID:            s.ID,
		CurrentAgent:  s.CurrentAgent,
		AgentStates:   make(map[string]*AgentState, len(s.AgentStates)),
		GlobalContext: make(map[string]any, len(s.GlobalContext)),
		History:       make([]WorkflowEvent, len(s.History)),
		Iterations:    s.Iterations,
		Complete:      s.Complete,
	}
	for k, st := range s.AgentStates {
		c.AgentStates[k] = st.clone()
	}
	for k, v := range s.GlobalContext {
		c.GlobalContext[k] = v
	}
	copy(c.History, s.History)
	if s.FinalResult != nil {
		r := *s.FinalResult
		c.FinalResult = &r
	}
	return c
}

// Serialize encodes the session as JSON.
func (s *Session) Serialize() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	type alias Session // avoid recursing into MarshalJSON, keep mutex out
	return json.Marshal((*alias)(s))
}

// DeserializeSession decodes a session previously produced by Serialize.
func DeserializeSession(data []byte) (*Session, error) {
	s := NewSession("")
	if err := json.Unmarshal(data, s); err != nil {
		return nil, err
	}
	if s.AgentStates == nil {
		s.AgentStates = map[string]*AgentState{}
	}
	if s.GlobalContext == nil {
		s.GlobalContext = map[string]any{}
	}
	if s.History == nil {
		s.History = []WorkflowEvent{}
	}
	return s, nil
}

package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hupe1980/agentrelay/agent"
	"github.com/hupe1980/agentrelay/core"
	"github.com/hupe1980/agentrelay/logging"
	"github.com/hupe1980/agentrelay/model"
	"github.com/hupe1980/agentrelay/search"
	"github.com/hupe1980/agentrelay/session"
)

// TurnResult is returned by ProcessUserInput for every turn, success or not.
type TurnResult struct {
	Success   bool           `json:"success"`
	Result    *core.Response `json:"result,omitempty"`
	Error     string         `json:"error,omitempty"`
	SessionID string         `json:"session_id"`
	Session   *core.Session  `json:"workflow_state,omitempty"`
}

// Status is a point-in-time snapshot of one session's workflow.
type Status struct {
	State        string    `json:"status"` // "not_found", "active" or "complete"
	SessionID    string    `json:"session_id"`
	CurrentAgent string    `json:"current_agent,omitempty"`
	Iterations   int       `json:"iteration_count"`
	AgentCount   int       `json:"agent_count"`
	LastUpdate   time.Time `json:"last_update"`
}

// ServiceHealth describes one probed capability.
type ServiceHealth struct {
	Status string `json:"status"` // "healthy" or "unhealthy"
	Error  string `json:"error,omitempty"`
}

// AgentHealth describes one registered variant.
type AgentHealth struct {
	Status            string `json:"status"`
	CapabilitiesCount int    `json:"capabilities_count"`
}

// Health is the aggregate health report.
type Health struct {
	Workflow       string                   `json:"workflow"`
	Timestamp      time.Time                `json:"timestamp"`
	Services       map[string]ServiceHealth `json:"services"`
	Agents         map[string]AgentHealth   `json:"agents"`
	ActiveSessions int                      `json:"active_sessions"`
}

// AgentInfo describes one registered variant for capability listings.
type AgentInfo struct {
	Name         string   `json:"agent"`
	Capabilities []string `json:"capabilities"`
	Status       string   `json:"status"`
}

// Options configures an Engine.
type Options struct {
	SessionStore core.SessionStore
	Logger       logging.Logger
}

// Engine owns the collection of all sessions and drives one coordinator
// invocation per user turn.
type Engine struct {
	coordinator *agent.Coordinator
	store       core.SessionStore
	generator   model.Model
	searcher    search.Searcher // nil when search is not configured
	logger      logging.Logger
}

// NewEngine constructs an Engine around a fully registered coordinator. The
// model and searcher references are used only for health probes; agents hold
// their own.
func NewEngine(coordinator *agent.Coordinator, generator model.Model, searcher search.Searcher, optFns ...func(o *Options)) *Engine {
	opts := Options{
		SessionStore: session.NewInMemoryStore(),
		Logger:       logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Engine{
		coordinator: coordinator,
		store:       opts.SessionStore,
		generator:   generator,
		searcher:    searcher,
		logger:      opts.Logger,
	}
}

// ProcessUserInput runs one turn: load-or-create the session, record events,
// invoke the coordinator, persist the updated session and return the result.
// It never returns an error; failures produce a TurnResult with Success=false.
func (e *Engine) ProcessUserInput(ctx context.Context, input, sessionID string) *TurnResult {
	if sessionID == "" {
		sessionID = core.NewID()
	}

	sess, err := e.store.Get(sessionID)
	if errors.Is(err, core.ErrSessionNotFound) {
		sess = core.NewSession(sessionID)
	} else if err != nil {
		return &TurnResult{Success: false, Error: "load session: " + err.Error(), SessionID: sessionID}
	}

	sess.AddEvent(core.EventUserInput, "user", map[string]any{"content": input})

	result, err := e.executeTurn(ctx, input, sess)
	if err != nil {
		e.logger.Error("turn failed", "session_id", sessionID, "error", err)
		sess.AddEvent(core.EventError, "workflow", map[string]any{"error": err.Error()})
		if putErr := e.store.Put(sess); putErr != nil {
			e.logger.Error("persist session after failure", "session_id", sessionID, "error", putErr)
		}
		return &TurnResult{Success: false, Error: err.Error(), SessionID: sessionID, Session: sess.Clone()}
	}

	sess.Iterations++
	sess.FinalResult = result

	if err := e.store.Put(sess); err != nil {
		e.logger.Error("persist session", "session_id", sessionID, "error", err)
		return &TurnResult{Success: false, Error: "persist session: " + err.Error(), SessionID: sessionID, Session: sess.Clone()}
	}

	return &TurnResult{Success: true, Result: result, SessionID: sessionID, Session: sess.Clone()}
}

// executeTurn prepares the coordinator's context and state, invokes it and
// records the bracketing history events.
func (e *Engine) executeTurn(ctx context.Context, input string, sess *core.Session) (result *core.Response, err error) {
	tc := &core.TaskContext{
		Messages:  sess.ConversationHistory(),
		Global:    sess.GlobalContext,
		SessionID: sess.ID,
	}

	state := sess.EnsureAgentState(e.coordinator.Name())
	state.AddMessage("user", input)

	sess.CurrentAgent = e.coordinator.Name()
	sess.AddEvent(core.EventAgentStart, e.coordinator.Name(), map[string]any{"task": input})

	defer func() {
		if r := recover(); r != nil {
			state.ErrorCount++
			sess.AddEvent(core.EventAgentError, e.coordinator.Name(), map[string]any{"error": fmt.Sprint(r)})
			result, err = nil, fmt.Errorf("workflow execution panicked: %v", r)
		}
	}()

	resp := e.coordinator.Process(ctx, input, tc)

	state.LastAction = "process"
	state.LastResult = &resp
	state.AddMessage("assistant", resp.Content)
	if !resp.Success {
		state.ErrorCount++
	}

	sess.AddEvent(core.EventAgentComplete, e.coordinator.Name(), map[string]any{"result": resp})
	return &resp, nil
}

// Status reports a snapshot for the session id, or state "not_found".
func (e *Engine) Status(sessionID string) Status {
	sess, err := e.store.Get(sessionID)
	if err != nil {
		return Status{State: "not_found", SessionID: sessionID}
	}
	state := "active"
	if sess.Complete {
		state = "complete"
	}
	return Status{
		State:        state,
		SessionID:    sessionID,
		CurrentAgent: sess.CurrentAgent,
		Iterations:   sess.Iterations,
		AgentCount:   len(sess.AgentStates),
		LastUpdate:   time.Now().UTC(),
	}
}

// Clear deletes the session, reporting whether one existed.
func (e *Engine) Clear(sessionID string) bool {
	existed, err := e.store.Delete(sessionID)
	if err != nil {
		e.logger.Error("clear session", "session_id", sessionID, "error", err)
		return false
	}
	if existed {
		e.logger.Info("cleared workflow", "session_id", sessionID)
	}
	return existed
}

// HealthCheck independently probes the text-generation and search
// capabilities (each failure isolated per service) and reports a capability
// count per registered variant.
func (e *Engine) HealthCheck(ctx context.Context) Health {
	health := Health{
		Workflow:       "healthy",
		Timestamp:      time.Now().UTC(),
		Services:       map[string]ServiceHealth{},
		Agents:         map[string]AgentHealth{},
		ActiveSessions: e.store.Len(),
	}

	if _, err := e.generator.Generate(ctx, []core.Message{core.NewMessage("user", "Reply with OK.")}, "", 8); err != nil {
		health.Services["model"] = ServiceHealth{Status: "unhealthy", Error: err.Error()}
	} else {
		health.Services["model"] = ServiceHealth{Status: "healthy"}
	}

	if e.searcher == nil {
		health.Services["search"] = ServiceHealth{Status: "unhealthy", Error: "search not configured"}
	} else if err := e.searcher.HealthCheck(ctx); err != nil {
		health.Services["search"] = ServiceHealth{Status: "unhealthy", Error: err.Error()}
	} else {
		health.Services["search"] = ServiceHealth{Status: "healthy"}
	}

	for _, a := range e.allAgents() {
		health.Agents[a.Name()] = AgentHealth{Status: "healthy", CapabilitiesCount: len(a.Capabilities())}
	}
	return health
}

// AvailableAgents lists the coordinator and every registered variant.
func (e *Engine) AvailableAgents() []AgentInfo {
	agents := e.allAgents()
	out := make([]AgentInfo, 0, len(agents))
	for _, a := range agents {
		out = append(out, AgentInfo{Name: a.Name(), Capabilities: a.Capabilities(), Status: "active"})
	}
	return out
}

func (e *Engine) allAgents() []core.Agent {
	return append(e.coordinator.Agents(), e.coordinator)
}

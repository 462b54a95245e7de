// Package agentrelay provides a high-level façade over the workflow engine
// and the agent roster, enabling rapid construction of a coordinated
// multi-agent assistant. Most applications interact with this package by:
//  1. Creating an AgentRelay via New() with a text-generation model
//     (optionally overriding the default in-memory stores and NoOp logger)
//  2. Sending user turns through Chat()
//
// The façade wires the coordinator, the calendar, search and code-assistant
// variants and delegates orchestration to workflow.Engine while keeping setup
// and usage ergonomics concise. All defaults are safe for local development
// and testing; production deployments typically supply a durable calendar
// store, a configured searcher and a structured logger.
package agentrelay

import (
	"context"

	"github.com/hupe1980/agentrelay/agent"
	"github.com/hupe1980/agentrelay/calendar"
	"github.com/hupe1980/agentrelay/core"
	"github.com/hupe1980/agentrelay/logging"
	"github.com/hupe1980/agentrelay/model"
	"github.com/hupe1980/agentrelay/search"
	"github.com/hupe1980/agentrelay/session"
	"github.com/hupe1980/agentrelay/toolkit"
	"github.com/hupe1980/agentrelay/workflow"
)

// Options configures the AgentRelay instance.
type Options struct {
	// CalendarStore backs the calendar variant (defaults to in-memory).
	CalendarStore calendar.Store

	// Searcher backs the search variant's live lookups. Nil disables web
	// search; the search variant then answers from the model alone.
	Searcher search.Searcher

	// Toolkit backs the code assistant's execution capabilities. Nil
	// disables tool usage; code generation and debugging still work.
	Toolkit *toolkit.Toolkit

	// SessionStore holds per-session workflow state (defaults to in-memory).
	SessionStore core.SessionStore

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// AgentRelay is the high-level façade aggregating the workflow engine and the
// registered agent roster.
type AgentRelay struct {
	opts   Options
	engine *workflow.Engine
}

// New creates a new AgentRelay around the given model with optional
// overrides. Any unset store is initialized with an in-memory implementation.
func New(m model.Model, optFns ...func(o *Options)) *AgentRelay {
	opts := Options{
		CalendarStore: calendar.NewInMemoryStore(),
		SessionStore:  session.NewInMemoryStore(),
		Logger:        logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	coordinator := agent.NewCoordinator(m, func(o *agent.CoordinatorOptions) {
		o.Logger = opts.Logger
	})
	coordinator.Register(agent.NewCalendarAgent(m, opts.CalendarStore, func(o *agent.CalendarAgentOptions) {
		o.Logger = opts.Logger
	}))
	coordinator.Register(agent.NewSearchAgent(m, opts.Searcher, func(o *agent.SearchAgentOptions) {
		o.Logger = opts.Logger
	}))
	coordinator.Register(agent.NewCodeAssistant(m, opts.Toolkit, func(o *agent.CodeAssistantOptions) {
		o.Logger = opts.Logger
	}))

	engine := workflow.NewEngine(coordinator, m, opts.Searcher, func(o *workflow.Options) {
		o.SessionStore = opts.SessionStore
		o.Logger = opts.Logger
	})

	return &AgentRelay{opts: opts, engine: engine}
}

// Engine exposes the underlying workflow engine for callers that need the
// full surface (HTTP handlers, health probes).
func (a *AgentRelay) Engine() *workflow.Engine { return a.engine }

// Chat runs one user turn. An empty sessionID starts a new session; the
// returned TurnResult carries the id to continue it.
func (a *AgentRelay) Chat(ctx context.Context, message, sessionID string) *workflow.TurnResult {
	return a.engine.ProcessUserInput(ctx, message, sessionID)
}

// Status reports a snapshot of one session's workflow.
func (a *AgentRelay) Status(sessionID string) workflow.Status { return a.engine.Status(sessionID) }

// Clear deletes one session's state, reporting whether it existed.
func (a *AgentRelay) Clear(sessionID string) bool { return a.engine.Clear(sessionID) }

// Agents lists the coordinator and every registered variant.
func (a *AgentRelay) Agents() []workflow.AgentInfo { return a.engine.AvailableAgents() }

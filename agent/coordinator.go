package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/hupe1980/agentrelay/core"
	"github.com/hupe1980/agentrelay/logging"
	"github.com/hupe1980/agentrelay/model"
)

// CoordinatorName is the registration name of the coordinator variant.
const CoordinatorName = "personal_assistant"

// Coordinator is the distinguished variant that routes tasks: one model call
// decides whether delegation is needed and to which variant; the nominated
// variant is invoked only if it is registered and its own CanHandle accepts.
// Anything else is handled directly. The registry is populated once at
// startup and not mutated afterwards.
type Coordinator struct {
	BaseAgent
	agents map[string]core.Agent
	order  []string // registration order, for stable capability listings
}

// CoordinatorOptions configures a Coordinator.
type CoordinatorOptions struct {
	Logger logging.Logger
}

// NewCoordinator constructs the coordinator. Register the specialized
// variants before the first Process call.
func NewCoordinator(m model.Model, optFns ...func(o *CoordinatorOptions)) *Coordinator {
	opts := CoordinatorOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Coordinator{
		BaseAgent: newBaseAgent(CoordinatorName, m, nil, opts.Logger),
		agents:    map[string]core.Agent{},
	}
}

// Register adds a specialized variant to the delegation registry.
func (c *Coordinator) Register(a core.Agent) {
	if _, ok := c.agents[a.Name()]; !ok {
		c.order = append(c.order, a.Name())
	}
	c.agents[a.Name()] = a
	c.logger.Info("registered agent", "agent", a.Name())
}

// Agents returns the registered variants in registration order.
func (c *Coordinator) Agents() []core.Agent {
	out := make([]core.Agent, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.agents[name])
	}
	return out
}

// CanHandle implements core.Agent; the coordinator is the fallback and
// accepts every task.
func (c *Coordinator) CanHandle(string, *core.TaskContext) bool { return true }

// SystemPrompt implements core.Agent. The registered variants' capabilities
// are folded into the prompt so the model knows the delegation menu.
func (c *Coordinator) SystemPrompt() string {
	var lines []string
	for _, name := range c.order {
		lines = append(lines, fmt.Sprintf("- %s: %s", name, strings.Join(c.agents[name].Capabilities(), ", ")))
	}

	return fmt.Sprintf(`You are a Personal Assistant AI that coordinates with specialized agents to help users.

Available Specialized Agents:
%s

Your role is to:
1. Understand user requests and determine which specialized agent(s) can best help
2. Coordinate between multiple agents when needed
3. Provide direct assistance for general queries that don't require specialized agents
4. Maintain context across multi-turn conversations

When you need to delegate to a specialized agent, clearly indicate which agent should handle the task and why.
For simple questions or general conversation, you can respond directly.

Be helpful, conversational, and proactive in understanding user needs.`, strings.Join(lines, "\n"))
}

// Capabilities implements core.Agent: the coordinator's own capabilities plus
// every registered variant's, each suffixed with its source.
func (c *Coordinator) Capabilities() []string {
	caps := []string{
		"General conversation and assistance",
		"Task coordination and delegation",
		"Multi-agent workflow management",
	}
	for _, name := range c.order {
		for _, capability := range c.agents[name].Capabilities() {
			caps = append(caps, fmt.Sprintf("%s (via %s)", capability, name))
		}
	}
	return caps
}

// delegationDecision is the classification schema the model is instructed to emit.
type delegationDecision struct {
	NeedsDelegation  bool   `json:"needs_delegation"`
	RecommendedAgent string `json:"recommended_agent"`
	Reasoning        string `json:"reasoning"`
	TaskType         string `json:"task_type"`
}

// Process implements core.Agent.
func (c *Coordinator) Process(ctx context.Context, task string, tc *core.TaskContext) (resp core.Response) {
	defer c.recoverToResponse(&resp)

	decision := c.analyzeDelegation(ctx, task)
	if decision.NeedsDelegation {
		if resp, ok := c.delegate(ctx, task, tc, decision); ok {
			return resp
		}
	}
	return c.handleDirectly(ctx, task, tc)
}

// analyzeDelegation asks the model whether the task needs a specialized
// variant. Model failure or unparsable output defaults to "no delegation".
func (c *Coordinator) analyzeDelegation(ctx context.Context, task string) delegationDecision {
	prompt := fmt.Sprintf(`Analyze this user request and determine if it needs specialized agent assistance:

User Request: %q

Available Specialized Agents:
- calendar_agent: Schedule management, event creation, meeting planning, date/time queries
- search_agent: Web search, current information, research questions, factual queries
- code_assistant: Programming help, code generation, debugging, technical questions

Respond with JSON in this format:
{
    "needs_delegation": true/false,
    "recommended_agent": "agent name or null",
    "reasoning": "explanation of decision",
    "task_type": "description of task category"
}

Consider delegation if the request involves:
- Scheduling, calendar, or time-based activities
- Need for current/real-time information or web search
- Programming, coding, or technical development questions

Respond directly (no delegation) for:
- General conversation
- Simple questions you can answer directly
- Personal advice or opinions
- Creative writing or brainstorming`, task)

	noDelegation := delegationDecision{
		NeedsDelegation: false,
		Reasoning:       "Unable to analyze, handling directly",
		TaskType:        "general",
	}

	reply, err := c.generate(ctx, userMessage(prompt), c.SystemPrompt(), 300)
	if err != nil {
		c.logger.Warn("delegation analysis unavailable, handling directly", "error", err)
		return noDelegation
	}
	var decision delegationDecision
	if err := parseClassification(reply, &decision); err != nil {
		c.logger.Warn("delegation analysis unparsable, handling directly", "error", err)
		return noDelegation
	}
	return decision
}

// delegate invokes the nominated variant if it is registered and accepts the
// task itself; the second return value reports whether delegation happened.
func (c *Coordinator) delegate(ctx context.Context, task string, tc *core.TaskContext, decision delegationDecision) (core.Response, bool) {
	target, ok := c.agents[decision.RecommendedAgent]
	if !ok {
		c.logger.Warn("recommended agent not registered", "agent", decision.RecommendedAgent)
		return core.Response{}, false
	}
	if !target.CanHandle(task, tc) {
		c.logger.Warn("recommended agent rejected task", "agent", decision.RecommendedAgent)
		return core.Response{}, false
	}

	c.logger.Info("delegating task", "agent", decision.RecommendedAgent)
	resp := target.Process(ctx, task, tc)
	resp = resp.WithExtra("delegated_to", decision.RecommendedAgent)
	resp = resp.WithExtra("delegation_reasoning", decision.Reasoning)
	return resp, true
}

// handleDirectly answers as a general assistant over the rolling history.
func (c *Coordinator) handleDirectly(ctx context.Context, task string, tc *core.TaskContext) core.Response {
	var history []core.Message
	if tc != nil {
		history = tc.Messages
	}
	reply, err := c.generate(ctx, withTask(history, task), c.SystemPrompt(), 1000)
	if err != nil {
		return c.fail("I'm sorry, I encountered an error while processing your request: "+err.Error(), core.ErrKindCapabilityUnavail)
	}
	return c.respond(reply, map[string]any{
		"handled_directly": true,
		"task_type":        "general_assistance",
	})
}

package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentrelay/core"
	"github.com/hupe1980/agentrelay/model"
)

var _ core.Agent = (*Coordinator)(nil)

// stubAgent is a canned core.Agent for delegation tests.
type stubAgent struct {
	name      string
	canHandle bool
	response  core.Response
	called    bool
}

func (s *stubAgent) Name() string                             { return s.name }
func (s *stubAgent) SystemPrompt() string                     { return "stub" }
func (s *stubAgent) Capabilities() []string                   { return []string{"stub capability"} }
func (s *stubAgent) CanHandle(string, *core.TaskContext) bool { return s.canHandle }
func (s *stubAgent) Process(context.Context, string, *core.TaskContext) core.Response {
	s.called = true
	return s.response
}

const delegateToSearch = `{
	"needs_delegation": true,
	"recommended_agent": "search_agent",
	"reasoning": "needs current information",
	"task_type": "research"
}`

func TestCoordinator_RegisterPreservesOrder(t *testing.T) {
	c := NewCoordinator(model.NewMockModel())
	c.Register(&stubAgent{name: "calendar_agent"})
	c.Register(&stubAgent{name: "search_agent"})
	c.Register(&stubAgent{name: "calendar_agent"}) // re-register, no duplicate

	agents := c.Agents()
	require.Len(t, agents, 2)
	assert.Equal(t, "calendar_agent", agents[0].Name())
	assert.Equal(t, "search_agent", agents[1].Name())
}

func TestCoordinator_CanHandleEverything(t *testing.T) {
	c := NewCoordinator(model.NewMockModel())
	assert.True(t, c.CanHandle("anything at all", nil))
	assert.True(t, c.CanHandle("", nil))
}

func TestCoordinator_CapabilitiesIncludeRegistered(t *testing.T) {
	c := NewCoordinator(model.NewMockModel())
	c.Register(&stubAgent{name: "search_agent"})

	caps := c.Capabilities()
	assert.Contains(t, caps, "General conversation and assistance")
	assert.Contains(t, caps, "stub capability (via search_agent)")
}

func TestCoordinator_DelegatesToRecommendedAgent(t *testing.T) {
	m := model.NewMockModel()
	m.AddResponse("Analyze this user request", delegateToSearch)

	target := &stubAgent{
		name:      "search_agent",
		canHandle: true,
		response:  core.NewResponse("search_agent", "search result", nil),
	}
	c := NewCoordinator(m)
	c.Register(target)

	resp := c.Process(context.Background(), "find the latest news", nil)
	require.True(t, resp.Success)
	assert.True(t, target.called)
	assert.Equal(t, "search_agent", resp.Agent)
	assert.Equal(t, "search result", resp.Content)
	assert.Equal(t, "search_agent", resp.Extra["delegated_to"])
	assert.Equal(t, "needs current information", resp.Extra["delegation_reasoning"])
}

func TestCoordinator_UnregisteredAgentFallsBackToDirect(t *testing.T) {
	m := model.NewMockModel()
	m.AddResponse("Analyze this user request", delegateToSearch)
	m.AddResponse("find the latest news", "I can help with that directly.")

	c := NewCoordinator(m) // search_agent not registered

	resp := c.Process(context.Background(), "find the latest news", nil)
	require.True(t, resp.Success)
	assert.Equal(t, CoordinatorName, resp.Agent)
	assert.Equal(t, true, resp.Extra["handled_directly"])
}

func TestCoordinator_RejectingAgentFallsBackToDirect(t *testing.T) {
	m := model.NewMockModel()
	m.AddResponse("Analyze this user request", delegateToSearch)

	target := &stubAgent{name: "search_agent", canHandle: false}
	c := NewCoordinator(m)
	c.Register(target)

	resp := c.Process(context.Background(), "find the latest news", nil)
	require.True(t, resp.Success)
	assert.False(t, target.called)
	assert.Equal(t, true, resp.Extra["handled_directly"])
	assert.Equal(t, "general_assistance", resp.Extra["task_type"])
}

func TestCoordinator_NoDelegationHandlesDirectly(t *testing.T) {
	m := model.NewMockModel()
	m.AddResponse("Analyze this user request", `{"needs_delegation": false, "task_type": "conversation"}`)
	m.AddResponse("tell me a story", "Once upon a time...")

	c := NewCoordinator(m)

	resp := c.Process(context.Background(), "tell me a story", nil)
	require.True(t, resp.Success)
	assert.Equal(t, "Once upon a time...", resp.Content)
	assert.Equal(t, true, resp.Extra["handled_directly"])
}

func TestCoordinator_UnparsableAnalysisHandlesDirectly(t *testing.T) {
	m := model.NewMockModel()
	m.AddResponse("Analyze this user request", "not json at all")

	target := &stubAgent{name: "search_agent", canHandle: true}
	c := NewCoordinator(m)
	c.Register(target)

	resp := c.Process(context.Background(), "anything", nil)
	require.True(t, resp.Success)
	assert.False(t, target.called)
	assert.Equal(t, true, resp.Extra["handled_directly"])
}

func TestCoordinator_ModelDownDegradesToFailure(t *testing.T) {
	m := model.NewMockModel()
	m.Err = errors.New("api unreachable")

	c := NewCoordinator(m)

	resp := c.Process(context.Background(), "anything", nil)
	assert.False(t, resp.Success)
	assert.Equal(t, core.ErrKindCapabilityUnavail, resp.ErrorKind)
	assert.Contains(t, resp.Content, "Error: ")
}

func TestCoordinator_PanicInVariantBecomesEnvelope(t *testing.T) {
	m := model.NewMockModel()
	m.AddResponse("Analyze this user request", delegateToSearch)

	c := NewCoordinator(m)
	c.Register(&panickingAgent{})

	resp := c.Process(context.Background(), "find the latest news", nil)
	assert.False(t, resp.Success)
	assert.Equal(t, core.ErrKindProcessing, resp.ErrorKind)
}

type panickingAgent struct{}

func (p *panickingAgent) Name() string                             { return "search_agent" }
func (p *panickingAgent) SystemPrompt() string                     { return "" }
func (p *panickingAgent) Capabilities() []string                   { return nil }
func (p *panickingAgent) CanHandle(string, *core.TaskContext) bool { return true }
func (p *panickingAgent) Process(context.Context, string, *core.TaskContext) core.Response {
	panic("boom")
}

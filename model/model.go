package model

import (
	"context"
	"fmt"
	"strings"

	"github.com/hupe1980/agentrelay/core"
)

// Info contains metadata about a model implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"` // "anthropic", "openai", "mock", etc.
}

// Model is the minimal interface agents use to drive generation. Any failure
// (authentication, quota, malformed request) surfaces as an error; callers
// degrade to their default branch rather than retrying.
type Model interface {
	// Generate produces a single completion for the conversation. The system
	// prompt establishes the calling agent's role; maxTokens caps the reply.
	Generate(ctx context.Context, messages []core.Message, systemPrompt string, maxTokens int) (string, error)

	// Info returns information about the model implementation.
	Info() Info
}

// MockModel is a lightweight in-memory Model useful for tests. Canned
// completions are matched by substring against the last user message; absent
// a match the input is echoed back.
type MockModel struct {
	info      Info
	responses map[string]string
	Err       error // when set, Generate always fails with this error
}

// NewMockModel constructs a MockModel.
func NewMockModel() *MockModel {
	return &MockModel{
		info:      Info{Name: "mock", Provider: "mock"},
		responses: make(map[string]string),
	}
}

// AddResponse registers a canned completion returned whenever the last user
// message contains match.
func (m *MockModel) AddResponse(match, response string) { m.responses[match] = response }

// Generate implements Model.
func (m *MockModel) Generate(_ context.Context, messages []core.Message, _ string, _ int) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	if len(messages) == 0 {
		return "", fmt.Errorf("no messages provided")
	}
	last := messages[len(messages)-1].Content
	for match, response := range m.responses {
		if strings.Contains(last, match) {
			return response, nil
		}
	}
	return "Mock response to: " + last, nil
}

// Info implements Model.
func (m *MockModel) Info() Info { return m.info }

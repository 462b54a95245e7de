package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentrelay/core"
	"github.com/hupe1980/agentrelay/model"
)

func TestBaseAgent_CanHandle(t *testing.T) {
	a := newBaseAgent("test", model.NewMockModel(), []string{"schedule", "meeting"}, nil)

	assert.True(t, a.CanHandle("Please SCHEDULE a call", nil))
	assert.True(t, a.CanHandle("set up a meeting with Bob", nil))
	assert.False(t, a.CanHandle("what is the capital of France", nil))
}

func TestParseClassification(t *testing.T) {
	type decision struct {
		Action string `json:"action"`
	}

	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{"plain json", `{"action":"create"}`, "create", false},
		{"fenced markdown", "```json\n{\"action\":\"list\"}\n```", "list", false},
		{"surrounding prose", `Sure, here is the analysis: {"action":"delete"} hope that helps`, "delete", false},
		{"no json at all", "I cannot classify this", "", true},
		{"malformed json", `{"action": }`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d decision
			err := parseClassification(tt.raw, &d)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Action)
		})
	}
}

func TestWithTask_AppendsUserMessage(t *testing.T) {
	history := []core.Message{core.NewMessage("user", "earlier")}
	msgs := withTask(history, "now")

	require.Len(t, msgs, 2)
	assert.Equal(t, "earlier", msgs[0].Content)
	assert.Equal(t, "now", msgs[1].Content)
	assert.Equal(t, "user", msgs[1].Role)

	// History slice untouched.
	assert.Len(t, history, 1)
}

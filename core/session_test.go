package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_EnsureAgentState(t *testing.T) {
	sess := NewSession("s1")

	st := sess.EnsureAgentState("calendar_agent")
	require.NotNil(t, st)
	assert.Equal(t, "calendar_agent", st.Agent)
	assert.Equal(t, "s1", st.SessionID)

	// Second call returns the same state.
	st.AddMessage("user", "hello")
	again := sess.EnsureAgentState("calendar_agent")
	assert.Len(t, again.Messages, 1)
}

func TestSession_AddEventStampsIteration(t *testing.T) {
	sess := NewSession("s1")
	sess.AddEvent(EventUserInput, "user", map[string]any{"content": "hi"})
	sess.Iterations = 3
	sess.AddEvent(EventAgentStart, "personal_assistant", nil)

	events := sess.Events()
	require.Len(t, events, 2)
	assert.Equal(t, 0, events[0].Iteration)
	assert.Equal(t, 3, events[1].Iteration)
	assert.NotEmpty(t, events[0].ID)
	assert.NotEqual(t, events[0].ID, events[1].ID)
}

func TestSession_ConversationHistoryMergesSorted(t *testing.T) {
	sess := NewSession("s1")

	a := sess.EnsureAgentState("personal_assistant")
	b := sess.EnsureAgentState("search_agent")

	a.Messages = append(a.Messages, Message{Role: "user", Content: "first", Timestamp: "2025-01-01T10:00:00Z"})
	b.Messages = append(b.Messages, Message{Role: "assistant", Content: "second", Timestamp: "2025-01-01T10:00:01Z"})
	a.Messages = append(a.Messages, Message{Role: "user", Content: "third", Timestamp: "2025-01-01T10:00:02Z"})

	history := sess.ConversationHistory()
	require.Len(t, history, 3)
	assert.Equal(t, "first", history[0].Content)
	assert.Equal(t, "second", history[1].Content)
	assert.Equal(t, "third", history[2].Content)
}

func TestSession_ConversationHistoryUnsortedFallback(t *testing.T) {
	sess := NewSession("s1")
	st := sess.EnsureAgentState("personal_assistant")
	st.Messages = append(st.Messages,
		Message{Role: "user", Content: "later", Timestamp: "2025-01-01T10:00:05Z"},
		Message{Role: "user", Content: "no timestamp"},
		Message{Role: "user", Content: "earlier", Timestamp: "2025-01-01T10:00:01Z"},
	)

	// A missing timestamp disables sorting; insertion order is preserved.
	history := sess.ConversationHistory()
	require.Len(t, history, 3)
	assert.Equal(t, "later", history[0].Content)
	assert.Equal(t, "no timestamp", history[1].Content)
	assert.Equal(t, "earlier", history[2].Content)
}

func TestSession_CloneIsIndependent(t *testing.T) {
	sess := NewSession("s1")
	sess.GlobalContext["k"] = "v"
	sess.EnsureAgentState("calendar_agent").AddMessage("user", "hi")
	sess.AddEvent(EventUserInput, "user", nil)
	result := NewResponse("calendar_agent", "done", nil)
	sess.FinalResult = &result

	clone := sess.Clone()
	clone.GlobalContext["k"] = "changed"
	clone.AgentStates["calendar_agent"].AddMessage("assistant", "reply")
	clone.FinalResult.Content = "mutated"

	assert.Equal(t, "v", sess.GlobalContext["k"])
	assert.Len(t, sess.AgentStates["calendar_agent"].Messages, 1)
	assert.Equal(t, "done", sess.FinalResult.Content)
}

func TestSession_SerializeRoundTrip(t *testing.T) {
	sess := NewSession("s1")
	sess.CurrentAgent = "personal_assistant"
	sess.Iterations = 2
	sess.GlobalContext["topic"] = "scheduling"
	sess.EnsureAgentState("calendar_agent").AddMessage("user", "book a meeting")
	sess.AddEvent(EventAgentComplete, "calendar_agent", map[string]any{"ok": true})

	data, err := sess.Serialize()
	require.NoError(t, err)

	restored, err := DeserializeSession(data)
	require.NoError(t, err)

	assert.Equal(t, "s1", restored.ID)
	assert.Equal(t, "personal_assistant", restored.CurrentAgent)
	assert.Equal(t, 2, restored.Iterations)
	assert.Equal(t, "scheduling", restored.GlobalContext["topic"])
	require.Contains(t, restored.AgentStates, "calendar_agent")
	require.Len(t, restored.AgentStates["calendar_agent"].Messages, 1)
	assert.Equal(t, "book a meeting", restored.AgentStates["calendar_agent"].Messages[0].Content)
	require.Len(t, restored.History, 1)
	assert.Equal(t, EventAgentComplete, restored.History[0].Kind)
}

func TestDeserializeSession_EmptyObject(t *testing.T) {
	restored, err := DeserializeSession([]byte(`{"session_id":"x"}`))
	require.NoError(t, err)
	assert.NotNil(t, restored.AgentStates)
	assert.NotNil(t, restored.GlobalContext)
	assert.NotNil(t, restored.History)
}

func TestAgentState_RecentMessages(t *testing.T) {
	st := NewAgentState("a", "s")
	for _, c := range []string{"1", "2", "3", "4"} {
		st.AddMessage("user", c)
	}

	recent := st.RecentMessages(2)
	require.Len(t, recent, 2)
	assert.Equal(t, "3", recent[0].Content)
	assert.Equal(t, "4", recent[1].Content)

	assert.Len(t, st.RecentMessages(10), 4)
	assert.Nil(t, st.RecentMessages(0))
}

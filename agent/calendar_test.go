package agent

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentrelay/calendar"
	"github.com/hupe1980/agentrelay/core"
	"github.com/hupe1980/agentrelay/model"
)

var _ core.Agent = (*CalendarAgent)(nil)

func fixedNow() time.Time {
	return time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)
}

func newTestCalendarAgent(m *model.MockModel, store calendar.Store) *CalendarAgent {
	return NewCalendarAgent(m, store, func(o *CalendarAgentOptions) {
		o.Now = fixedNow
	})
}

func TestCalendarAgent_CreateEvent(t *testing.T) {
	m := model.NewMockModel()
	m.AddResponse("Analyze this calendar request", `{
		"action_type": "create_event",
		"event_details": {
			"title": "Team Sync",
			"start_time": "2025-06-02T10:00:00Z",
			"end_time": "2025-06-02T11:00:00Z",
			"location": "Room 4"
		},
		"reasoning": "user wants to schedule"
	}`)

	store := calendar.NewInMemoryStore()
	a := newTestCalendarAgent(m, store)

	resp := a.Process(context.Background(), "Schedule a team sync at 10am", nil)
	require.True(t, resp.Success, resp.Content)
	assert.Contains(t, resp.Content, "Event created successfully")
	assert.Contains(t, resp.Content, "Team Sync")
	assert.Contains(t, resp.Content, "Room 4")
	assert.Equal(t, "create_event", resp.Extra["action_performed"])
	assert.NotEmpty(t, resp.Extra["event_id"])

	events, err := store.Between(context.Background(), fixedNow(), fixedNow().Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Team Sync", events[0].Title)
}

func TestCalendarAgent_CreateEventDefaultsOneHour(t *testing.T) {
	m := model.NewMockModel()
	m.AddResponse("Analyze this calendar request", `{
		"action_type": "create_event",
		"event_details": {"title": "Standup", "start_time": "2025-06-02T09:00:00Z"}
	}`)

	store := calendar.NewInMemoryStore()
	a := newTestCalendarAgent(m, store)

	resp := a.Process(context.Background(), "schedule standup", nil)
	require.True(t, resp.Success, resp.Content)

	events, err := store.Between(context.Background(), fixedNow(), fixedNow().Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, time.Hour, events[0].End.Sub(events[0].Start))
}

func TestCalendarAgent_CreateEventMissingTitle(t *testing.T) {
	m := model.NewMockModel()
	m.AddResponse("Analyze this calendar request", `{
		"action_type": "create_event",
		"event_details": {"start_time": "2025-06-02T10:00:00Z"}
	}`)

	a := newTestCalendarAgent(m, calendar.NewInMemoryStore())

	resp := a.Process(context.Background(), "schedule something", nil)
	assert.False(t, resp.Success)
	assert.Equal(t, core.ErrKindValidation, resp.ErrorKind)
	assert.Contains(t, resp.Content, "Error: ")
}

func TestCalendarAgent_CreateEventConflict(t *testing.T) {
	m := model.NewMockModel()
	m.AddResponse("Analyze this calendar request", `{
		"action_type": "create_event",
		"event_details": {
			"title": "Design Review",
			"start_time": "2025-06-02T10:30:00Z",
			"end_time": "2025-06-02T11:30:00Z"
		}
	}`)

	store := calendar.NewInMemoryStore()
	require.NoError(t, store.Create(context.Background(), &calendar.Event{
		Title: "Team Sync",
		Start: time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 6, 2, 11, 0, 0, 0, time.UTC),
	}))

	a := newTestCalendarAgent(m, store)

	resp := a.Process(context.Background(), "schedule a design review", nil)
	assert.False(t, resp.Success)
	assert.Equal(t, core.ErrKindConflict, resp.ErrorKind)
	assert.Contains(t, resp.Content, "Time conflict detected with: Team Sync")
}

func TestCalendarAgent_CreateEventAdjacentIsNoConflict(t *testing.T) {
	m := model.NewMockModel()
	m.AddResponse("Analyze this calendar request", `{
		"action_type": "create_event",
		"event_details": {
			"title": "Follow-up",
			"start_time": "2025-06-02T11:00:00Z",
			"end_time": "2025-06-02T12:00:00Z"
		}
	}`)

	store := calendar.NewInMemoryStore()
	require.NoError(t, store.Create(context.Background(), &calendar.Event{
		Title: "Team Sync",
		Start: time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 6, 2, 11, 0, 0, 0, time.UTC),
	}))

	a := newTestCalendarAgent(m, store)

	resp := a.Process(context.Background(), "schedule a follow-up", nil)
	assert.True(t, resp.Success, resp.Content)
}

func TestCalendarAgent_ListEventsDefaultRange(t *testing.T) {
	m := model.NewMockModel()
	m.AddResponse("Analyze this calendar request", `{"action_type": "list_events"}`)

	store := calendar.NewInMemoryStore()
	require.NoError(t, store.Create(context.Background(), &calendar.Event{
		Title: "Morning Standup",
		Start: time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 6, 2, 9, 30, 0, 0, time.UTC),
	}))
	// Outside the default 24h window.
	require.NoError(t, store.Create(context.Background(), &calendar.Event{
		Title: "Next Week Planning",
		Start: time.Date(2025, 6, 9, 9, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 6, 9, 10, 0, 0, 0, time.UTC),
	}))

	a := newTestCalendarAgent(m, store)

	resp := a.Process(context.Background(), "what's on my calendar today", nil)
	require.True(t, resp.Success, resp.Content)
	assert.Contains(t, resp.Content, "Morning Standup")
	assert.NotContains(t, resp.Content, "Next Week Planning")
	assert.Equal(t, "list_events", resp.Extra["action_performed"])
}

func TestCalendarAgent_ListEventsEmpty(t *testing.T) {
	m := model.NewMockModel()
	m.AddResponse("Analyze this calendar request", `{"action_type": "list_events"}`)

	a := newTestCalendarAgent(m, calendar.NewInMemoryStore())

	resp := a.Process(context.Background(), "my schedule", nil)
	require.True(t, resp.Success)
	assert.Contains(t, resp.Content, "No events scheduled for")
}

func TestCalendarAgent_UnsupportedActionsAreStubbed(t *testing.T) {
	for _, action := range []string{"update_event", "delete_event", "find_free_time"} {
		t.Run(action, func(t *testing.T) {
			m := model.NewMockModel()
			m.AddResponse("Analyze this calendar request", `{"action_type": "`+action+`"}`)

			a := newTestCalendarAgent(m, calendar.NewInMemoryStore())
			resp := a.Process(context.Background(), "do the thing", nil)

			assert.True(t, resp.Success)
			assert.Contains(t, resp.Content, "not yet supported")
			assert.Equal(t, action, resp.Extra["action_performed"])
		})
	}
}

func TestCalendarAgent_UnparsableClassificationFallsBack(t *testing.T) {
	m := model.NewMockModel()
	m.AddResponse("Analyze this calendar request", "no json here")

	a := newTestCalendarAgent(m, calendar.NewInMemoryStore())

	resp := a.Process(context.Background(), "tell me about calendars", nil)
	require.True(t, resp.Success, resp.Content)
	assert.Equal(t, "general_query", resp.Extra["action_performed"])
}

func TestCalendarAgent_ModelDownDegradesToFailure(t *testing.T) {
	m := model.NewMockModel()
	m.Err = errors.New("api unreachable")

	a := newTestCalendarAgent(m, calendar.NewInMemoryStore())

	resp := a.Process(context.Background(), "schedule a meeting", nil)
	assert.False(t, resp.Success)
	assert.Equal(t, core.ErrKindCapabilityUnavail, resp.ErrorKind)
}

func TestParseEventTime(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"2025-06-02T10:00:00Z", false},
		{"2025-06-02T10:00:00", false},
		{"2025-06-02", false},
		{"next tuesday", true},
		{"", true},
	}
	for _, tt := range tests {
		_, err := parseEventTime(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
		} else {
			assert.NoError(t, err, tt.in)
		}
	}
}

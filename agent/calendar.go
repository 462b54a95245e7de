package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hupe1980/agentrelay/calendar"
	"github.com/hupe1980/agentrelay/core"
	"github.com/hupe1980/agentrelay/logging"
	"github.com/hupe1980/agentrelay/model"
)

// CalendarAgentName is the registration name of the calendar variant.
const CalendarAgentName = "calendar_agent"

var calendarKeywords = []string{
	"schedule", "calendar", "meeting", "appointment", "event",
	"book", "reserve", "plan", "date", "time", "when",
	"available", "busy", "free", "tomorrow", "today",
	"next week", "monday", "tuesday", "wednesday", "thursday",
	"friday", "saturday", "sunday", "cancel", "reschedule",
}

// CalendarAgent handles scheduling and event management. One model call
// classifies the task into a calendar action; each action has its own
// handler over the event store.
type CalendarAgent struct {
	BaseAgent
	events calendar.Store
	now    func() time.Time // injected for tests
}

// CalendarAgentOptions configures a CalendarAgent.
type CalendarAgentOptions struct {
	Logger logging.Logger
	Now    func() time.Time
}

// NewCalendarAgent constructs the calendar variant over the given event store.
func NewCalendarAgent(m model.Model, events calendar.Store, optFns ...func(o *CalendarAgentOptions)) *CalendarAgent {
	opts := CalendarAgentOptions{Now: time.Now}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &CalendarAgent{
		BaseAgent: newBaseAgent(CalendarAgentName, m, calendarKeywords, opts.Logger),
		events:    events,
		now:       opts.Now,
	}
}

// SystemPrompt implements core.Agent.
func (a *CalendarAgent) SystemPrompt() string {
	return `You are a Calendar Assistant AI specialized in scheduling and event management.

Your capabilities include:
- Creating, updating, and deleting calendar events
- Finding available time slots
- Scheduling meetings and appointments
- Providing schedule summaries
- Conflict detection and resolution

When processing calendar requests:
1. Parse dates and times accurately (handle various formats)
2. Check for scheduling conflicts
3. Provide clear confirmations for actions taken
4. Suggest alternatives when conflicts exist

Always be precise with date/time information and confirm important scheduling details with the user.`
}

// Capabilities implements core.Agent.
func (a *CalendarAgent) Capabilities() []string {
	return []string{
		"Create and manage calendar events",
		"Schedule meetings and appointments",
		"Check availability and find free time slots",
		"Handle date/time parsing in natural language",
		"Detect and resolve scheduling conflicts",
		"Provide schedule summaries and reminders",
	}
}

// calendarAction is the classification schema the model is instructed to emit.
type calendarAction struct {
	ActionType   string `json:"action_type"`
	EventDetails struct {
		Title       string `json:"title"`
		StartTime   string `json:"start_time"`
		EndTime     string `json:"end_time"`
		Description string `json:"description"`
		Location    string `json:"location"`
		AllDay      bool   `json:"all_day"`
	} `json:"event_details"`
	QueryParameters struct {
		DateRangeStart string `json:"date_range_start"`
		DateRangeEnd   string `json:"date_range_end"`
		SearchTerm     string `json:"search_term"`
	} `json:"query_parameters"`
	Reasoning string `json:"reasoning"`
}

// Process implements core.Agent.
func (a *CalendarAgent) Process(ctx context.Context, task string, tc *core.TaskContext) (resp core.Response) {
	defer a.recoverToResponse(&resp)

	action := a.classify(ctx, task)
	switch action.ActionType {
	case "create_event":
		return a.createEvent(ctx, action)
	case "list_events":
		return a.listEvents(ctx, action)
	case "update_event":
		return a.respond("Event updates are not yet supported. Please delete and recreate the event instead.",
			map[string]any{"action_performed": "update_event"})
	case "delete_event":
		return a.respond("Event deletion is not yet supported.",
			map[string]any{"action_performed": "delete_event"})
	case "find_free_time":
		return a.respond("Free time lookup is not yet supported. Ask for your schedule to see booked slots.",
			map[string]any{"action_performed": "find_free_time"})
	default:
		return a.generalQuery(ctx, task, tc)
	}
}

// classify asks the model for a structured calendar action; any failure
// degrades to general_query.
func (a *CalendarAgent) classify(ctx context.Context, task string) calendarAction {
	prompt := fmt.Sprintf(`Analyze this calendar request and extract structured information:

User Request: %q

Determine the action type and extract relevant details. Respond with JSON in this format:
{
    "action_type": "create_event|list_events|update_event|delete_event|find_free_time|general_query",
    "event_details": {
        "title": "event title if creating/updating",
        "start_time": "parsed datetime in RFC 3339 format if specified",
        "end_time": "parsed datetime in RFC 3339 format if specified",
        "description": "description if provided",
        "location": "location if provided",
        "all_day": true/false
    },
    "query_parameters": {
        "date_range_start": "start date for queries in RFC 3339 format",
        "date_range_end": "end date for queries in RFC 3339 format",
        "search_term": "search term for finding events"
    },
    "reasoning": "explanation of the analysis"
}

For date/time parsing use the current time as reference: %s
Default to a 1-hour duration if no end time is specified.

Action type guidelines:
- create_event: "schedule", "book", "add event", "create meeting"
- list_events: "what's on", "my schedule", "show events", "what do I have"
- update_event: "change", "modify", "reschedule", "update"
- delete_event: "cancel", "remove", "delete"
- find_free_time: "when am I free", "available times", "find time"
- general_query: other calendar-related questions`, task, a.now().Format(time.RFC3339))

	var action calendarAction
	reply, err := a.generate(ctx, userMessage(prompt), a.SystemPrompt(), 500)
	if err != nil {
		a.logger.Warn("calendar classification unavailable, treating as general query", "error", err)
		action.ActionType = "general_query"
		return action
	}
	if err := parseClassification(reply, &action); err != nil {
		a.logger.Warn("calendar classification unparsable, treating as general query", "error", err)
		action.ActionType = "general_query"
	}
	return action
}

func (a *CalendarAgent) createEvent(ctx context.Context, action calendarAction) core.Response {
	details := action.EventDetails
	if details.Title == "" {
		return a.fail("I need a title for the event. Please specify what you'd like to schedule.", core.ErrKindValidation)
	}
	if details.StartTime == "" {
		return a.fail("I need a start time for the event. Please specify when you'd like to schedule it.", core.ErrKindValidation)
	}

	start, err := parseEventTime(details.StartTime)
	if err != nil {
		return a.fail(fmt.Sprintf("I couldn't understand the start time %q.", details.StartTime), core.ErrKindValidation)
	}
	end := start.Add(time.Hour)
	if details.EndTime != "" {
		end, err = parseEventTime(details.EndTime)
		if err != nil {
			return a.fail(fmt.Sprintf("I couldn't understand the end time %q.", details.EndTime), core.ErrKindValidation)
		}
	}

	conflicts, err := a.events.Overlapping(ctx, start, end)
	if err != nil {
		return a.fail("failed to check for scheduling conflicts: "+err.Error(), core.ErrKindProcessing)
	}
	if len(conflicts) > 0 {
		parts := make([]string, len(conflicts))
		for i, ev := range conflicts {
			parts[i] = fmt.Sprintf("%s (%s-%s)", ev.Title, ev.Start.Format("15:04"), ev.End.Format("15:04"))
		}
		return a.fail(fmt.Sprintf("Time conflict detected with: %s. Please choose a different time.", strings.Join(parts, ", ")), core.ErrKindConflict)
	}

	event := &calendar.Event{
		Title:       details.Title,
		Description: details.Description,
		Start:       start,
		End:         end,
		Location:    details.Location,
		AllDay:      details.AllDay,
	}
	if err := a.events.Create(ctx, event); err != nil {
		return a.fail("failed to create event: "+err.Error(), core.ErrKindProcessing)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Event created successfully!\n\n**%s**\n%s\n%s - %s\n",
		event.Title,
		start.Format("Monday, January 2, 2006"),
		start.Format("3:04 PM"), end.Format("3:04 PM"))
	if event.Location != "" {
		fmt.Fprintf(&b, "Location: %s\n", event.Location)
	}
	if event.Description != "" {
		fmt.Fprintf(&b, "Notes: %s", event.Description)
	}

	return a.respond(strings.TrimSpace(b.String()), map[string]any{
		"event_id":         event.ID,
		"event_data":       event,
		"action_performed": "create_event",
	})
}

func (a *CalendarAgent) listEvents(ctx context.Context, action calendarAction) core.Response {
	params := action.QueryParameters

	var start time.Time
	if params.DateRangeStart != "" {
		parsed, err := parseEventTime(params.DateRangeStart)
		if err != nil {
			return a.fail(fmt.Sprintf("I couldn't understand the date range start %q.", params.DateRangeStart), core.ErrKindValidation)
		}
		start = parsed
	} else {
		now := a.now()
		start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	}

	end := start.Add(24 * time.Hour)
	if params.DateRangeEnd != "" {
		parsed, err := parseEventTime(params.DateRangeEnd)
		if err != nil {
			return a.fail(fmt.Sprintf("I couldn't understand the date range end %q.", params.DateRangeEnd), core.ErrKindValidation)
		}
		end = parsed
	}

	events, err := a.events.Between(ctx, start, end)
	if err != nil {
		return a.fail("failed to retrieve events: "+err.Error(), core.ErrKindProcessing)
	}

	dateRange := map[string]any{"start": start.Format(time.RFC3339), "end": end.Format(time.RFC3339)}
	if len(events) == 0 {
		return a.respond(
			fmt.Sprintf("No events scheduled for %s", start.Format("Monday, January 2, 2006")),
			map[string]any{"events": []calendar.Event{}, "date_range": dateRange, "action_performed": "list_events"},
		)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**Your Schedule for %s**\n\n", start.Format("Monday, January 2, 2006"))
	for _, ev := range events {
		timeStr := ev.Start.Format("3:04 PM")
		if !ev.AllDay {
			timeStr += " - " + ev.End.Format("3:04 PM")
		}
		fmt.Fprintf(&b, "- **%s**\n  %s\n", ev.Title, timeStr)
		if ev.Location != "" {
			fmt.Fprintf(&b, "  Location: %s\n", ev.Location)
		}
		if ev.Description != "" {
			fmt.Fprintf(&b, "  Notes: %s\n", ev.Description)
		}
		b.WriteString("\n")
	}

	return a.respond(strings.TrimSpace(b.String()), map[string]any{
		"events":           events,
		"date_range":       dateRange,
		"action_performed": "list_events",
	})
}

func (a *CalendarAgent) generalQuery(ctx context.Context, task string, tc *core.TaskContext) core.Response {
	var history []core.Message
	if tc != nil {
		history = tc.Messages
	}
	reply, err := a.generate(ctx, withTask(history, task), a.SystemPrompt(), 1000)
	if err != nil {
		return a.fail("failed to process query: "+err.Error(), core.ErrKindCapabilityUnavail)
	}
	return a.respond(reply, map[string]any{"action_performed": "general_query"})
}

// parseEventTime accepts RFC 3339 (with or without zone) plus a date-only form.
func parseEventTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time format: %q", s)
}

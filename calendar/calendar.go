package calendar

import (
	"context"
	"time"
)

// Event is a calendar entry keyed by an opaque id.
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Start       time.Time `json:"start_time"`
	End         time.Time `json:"end_time"`
	Location    string    `json:"location,omitempty"`
	AllDay      bool      `json:"all_day"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Store persists calendar events.
type Store interface {
	// Create stores the event, assigning an id if empty.
	Create(ctx context.Context, ev *Event) error

	// Between returns events whose start lies in [start, end), ascending by
	// start time.
	Between(ctx context.Context, start, end time.Time) ([]Event, error)

	// Overlapping returns events whose [Start, End) interval overlaps
	// [start, end) under closed-open semantics.
	Overlapping(ctx context.Context, start, end time.Time) ([]Event, error)
}

// Overlaps reports whether an existing interval [existingStart, existingEnd)
// conflicts with a candidate [start, end). Exact adjacency is not a conflict:
// an event ending at 11:00 does not overlap one starting at 11:00.
func Overlaps(existingStart, existingEnd, start, end time.Time) bool {
	if !existingStart.After(start) && existingEnd.After(start) {
		return true // existing.start <= new.start < existing.end
	}
	if existingStart.Before(end) && !existingEnd.Before(end) {
		return true // existing.start < new.end <= existing.end
	}
	if !start.After(existingStart) && !existingEnd.After(end) {
		return true // new fully covers existing
	}
	return false
}

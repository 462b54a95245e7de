package core

import "context"

// Agent is the uniform contract implemented by every capability variant
// (calendar, search, code assistant) and by the coordinator itself.
//
// Implementations must:
//   - Keep CanHandle fast and local (no capability calls)
//   - Never let an error or panic escape Process; failures are converted to
//     a success=false Response at the Process boundary
//   - Respect context cancellation on every capability call
type Agent interface {
	// Name returns the stable variant name used for registration, session
	// state keys and envelope attribution.
	Name() string

	// SystemPrompt returns the static role/behavior description fed to the
	// text-generation capability on every call made for this variant.
	SystemPrompt() string

	// Capabilities returns a static, human-readable capability list.
	Capabilities() []string

	// CanHandle reports whether the variant accepts the task. The default
	// strategy is case-insensitive substring matching against a fixed
	// keyword set; the coordinator always accepts.
	CanHandle(task string, tc *TaskContext) bool

	// Process runs the variant's main entry point and returns a well-formed
	// envelope in every case.
	Process(ctx context.Context, task string, tc *TaskContext) Response
}

// TaskContext carries per-turn context handed to agents by the workflow
// engine: the merged conversation history across all agent states, the
// session's global key/value bag and the session id.
type TaskContext struct {
	Messages  []Message      `json:"messages"`
	Global    map[string]any `json:"global_context"`
	SessionID string         `json:"session_id"`
}

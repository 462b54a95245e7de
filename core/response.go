package core

import "time"

// Error kinds carried in Response.ErrorKind. Every failing envelope sets one.
const (
	ErrKindProcessing          = "processing_error"
	ErrKindValidation          = "validation_error"
	ErrKindConflict            = "conflict_error"
	ErrKindCapabilityUnavail   = "capability_unavailable"
	ErrKindClassificationParse = "classification_parse_error"
)

// Response is the uniform envelope returned by every agent. Success=false
// implies Content is a human-readable error message (prefixed "Error: ") and
// ErrorKind is set. Handler-specific extension fields (citations, event data,
// action tags, delegation target/reasoning) ride in Extra.
type Response struct {
	Agent     string         `json:"agent"`
	Content   string         `json:"content"`
	Timestamp time.Time      `json:"timestamp"`
	Success   bool           `json:"success"`
	ErrorKind string         `json:"error_kind,omitempty"`
	Extra     map[string]any `json:"extra,omitempty"`
}

// NewResponse builds a success envelope stamped with the agent name and the
// current UTC time, merging in handler-specific extension fields.
func NewResponse(agent, content string, extra map[string]any) Response {
	return Response{
		Agent:     agent,
		Content:   content,
		Timestamp: time.Now().UTC(),
		Success:   true,
		Extra:     extra,
	}
}

// NewErrorResponse builds a failure envelope. The message is prefixed with
// "Error: " so callers can rely on a stable error marker in Content.
func NewErrorResponse(agent, message, kind string) Response {
	if kind == "" {
		kind = ErrKindProcessing
	}
	return Response{
		Agent:     agent,
		Content:   "Error: " + message,
		Timestamp: time.Now().UTC(),
		Success:   false,
		ErrorKind: kind,
	}
}

// WithExtra returns a copy of the response with the key/value added to Extra.
func (r Response) WithExtra(key string, value any) Response {
	extra := make(map[string]any, len(r.Extra)+1)
	for k, v := range r.Extra {
		extra[k] = v
	}
	extra[key] = value
	r.Extra = extra
	return r
}

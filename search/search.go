package search

import "context"

// Result is the uniform outcome of a search call. Success=false carries a
// short explanation in Content; callers fall back to a direct answer and
// never surface the failure verbatim.
type Result struct {
	Success   bool     `json:"success"`
	Content   string   `json:"content"`
	Citations []string `json:"citations,omitempty"`
	Error     string   `json:"error,omitempty"`
}

// Searcher is the external search collaborator contract.
type Searcher interface {
	// Search runs the query under the given system instruction.
	Search(ctx context.Context, query, systemPrompt string) (*Result, error)

	// HealthCheck probes the backend with a minimal query.
	HealthCheck(ctx context.Context) error
}

// MockSearcher is a canned Searcher for tests.
type MockSearcher struct {
	Result *Result
	Err    error
}

// Search implements Searcher.
func (m *MockSearcher) Search(context.Context, string, string) (*Result, error) {
	return m.Result, m.Err
}

// HealthCheck implements Searcher.
func (m *MockSearcher) HealthCheck(context.Context) error { return m.Err }

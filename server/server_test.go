package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentrelay/agent"
	"github.com/hupe1980/agentrelay/model"
	"github.com/hupe1980/agentrelay/workflow"
)

func newTestServer(t *testing.T) (*httptest.Server, *workflow.Engine) {
	t.Helper()

	m := model.NewMockModel()
	m.AddResponse("Analyze this user request", `{"needs_delegation": false}`)

	coordinator := agent.NewCoordinator(m)
	engine := workflow.NewEngine(coordinator, m, nil)

	srv := httptest.NewServer(NewHandler(engine).Router())
	t.Cleanup(srv.Close)
	return srv, engine
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestChat_Success(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/chat", `{"message": "hello"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode(t, resp)
	assert.NotEmpty(t, body["session_id"])
	assert.NotEmpty(t, body["response"])
	assert.Equal(t, agent.CoordinatorName, body["agent"])
}

func TestChat_SessionContinuity(t *testing.T) {
	srv, _ := newTestServer(t)

	first := decode(t, postJSON(t, srv.URL+"/api/chat", `{"message": "hello"}`))
	sessionID := first["session_id"].(string)

	resp := postJSON(t, srv.URL+"/api/chat", `{"message": "again", "session_id": "`+sessionID+`"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	second := decode(t, resp)
	assert.Equal(t, sessionID, second["session_id"])
}

func TestChat_MissingMessage(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, body := range []string{`{}`, `{"message": "   "}`} {
		resp := postJSON(t, srv.URL+"/api/chat", body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		out := decode(t, resp)
		assert.Equal(t, "message is required", out["error"])
	}
}

func TestChat_InvalidJSON(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/chat", `{not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestWorkflowStatus(t *testing.T) {
	srv, _ := newTestServer(t)

	// Unknown session.
	resp, err := http.Get(srv.URL + "/api/workflow/status/unknown")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	// Existing session.
	chat := decode(t, postJSON(t, srv.URL+"/api/chat", `{"message": "hello"}`))
	sessionID := chat["session_id"].(string)

	resp, err = http.Get(srv.URL + "/api/workflow/status/" + sessionID)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	status := decode(t, resp)
	assert.Equal(t, "active", status["status"])
	assert.Equal(t, float64(1), status["iteration_count"])
}

func TestClearWorkflow(t *testing.T) {
	srv, _ := newTestServer(t)

	chat := decode(t, postJSON(t, srv.URL+"/api/chat", `{"message": "hello"}`))
	sessionID := chat["session_id"].(string)

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/api/workflow/"+sessionID, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode(t, resp)
	assert.Equal(t, true, out["cleared"])

	// Deleting again is a 404.
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestAgentsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/agents")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	out := decode(t, resp)
	agents, ok := out["agents"].([]any)
	require.True(t, ok)
	require.Len(t, agents, 1) // coordinator only in this wiring
}

func TestHealthEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	// Liveness heartbeat.
	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Capability health; search is not configured in this wiring.
	resp, err = http.Get(srv.URL + "/api/health")
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	out := decode(t, resp)
	services := out["services"].(map[string]any)
	modelHealth := services["model"].(map[string]any)
	assert.Equal(t, "healthy", modelHealth["status"])
}

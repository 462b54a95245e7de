package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hupe1980/agentrelay/core"
	"github.com/hupe1980/agentrelay/logging"
	"github.com/hupe1980/agentrelay/model"
)

// BaseAgent bundles the identity, model access, keyword routing and envelope
// helpers shared by every variant. Embed it in concrete agents and supply
// SystemPrompt, Capabilities and Process.
type BaseAgent struct {
	name     string
	model    model.Model
	keywords []string
	logger   logging.Logger
}

func newBaseAgent(name string, m model.Model, keywords []string, logger logging.Logger) BaseAgent {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return BaseAgent{name: name, model: m, keywords: keywords, logger: logger}
}

// Name returns the stable variant name.
func (b *BaseAgent) Name() string { return b.name }

// CanHandle matches the task case-insensitively against the variant's fixed
// keyword set. It is fast and purely local.
func (b *BaseAgent) CanHandle(task string, _ *core.TaskContext) bool {
	lower := strings.ToLower(task)
	for _, kw := range b.keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// generate issues one text-generation call under the given system prompt.
func (b *BaseAgent) generate(ctx context.Context, messages []core.Message, systemPrompt string, maxTokens int) (string, error) {
	reply, err := b.model.Generate(ctx, messages, systemPrompt, maxTokens)
	if err != nil {
		b.logger.Error("model call failed", "agent", b.name, "error", err)
		return "", err
	}
	return reply, nil
}

// respond wraps content in a success envelope attributed to this variant.
func (b *BaseAgent) respond(content string, extra map[string]any) core.Response {
	return core.NewResponse(b.name, content, extra)
}

// fail wraps a failure in an error envelope attributed to this variant.
func (b *BaseAgent) fail(message, kind string) core.Response {
	return core.NewErrorResponse(b.name, message, kind)
}

// recoverToResponse converts a panic inside Process into a processing_error
// envelope. Use with a named return value:
//
//	func (a *X) Process(...) (resp core.Response) {
//		defer a.recoverToResponse(&resp)
//		...
//	}
func (b *BaseAgent) recoverToResponse(resp *core.Response) {
	if r := recover(); r != nil {
		b.logger.Error("agent panicked", "agent", b.name, "panic", r)
		*resp = b.fail(fmt.Sprintf("unexpected failure while processing your request: %v", r), core.ErrKindProcessing)
	}
}

// parseClassification decodes a JSON classification produced by the model,
// tolerating surrounding prose and markdown code fences. Callers pair every
// parse failure with a safe default action.
func parseClassification(raw string, v any) error {
	s := strings.TrimSpace(raw)
	if i := strings.Index(s, "{"); i >= 0 {
		if j := strings.LastIndex(s, "}"); j > i {
			s = s[i : j+1]
		}
	}
	if err := json.Unmarshal([]byte(s), v); err != nil {
		return fmt.Errorf("classification parse: %w", err)
	}
	return nil
}

func userMessage(task string) []core.Message {
	return []core.Message{core.NewMessage("user", task)}
}

func withTask(history []core.Message, task string) []core.Message {
	msgs := make([]core.Message, 0, len(history)+1)
	msgs = append(msgs, history...)
	msgs = append(msgs, core.NewMessage("user", task))
	return msgs
}

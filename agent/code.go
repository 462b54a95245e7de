package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/hupe1980/agentrelay/core"
	"github.com/hupe1980/agentrelay/logging"
	"github.com/hupe1980/agentrelay/model"
	"github.com/hupe1980/agentrelay/toolkit"
)

// CodeAssistantName is the registration name of the code-assistant variant.
const CodeAssistantName = "code_assistant"

var codeKeywords = []string{
	"code", "program", "script", "function", "debug", "error",
	"python", "javascript", "java", "cpp", "html", "css",
	"react", "vue", "angular", "node", "flask", "django",
	"sql", "database", "api", "algorithm", "class", "method",
	"variable", "loop", "condition", "syntax", "compile",
	"runtime", "exception", "library", "framework", "git",
	"deploy", "test", "unit test", "refactor", "optimize",
}

// CodeAssistant handles programming tasks. One model call classifies the task
// type; tool_usage requests sub-dispatch to the built-in toolkit.
type CodeAssistant struct {
	BaseAgent
	tools *toolkit.Toolkit // nil when built-in tools are not configured
}

// CodeAssistantOptions configures a CodeAssistant.
type CodeAssistantOptions struct {
	Logger logging.Logger
}

// NewCodeAssistant constructs the code-assistant variant. A nil toolkit is
// allowed; tool-usage requests then report that tools are unavailable.
func NewCodeAssistant(m model.Model, tools *toolkit.Toolkit, optFns ...func(o *CodeAssistantOptions)) *CodeAssistant {
	opts := CodeAssistantOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &CodeAssistant{
		BaseAgent: newBaseAgent(CodeAssistantName, m, codeKeywords, opts.Logger),
		tools:     tools,
	}
}

// SystemPrompt implements core.Agent.
func (a *CodeAssistant) SystemPrompt() string {
	return `You are a Code Assistant AI specialized in programming help and software development.

Your capabilities include:
- Code generation in multiple programming languages
- Debugging assistance and error resolution
- Code review and optimization suggestions
- Architecture and design pattern guidance
- Explaining complex programming concepts

When helping with code:
1. Provide clear, well-commented code examples
2. Explain the logic and approach used
3. Consider best practices and security implications
4. Offer alternative solutions when appropriate
5. Help with debugging by analyzing error messages

Always write production-ready code with proper error handling and documentation.`
}

// Capabilities implements core.Agent.
func (a *CodeAssistant) Capabilities() []string {
	return []string{
		"Code generation in multiple languages",
		"Debugging and error resolution",
		"Code review and optimization",
		"Programming concept explanations",
		"Algorithm and data structure help",
		"Built-in tool integration (code execution, editor, shell, journal)",
	}
}

// codingTask is the classification schema the model is instructed to emit.
type codingTask struct {
	TaskType            string `json:"task_type"`
	ProgrammingLanguage string `json:"programming_language"`
	Complexity          string `json:"complexity"`
	SpecificHelp        string `json:"specific_help"`
	Reasoning           string `json:"reasoning"`
}

// Process implements core.Agent.
func (a *CodeAssistant) Process(ctx context.Context, task string, tc *core.TaskContext) (resp core.Response) {
	defer a.recoverToResponse(&resp)

	classified := a.classify(ctx, task)
	switch classified.TaskType {
	case "code_generation":
		return a.generateCode(ctx, task, tc, classified)
	case "debugging":
		return a.helpDebug(ctx, task, tc)
	case "tool_usage":
		return a.handleToolUsage(ctx, task, tc)
	default:
		// code_review and explanation alias to the general handler.
		return a.generalHelp(ctx, task, tc)
	}
}

func (a *CodeAssistant) classify(ctx context.Context, task string) codingTask {
	prompt := fmt.Sprintf(`Analyze this programming request and determine the type of assistance needed:

User Request: %q

Determine the task type and extract relevant details. Respond with JSON in this format:
{
    "task_type": "code_generation|debugging|code_review|explanation|tool_usage|general",
    "programming_language": "detected language or null",
    "complexity": "simple|medium|complex",
    "specific_help": "specific area of help needed",
    "reasoning": "explanation of the analysis"
}

Task type guidelines:
- code_generation: "write", "create", "generate", "build", "implement"
- debugging: "error", "bug", "fix", "debug", "not working", "exception"
- code_review: "review", "optimize", "improve", "best practices", "refactor"
- explanation: "explain", "how does", "what is", "understand", "concept"
- tool_usage: mentions of running/executing code, the editor, shell or journal
- general: other programming questions or guidance`, task)

	var classified codingTask
	reply, err := a.generate(ctx, userMessage(prompt), a.SystemPrompt(), 300)
	if err != nil {
		a.logger.Warn("coding classification unavailable, treating as general help", "error", err)
		classified.TaskType = "general"
		return classified
	}
	if err := parseClassification(reply, &classified); err != nil {
		a.logger.Warn("coding classification unparsable, treating as general help", "error", err)
		classified.TaskType = "general"
	}
	return classified
}

func (a *CodeAssistant) generateCode(ctx context.Context, task string, tc *core.TaskContext, classified codingTask) core.Response {
	language := classified.ProgrammingLanguage
	if language == "" {
		language = "Python"
	}

	prompt := fmt.Sprintf(`Generate code for this request: %s

Requirements:
- Use %s if specified, otherwise choose the most appropriate language
- Include clear comments explaining the code
- Follow best practices and handle edge cases
- Provide working, production-ready code
- Include example usage if applicable

Provide the code with explanations.`, task, language)

	reply, err := a.generate(ctx, withTask(a.history(tc), prompt), a.SystemPrompt(), 1500)
	if err != nil {
		return a.fail("failed to generate code: "+err.Error(), core.ErrKindCapabilityUnavail)
	}
	return a.respond(reply, map[string]any{
		"code_generated":       true,
		"programming_language": language,
		"action_performed":     "code_generation",
	})
}

func (a *CodeAssistant) helpDebug(ctx context.Context, task string, tc *core.TaskContext) core.Response {
	prompt := fmt.Sprintf(`Help debug this issue: %s

Please provide:
1. Analysis of the problem
2. Possible causes
3. Step-by-step debugging approach
4. Corrected code if applicable
5. Prevention tips for similar issues`, task)

	reply, err := a.generate(ctx, withTask(a.history(tc), prompt), a.SystemPrompt(), 1200)
	if err != nil {
		return a.fail("failed to provide debugging help: "+err.Error(), core.ErrKindCapabilityUnavail)
	}
	return a.respond(reply, map[string]any{
		"debugging_help":   true,
		"action_performed": "debugging",
	})
}

// handleToolUsage sub-dispatches on keywords to the built-in tools.
func (a *CodeAssistant) handleToolUsage(ctx context.Context, task string, tc *core.TaskContext) core.Response {
	if a.tools == nil {
		return a.fail("built-in tools are not available in this session", core.ErrKindCapabilityUnavail)
	}

	lower := strings.ToLower(task)
	switch {
	case strings.Contains(lower, "run python") || strings.Contains(lower, "execute python") ||
		strings.Contains(lower, "run this code") || strings.Contains(lower, "execute this code"):
		return a.executeCode(ctx, task)
	case strings.Contains(lower, "edit file") || strings.Contains(lower, "create file") || strings.Contains(lower, "editor"):
		return a.respond("The editor tool is not yet supported.", map[string]any{"action_performed": "tool_usage", "tool_used": "editor"})
	case strings.Contains(lower, "shell") || strings.Contains(lower, "terminal") || strings.Contains(lower, "command"):
		return a.respond("The shell tool is not yet supported.", map[string]any{"action_performed": "tool_usage", "tool_used": "shell"})
	case strings.Contains(lower, "journal") || strings.Contains(lower, "note"):
		return a.respond("The journal tool is not yet supported.", map[string]any{"action_performed": "tool_usage", "tool_used": "journal"})
	default:
		return a.generalHelp(ctx, task, tc)
	}
}

func (a *CodeAssistant) executeCode(ctx context.Context, task string) core.Response {
	code := extractCode(task)
	if code == "" {
		return a.fail("I couldn't identify code to execute in your request.", core.ErrKindValidation)
	}

	result := a.tools.ExecuteCode(ctx, code)

	var b strings.Builder
	fmt.Fprintf(&b, "**Code Executed:**\n```python\n%s\n```\n\n**Output:**\n```\n%s\n```", code, result.Stdout)
	if !result.Success && result.Stderr != "" {
		fmt.Fprintf(&b, "\n\n**Error:**\n```\n%s\n```", result.Stderr)
	}

	return a.respond(b.String(), map[string]any{
		"tool_used":        "execute_code",
		"code_executed":    code,
		"execution_result": result,
		"action_performed": "tool_usage",
	})
}

func (a *CodeAssistant) generalHelp(ctx context.Context, task string, tc *core.TaskContext) core.Response {
	reply, err := a.generate(ctx, withTask(a.history(tc), task), a.SystemPrompt(), 1200)
	if err != nil {
		return a.fail("failed to provide coding assistance: "+err.Error(), core.ErrKindCapabilityUnavail)
	}
	return a.respond(reply, map[string]any{"action_performed": "general_coding_help"})
}

func (a *CodeAssistant) history(tc *core.TaskContext) []core.Message {
	if tc == nil {
		return nil
	}
	return tc.Messages
}

// extractCode pulls code out of fenced blocks; without fences it falls back
// to a line heuristic for python-like statements.
func extractCode(task string) string {
	var codeLines []string
	inBlock := false
	for _, line := range strings.Split(task, "\n") {
		switch {
		case strings.Contains(line, "```python") || strings.Contains(line, "```py"):
			inBlock = true
		case strings.Contains(line, "```") && inBlock:
			inBlock = false
		case inBlock:
			codeLines = append(codeLines, line)
		case looksLikeCode(line):
			codeLines = append(codeLines, line)
		}
	}
	return strings.Join(codeLines, "\n")
}

func looksLikeCode(line string) bool {
	for _, marker := range []string{"print(", "def ", "import ", "from ", "="} {
		if strings.Contains(line, marker) {
			return true
		}
	}
	return false
}

package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/hupe1980/agentrelay/core"
	"github.com/hupe1980/agentrelay/logging"
	"github.com/hupe1980/agentrelay/model"
	"github.com/hupe1980/agentrelay/search"
)

// SearchAgentName is the registration name of the web-search variant.
const SearchAgentName = "search_agent"

var searchKeywords = []string{
	"search", "find", "look up", "research", "what is", "who is",
	"when did", "where is", "how much", "latest", "current",
	"news", "recent", "today", "information about", "tell me about",
	"weather", "stock", "price", "compare", "reviews", "facts",
}

// Keyword tiers behind the needsSearch heuristic, checked in order.
var (
	currentInfoKeywords = []string{
		"current", "latest", "recent", "today", "now", "news",
		"weather", "stock", "price", "market", "update",
		"this year", "this month", "this week",
	}
	timeSensitiveTopics = []string{
		"weather", "stocks", "news", "events", "prices",
		"schedule", "status", "availability", "hours",
	}
	questionTemplates = []string{
		"what is the current", "what are the latest", "how much does", "when is the next",
	}
	interrogatives = map[string]bool{
		"what": true, "who": true, "when": true, "where": true, "how": true, "which": true,
	}
)

const searchInstruction = "You are a helpful assistant that provides accurate, current information. " +
	"Be concise but comprehensive. Include relevant details and cite sources when appropriate."

// SearchAgent answers information-retrieval tasks. A local heuristic decides
// whether live web data is needed; if so the search capability runs with the
// raw task as query, otherwise (or on any search failure) the agent answers
// directly from the model with an explicit no-live-data note.
type SearchAgent struct {
	BaseAgent
	searcher search.Searcher // nil when search is not configured
}

// SearchAgentOptions configures a SearchAgent.
type SearchAgentOptions struct {
	Logger logging.Logger
}

// NewSearchAgent constructs the search variant. A nil searcher is allowed;
// every task then takes the direct-answer path.
func NewSearchAgent(m model.Model, searcher search.Searcher, optFns ...func(o *SearchAgentOptions)) *SearchAgent {
	opts := SearchAgentOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &SearchAgent{
		BaseAgent: newBaseAgent(SearchAgentName, m, searchKeywords, opts.Logger),
		searcher:  searcher,
	}
}

// SystemPrompt implements core.Agent.
func (a *SearchAgent) SystemPrompt() string {
	return `You are a Search Assistant AI specialized in finding and providing current information from the web.

Your capabilities include:
- Conducting web searches for current information
- Finding factual data and recent news
- Research assistance across various topics
- Providing accurate, cited information
- Summarizing search results clearly

When processing search requests:
1. Identify the core information need
2. Synthesize multiple sources when appropriate
3. Provide clear, well-structured responses
4. Include source citations when relevant
5. Indicate when information might be time-sensitive

Always prioritize accuracy and recency of information. If you cannot find reliable information on a topic, clearly state this limitation.`
}

// Capabilities implements core.Agent.
func (a *SearchAgent) Capabilities() []string {
	return []string{
		"Web search for current information",
		"Research assistance and fact-finding",
		"News and current events updates",
		"Market data and pricing information",
		"Weather and location-based queries",
		"Comparative analysis and reviews",
		"Source verification and citation",
	}
}

// Process implements core.Agent.
func (a *SearchAgent) Process(ctx context.Context, task string, tc *core.TaskContext) (resp core.Response) {
	defer a.recoverToResponse(&resp)

	if needsSearch(task) && a.searcher != nil {
		if resp, ok := a.webSearch(ctx, task); ok {
			return resp
		}
		a.logger.Warn("web search failed, falling back to direct response")
	}
	return a.directResponse(ctx, task, tc)
}

// needsSearch decides locally whether the task requires live web data. The
// tiers are checked in order: current-info keywords, time-sensitive topics,
// fixed question templates, then an interrogative first word.
func needsSearch(task string) bool {
	lower := strings.ToLower(strings.TrimSpace(task))

	for _, kw := range currentInfoKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	for _, topic := range timeSensitiveTopics {
		if strings.Contains(lower, topic) {
			return true
		}
	}
	for _, pattern := range questionTemplates {
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	for w := range interrogatives {
		if strings.HasPrefix(lower, w) {
			return true
		}
	}
	return false
}

// webSearch runs the search capability; the second return value reports
// whether a usable result came back.
func (a *SearchAgent) webSearch(ctx context.Context, task string) (core.Response, bool) {
	result, err := a.searcher.Search(ctx, task, searchInstruction)
	if err != nil {
		a.logger.Warn("search capability error", "error", err)
		return core.Response{}, false
	}
	if result == nil || !result.Success {
		if result != nil {
			a.logger.Warn("search capability reported failure", "error", result.Error)
		}
		return core.Response{}, false
	}

	content := result.Content
	if len(result.Citations) > 0 {
		var b strings.Builder
		b.WriteString(content)
		b.WriteString("\n\n**Sources:**\n")
		for i, citation := range result.Citations {
			if i == 5 {
				break
			}
			fmt.Fprintf(&b, "%d. %s\n", i+1, citation)
		}
		content = strings.TrimRight(b.String(), "\n")
	}

	return a.respond(content, map[string]any{
		"search_performed": true,
		"citations":        result.Citations,
		"action_performed": "web_search",
	}), true
}

// directResponse answers from the model alone, disclaiming the lack of live data.
func (a *SearchAgent) directResponse(ctx context.Context, task string, tc *core.TaskContext) core.Response {
	var history []core.Message
	if tc != nil {
		history = tc.Messages
	}
	system := a.SystemPrompt() + "\n\nNote: You do not have access to current web information for this response. " +
		"If the user needs current or live information, state that a web search was not available."

	reply, err := a.generate(ctx, withTask(history, task), system, 1000)
	if err != nil {
		return a.fail("failed to process your request: "+err.Error(), core.ErrKindCapabilityUnavail)
	}
	return a.respond(reply, map[string]any{
		"search_performed": false,
		"action_performed": "direct_response",
		"note":             "Response based on training data, not current web search",
	})
}

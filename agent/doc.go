// Package agent contains the concrete capability variants behind the uniform
// core.Agent contract: a calendar agent, a web-search agent, a code assistant
// and the coordinator that routes between them. Each variant classifies an
// incoming task (via the model capability or a local heuristic), dispatches
// to an internal handler per action, and wraps the outcome in a response
// envelope. No error or panic escapes a variant's Process method.
package agent

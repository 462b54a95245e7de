// Package core provides the foundational domain types and interfaces used by
// AgentRelay. It defines the core abstractions for:
//
//   - Agents (capability variants behind a uniform can-handle/process contract)
//   - Sessions (stateful multi-turn containers with per-agent conversation
//     state and an append-only workflow history)
//   - Responses (the uniform envelope every agent returns)
//   - Pluggable stores for session state
//
// The package intentionally keeps implementation concerns (persistence,
// engine orchestration, concrete agents) out of scope, exposing small
// interfaces to enable custom backends and extensions.
package core

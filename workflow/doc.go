// Package workflow drives one coordinator invocation per user turn: it owns
// the session store, records workflow history events, and exposes status,
// clear and health operations. ProcessUserInput is a catch-all boundary; a
// caller always receives a well-formed TurnResult.
package workflow

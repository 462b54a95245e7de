// Package model defines the text-generation capability boundary consumed by
// agents, plus a deterministic MockModel for tests. Provider adapters live in
// sub-packages (anthropic, openai) so only the wiring layer decides which
// backend to instantiate.
package model

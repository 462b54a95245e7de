// Package search defines the web-search capability boundary. The core only
// needs "search given a query and a system instruction, return text plus
// citations"; concrete backends live in sub-packages (perplexity).
package search

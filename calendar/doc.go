// Package calendar defines the event-persistence capability consumed by the
// calendar agent: a small Store interface over events plus the closed-open
// interval overlap predicate used for conflict detection. An in-memory store
// backs tests; the sqlite sub-package provides durable persistence.
package calendar

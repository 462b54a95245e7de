package core

import "errors"

// ErrSessionNotFound is returned by SessionStore.Get for unknown session ids.
var ErrSessionNotFound = errors.New("session not found")

// SessionStore persists sessions keyed by session id. Implementations must be
// safe for concurrent use; the in-memory store clones on read and write so
// two concurrent turns never share a live Session object.
type SessionStore interface {
	// Get returns the session for id or ErrSessionNotFound.
	Get(id string) (*Session, error)

	// Put stores a snapshot of the session under its id.
	Put(s *Session) error

	// Delete removes a session, reporting whether one existed.
	Delete(id string) (bool, error)

	// Len reports the number of stored sessions.
	Len() int
}

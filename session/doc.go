// Package session houses concrete implementations of core.SessionStore. The
// interface itself (and the Session struct) live in the core package to
// centralize domain contracts. Add additional backends in sub-packages
// without changing any calling code; only the wiring layer decides which
// implementation to instantiate.
package session

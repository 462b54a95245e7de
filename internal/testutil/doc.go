// Package testutil provides fluent builders for constructing sessions and
// workflow events in tests. It is internal; production code must not depend
// on it.
package testutil

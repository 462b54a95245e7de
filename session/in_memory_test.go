package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentrelay/core"
)

var _ core.SessionStore = (*InMemoryStore)(nil)

func TestInMemoryStore_GetNotFound(t *testing.T) {
	store := NewInMemoryStore()
	_, err := store.Get("missing")
	assert.ErrorIs(t, err, core.ErrSessionNotFound)
}

func TestInMemoryStore_PutGetRoundTrip(t *testing.T) {
	store := NewInMemoryStore()

	sess := core.NewSession("s1")
	sess.GlobalContext["k"] = "v"
	require.NoError(t, store.Put(sess))

	got, err := store.Get("s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", got.ID)
	assert.Equal(t, "v", got.GlobalContext["k"])
}

func TestInMemoryStore_CloneIsolation(t *testing.T) {
	store := NewInMemoryStore()

	sess := core.NewSession("s1")
	require.NoError(t, store.Put(sess))

	// Mutating the original after Put must not affect the stored copy.
	sess.GlobalContext["k"] = "after-put"
	first, err := store.Get("s1")
	require.NoError(t, err)
	assert.NotContains(t, first.GlobalContext, "k")

	// Mutating a Get result must not affect later reads.
	first.GlobalContext["k"] = "after-get"
	second, err := store.Get("s1")
	require.NoError(t, err)
	assert.NotContains(t, second.GlobalContext, "k")
}

func TestInMemoryStore_DeleteAndLen(t *testing.T) {
	store := NewInMemoryStore()
	require.NoError(t, store.Put(core.NewSession("s1")))
	require.NoError(t, store.Put(core.NewSession("s2")))
	assert.Equal(t, 2, store.Len())

	existed, err := store.Delete("s1")
	require.NoError(t, err)
	assert.True(t, existed)
	assert.Equal(t, 1, store.Len())

	existed, err = store.Delete("s1")
	require.NoError(t, err)
	assert.False(t, existed)
}

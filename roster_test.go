package main

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryJoinAppendsInOrder(t *testing.T) {
	r := newRegistry(newMemRosterStore())

	r.Join("r1", Player{ConnID: "c1", PlayerID: "p1", Name: "Alice"})
	roster := r.Join("r1", Player{ConnID: "c2", PlayerID: "p2", Name: "Bob"})

	require.Len(t, roster, 2)
	assert.Equal(t, "p1", roster[0].PlayerID)
	assert.Equal(t, "p2", roster[1].PlayerID)
}

func TestRegistryReconnectKeepsPosition(t *testing.T) {
	r := newRegistry(newMemRosterStore())

	r.Join("r1", Player{ConnID: "c1", PlayerID: "p1", Name: "Alice"})
	r.Join("r1", Player{ConnID: "c2", PlayerID: "p2", Name: "Bob"})
	roster := r.Join("r1", Player{ConnID: "c3", PlayerID: "p1", Name: "Alice"})

	require.Len(t, roster, 2)
	assert.Equal(t, "p1", roster[0].PlayerID)
	assert.Equal(t, "c3", roster[0].ConnID, "reconnect should update the connection in place")
	assert.Equal(t, "p2", roster[1].PlayerID)
}

func TestRegistryRosterUniqueness(t *testing.T) {
	r := newRegistry(newMemRosterStore())

	// A reconnect storm converges to one entry per player id.
	for i := 0; i < 20; i++ {
		r.Join("r1", Player{ConnID: fmt.Sprintf("c%d", i), PlayerID: fmt.Sprintf("p%d", i%3), Name: "x"})
	}

	roster := r.RosterOf("r1")
	require.Len(t, roster, 3)

	seen := make(map[string]bool)
	for _, p := range roster {
		assert.False(t, seen[p.PlayerID], "duplicate player id %s", p.PlayerID)
		seen[p.PlayerID] = true
	}
}

func TestRegistryLeaveMatchesConnID(t *testing.T) {
	r := newRegistry(newMemRosterStore())

	r.Join("r1", Player{ConnID: "c1", PlayerID: "p1", Name: "Alice"})
	r.Join("r1", Player{ConnID: "c2", PlayerID: "p2", Name: "Bob"})

	roster, left, ok := r.Leave("r1", "c1")
	require.True(t, ok)
	assert.Equal(t, "p1", left.PlayerID)
	require.Len(t, roster, 1)
	assert.Equal(t, "p2", roster[0].PlayerID)
}

func TestRegistryLeaveStaleConnIsNoop(t *testing.T) {
	r := newRegistry(newMemRosterStore())

	r.Join("r1", Player{ConnID: "c1", PlayerID: "p1", Name: "Alice"})
	// p1 reconnects before the old connection's disconnect lands.
	r.Join("r1", Player{ConnID: "c2", PlayerID: "p1", Name: "Alice"})

	roster, _, ok := r.Leave("r1", "c1")
	assert.False(t, ok)
	require.Len(t, roster, 1)
	assert.Equal(t, "c2", roster[0].ConnID)
}

func TestRegistryEmptyRosterDeletesRoom(t *testing.T) {
	store := newMemRosterStore()
	r := newRegistry(store)

	r.Join("r1", Player{ConnID: "c1", PlayerID: "p1", Name: "Alice"})
	roster, _, ok := r.Leave("r1", "c1")

	require.True(t, ok)
	assert.Empty(t, roster)
	_, exists := store.rosters["r1"]
	assert.False(t, exists, "empty room should be deleted from the store")
}

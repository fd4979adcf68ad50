package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := openStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return store
}

func TestStoreCreateAndFindUser(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.CreateUser(ctx, "Alice", "alice", "hash")
	require.NoError(t, err)
	assert.Positive(t, id)

	user, found, err := store.FindUserByName(ctx, "alice")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, id, user.ID)
	assert.Equal(t, "Alice", user.Name)
	assert.Equal(t, "hash", user.Password)
}

func TestStoreDuplicateUsername(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.CreateUser(ctx, "Alice", "alice", "hash")
	require.NoError(t, err)

	_, err = store.CreateUser(ctx, "Other Alice", "alice", "hash2")
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestStoreFindUserNotFound(t *testing.T) {
	store := newTestStore(t)

	_, found, err := store.FindUserByName(context.Background(), "nobody")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStoreCreateAndFindRoom(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.CreateRoom(ctx, "ab12cd34", 6)
	require.NoError(t, err)

	room, found, err := store.FindRoomByCode(ctx, "ab12cd34")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "ab12cd34", room.Code)
	assert.Equal(t, 6, room.MaxPlayers)
	assert.False(t, room.CreatedAt.IsZero())
}

func TestStoreDuplicateRoomCode(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.CreateRoom(ctx, "ab12cd34", 6)
	require.NoError(t, err)

	_, err = store.CreateRoom(ctx, "ab12cd34", 8)
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestStoreFindRoomNotFound(t *testing.T) {
	store := newTestStore(t)

	_, found, err := store.FindRoomByCode(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, found)
}

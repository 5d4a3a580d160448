package kvstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListMissingKeyIsEmpty(t *testing.T) {
	items, err := List[string](context.Background(), NewMemory(), "likedStories")
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestAppendKeepsOrder(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	_, err := Append(ctx, s, "drafts", "a")
	require.NoError(t, err)
	items, err := Append(ctx, s, "drafts", "b")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, items)

	stored, err := List[string](ctx, s, "drafts")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, stored)
}

func TestScopedIsolatesUsers(t *testing.T) {
	ctx := context.Background()
	base := NewMemory()
	alice := Scoped(base, "alice")
	bob := Scoped(base, "bob")

	require.NoError(t, Set(ctx, alice, "likedStories", []string{"1"}))

	var got []string
	err := Get(ctx, bob, "likedStories", &got)
	assert.ErrorIs(t, err, ErrNotFound)

	raw, err := base.GetRaw(ctx, "user:alice:likedStories")
	require.NoError(t, err)
	assert.JSONEq(t, `["1"]`, string(raw))
}

func TestGetCorruptValue(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	require.NoError(t, s.SetRaw(ctx, "storyDrafts", []byte("{not json")))

	_, err := List[string](ctx, s, "storyDrafts")
	assert.Error(t, err)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	require.NoError(t, Set(ctx, s, "k", 1))
	require.NoError(t, s.Delete(ctx, "k"))

	_, err := s.GetRaw(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
}

package prefs

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "prefs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestGetSet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "theme", "dark"))
	value, ok, err := s.Get(ctx, "theme")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "dark", value)

	// Set replaces.
	require.NoError(t, s.Set(ctx, "theme", "light"))
	value, _, err = s.Get(ctx, "theme")
	require.NoError(t, err)
	assert.Equal(t, "light", value)
}

func TestDelete(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "key", "value"))
	require.NoError(t, s.Delete(ctx, "key"))
	_, ok, err := s.Get(ctx, "key")
	require.NoError(t, err)
	assert.False(t, ok)

	// Deleting an absent key is fine.
	require.NoError(t, s.Delete(ctx, "key"))
}

func TestOnboarding(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	seen, err := s.OnboardingSeen(ctx)
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, s.MarkOnboardingSeen(ctx))
	seen, err = s.OnboardingSeen(ctx)
	require.NoError(t, err)
	assert.True(t, seen)
}

package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedClock returns a clock that advances by one second per call.
func fixedClock() func() time.Time {
	t := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func backends(t *testing.T) map[string]Store {
	t.Helper()
	ctx := context.Background()

	mem := NewMemory()
	mem.now = fixedClock()

	bdg, err := OpenBadger(BadgerConfig{InMemory: true})
	require.NoError(t, err)
	bdg.now = fixedClock()

	sq, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "docs.db"))
	require.NoError(t, err)
	sq.now = fixedClock()

	stores := map[string]Store{"memory": mem, "badger": bdg, "sqlite": sq}
	t.Cleanup(func() {
		for _, s := range stores {
			_ = s.Close()
		}
	})
	return stores
}

func TestStore_SaveLoad(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			saved, err := s.Save(ctx, "doc-1", "The quick brown fox.")
			require.NoError(t, err)
			assert.Equal(t, DefaultTitle, saved.Title)
			assert.Equal(t, 4, saved.Stats.Words)
			assert.Equal(t, 20, saved.Stats.Characters)

			loaded, err := s.Load(ctx, "doc-1")
			require.NoError(t, err)
			assert.Equal(t, "The quick brown fox.", loaded.Content)
			assert.Equal(t, saved.Stats, loaded.Stats)
			assert.True(t, saved.CreatedAt.Equal(loaded.CreatedAt))
		})
	}
}

func TestStore_SaveKeepsTitleAndCreatedAt(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			first, err := s.Save(ctx, "doc-1", "draft", WithTitle("Essay"))
			require.NoError(t, err)

			second, err := s.Save(ctx, "doc-1", "final draft")
			require.NoError(t, err)

			assert.Equal(t, "Essay", second.Title)
			assert.True(t, first.CreatedAt.Equal(second.CreatedAt))
			assert.True(t, second.UpdatedAt.After(first.UpdatedAt))

			loaded, err := s.Load(ctx, "doc-1")
			require.NoError(t, err)
			assert.Equal(t, "final draft", loaded.Content)
			assert.Equal(t, "Essay", loaded.Title)
		})
	}
}

func TestStore_NotFound(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Load(ctx, "missing")
			assert.ErrorIs(t, err, ErrNotFound)

			err = s.Delete(ctx, "missing")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestStore_InvalidID(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Save(ctx, "", "content")
			assert.ErrorIs(t, err, ErrInvalidID)
		})
	}
}

func TestStore_DeleteAndList(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Save(ctx, "a", "first")
			require.NoError(t, err)
			_, err = s.Save(ctx, "b", "second")
			require.NoError(t, err)
			_, err = s.Save(ctx, "c", "third")
			require.NoError(t, err)

			require.NoError(t, s.Delete(ctx, "b"))

			docs, err := s.List(ctx)
			require.NoError(t, err)
			require.Len(t, docs, 2)
			assert.Equal(t, "c", docs[0].ID, "most recently updated first")
			assert.Equal(t, "a", docs[1].ID)
		})
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	for _, driver := range []string{"", DriverMemory, DriverBadger, DriverSQLite} {
		s, err := Open(ctx, Config{Driver: driver})
		require.NoError(t, err, driver)
		_, err = s.Save(ctx, "x", "y")
		assert.NoError(t, err, driver)
		require.NoError(t, s.Close())
	}

	_, err := Open(ctx, Config{Driver: "postgres"})
	assert.ErrorIs(t, err, ErrUnknownDriver)
}

func TestBadger_Persistent(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := OpenBadger(BadgerConfig{Path: dir, SyncWrites: true})
	require.NoError(t, err)
	_, err = s.Save(ctx, "doc", "survives restart")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = OpenBadger(BadgerConfig{Path: dir})
	require.NoError(t, err)
	defer s.Close()

	doc, err := s.Load(ctx, "doc")
	require.NoError(t, err)
	assert.Equal(t, "survives restart", doc.Content)
}

func TestMemory_Closed(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.Close())

	_, err := m.Save(context.Background(), "a", "b")
	assert.ErrorIs(t, err, ErrClosed)
}

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/memory/internal/faces"
	"github.com/robalobadob/memory/internal/game"
	"github.com/robalobadob/memory/internal/session"
)

func newSession(t *testing.T, id string, clock func() time.Time) *session.Session {
	t.Helper()
	cfg := game.Config{Rows: 2, Cols: 2, TriesBudget: 3, HideDelay: time.Second}
	s, err := session.New(id, session.Owner{}, cfg, faces.ListSource{"a", "b"}, session.WithClock(clock))
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func TestSaveGetDelete(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()
	s := newSession(t, "g1", time.Now)

	require.NoError(t, st.Save(ctx, s))
	got, err := st.Get(ctx, "g1")
	require.NoError(t, err)
	assert.Same(t, s, got)
	assert.Equal(t, 1, st.Len())

	require.NoError(t, st.Delete(ctx, "g1"))
	_, err = st.Get(ctx, "g1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, st.Delete(ctx, "g1"), ErrNotFound)

	_, err = s.Snapshot(ctx)
	assert.Error(t, err, "deleted session is closed")
}

func TestSweepRemovesIdleSessions(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	old := newSession(t, "old", func() time.Time { return now.Add(-time.Hour) })
	fresh := newSession(t, "fresh", func() time.Time { return now })

	st := &memory{sessions: map[string]*session.Session{}, now: func() time.Time { return now }}
	require.NoError(t, st.Save(ctx, old))
	require.NoError(t, st.Save(ctx, fresh))

	assert.Equal(t, 1, st.Sweep(ctx, 30*time.Minute))
	assert.Equal(t, 1, st.Len())
	_, err := st.Get(ctx, "old")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = st.Get(ctx, "fresh")
	assert.NoError(t, err)
}

func TestOwnedByOrdersLeastRecentFirst(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	alice := session.Owner{UserID: "alice"}

	mk := func(id string, owner session.Owner, age time.Duration) *session.Session {
		cfg := game.Config{Rows: 2, Cols: 2, TriesBudget: 3, HideDelay: time.Second}
		s, err := session.New(id, owner, cfg, faces.ListSource{"a", "b"}, session.WithClock(func() time.Time { return now.Add(-age) }))
		require.NoError(t, err)
		t.Cleanup(s.Close)
		return s
	}

	st := NewMemoryStore()
	require.NoError(t, st.Save(ctx, mk("new", alice, time.Minute)))
	require.NoError(t, st.Save(ctx, mk("old", alice, time.Hour)))
	require.NoError(t, st.Save(ctx, mk("other", session.Owner{AnonID: "x"}, 2*time.Hour)))

	owned := st.OwnedBy(ctx, alice)
	require.Len(t, owned, 2)
	assert.Equal(t, "old", owned[0].ID)
	assert.Equal(t, "new", owned[1].ID)
	assert.Empty(t, st.OwnedBy(ctx, session.Owner{UserID: "nobody"}))
}

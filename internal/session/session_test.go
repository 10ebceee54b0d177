package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/memory/internal/faces"
	"github.com/robalobadob/memory/internal/game"
)

func noShuffle(int, func(i, j int)) {}

// newSession builds a 2x2 session where cells 0,1 and 2,3 are pairs.
func newSession(t *testing.T, tries int, delay time.Duration, opts ...Option) *Session {
	t.Helper()
	cfg := game.Config{Rows: 2, Cols: 2, TriesBudget: tries, HideDelay: delay}
	s, err := New("g1", Owner{AnonID: "anon"}, cfg, faces.ListSource{"a", "b"}, append([]Option{WithShuffle(noShuffle)}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func waitFor(t *testing.T, ch <-chan Envelope, kind game.EventKind) []Envelope {
	t.Helper()
	var seen []Envelope
	timeout := time.After(2 * time.Second)
	for {
		select {
		case env, ok := <-ch:
			require.True(t, ok, "subscription closed before %s", kind)
			seen = append(seen, env)
			if env.Event.Kind == kind {
				return seen
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %s", kind)
		}
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	_, err := New("g", Owner{}, game.Config{Rows: 1, Cols: 3, TriesBudget: 1}, faces.ListSource{"a", "b"})
	assert.ErrorIs(t, err, game.ErrConfiguration)

	_, err = New("g", Owner{}, game.Config{Rows: 2, Cols: 2, TriesBudget: 1}, faces.ListSource{"a"})
	assert.ErrorIs(t, err, game.ErrAssetShortage)
}

func TestSessionWin(t *testing.T) {
	results := make(chan Result, 1)
	s := newSession(t, 10, time.Second, WithFinishHook(func(r Result) { results <- r }))
	ctx := context.Background()

	for _, i := range []int{0, 1, 2, 3} {
		_, err := s.Reveal(ctx, i)
		require.NoError(t, err)
	}
	snap, err := s.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, "won", snap.State)
	assert.Equal(t, 0, snap.PairsRemaining)

	select {
	case r := <-results:
		assert.Equal(t, "g1", r.GameID)
		assert.Equal(t, "won", r.Outcome)
		assert.Equal(t, 2, r.Attempts)
		assert.Equal(t, 10, r.TriesLeft)
		assert.Equal(t, Owner{AnonID: "anon"}, r.Owner)
	case <-time.After(time.Second):
		t.Fatal("finish hook not called")
	}
}

func TestSessionMismatchHidesOnLoop(t *testing.T) {
	s := newSession(t, 10, 10*time.Millisecond)
	ch, cancel := s.Subscribe()
	defer cancel()
	ctx := context.Background()

	_, err := s.Reveal(ctx, 0)
	require.NoError(t, err)
	snap, err := s.Reveal(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "locked", snap.State)
	assert.Equal(t, game.CellRevealed, snap.Cells[2].State)

	seen := waitFor(t, ch, game.EventCellsHidden)
	for i := 1; i < len(seen); i++ {
		assert.Equal(t, seen[i-1].Seq+1, seen[i].Seq)
	}

	snap, err = s.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, "idle", snap.State)
	assert.Equal(t, 9, snap.TriesLeft)
	assert.Equal(t, game.CellHidden, snap.Cells[0].State)
	assert.Equal(t, game.CellHidden, snap.Cells[2].State)
}

func TestSessionLoss(t *testing.T) {
	results := make(chan Result, 1)
	s := newSession(t, 1, 5*time.Millisecond, WithFinishHook(func(r Result) { results <- r }))
	ch, cancel := s.Subscribe()
	defer cancel()
	ctx := context.Background()

	_, _ = s.Reveal(ctx, 1)
	_, _ = s.Reveal(ctx, 2)
	waitFor(t, ch, game.EventCellsHidden)

	snap, err := s.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, "lost", snap.State)

	select {
	case r := <-results:
		assert.Equal(t, "lost", r.Outcome)
		assert.Equal(t, 0, r.TriesLeft)
	case <-time.After(time.Second):
		t.Fatal("finish hook not called")
	}
}

func TestSessionResetCancelsPendingHide(t *testing.T) {
	s := newSession(t, 10, 20*time.Millisecond)
	ch, cancel := s.Subscribe()
	defer cancel()
	ctx := context.Background()

	_, _ = s.Reveal(ctx, 0)
	_, _ = s.Reveal(ctx, 2)
	snap, err := s.Reset(ctx)
	require.NoError(t, err)
	assert.Equal(t, "idle", snap.State)
	assert.Equal(t, 10, snap.TriesLeft)

	_, _ = s.Reveal(ctx, 3)
	time.Sleep(80 * time.Millisecond)

	snap, err = s.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, "one_selected", snap.State)
	assert.Equal(t, game.CellRevealed, snap.Cells[3].State)

	var kinds []game.EventKind
	for len(ch) > 0 {
		kinds = append(kinds, (<-ch).Event.Kind)
	}
	assert.NotContains(t, kinds, game.EventCellsHidden)
	assert.Equal(t, game.EventCellRevealed, kinds[len(kinds)-1])
}

func TestSubscribeLifecycle(t *testing.T) {
	s := newSession(t, 10, time.Second)

	ch, cancel := s.Subscribe()
	cancel()
	_, ok := <-ch
	assert.False(t, ok)
	cancel()

	ch2, _ := s.Subscribe()
	s.Close()
	_, ok = <-ch2
	assert.False(t, ok)

	ch3, _ := s.Subscribe()
	_, ok = <-ch3
	assert.False(t, ok)

	_, err := s.Snapshot(context.Background())
	assert.Error(t, err)
}

func TestLastSeenAdvances(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	s := newSession(t, 10, time.Second, WithClock(clock))
	assert.Equal(t, now, s.LastSeen())

	now = now.Add(time.Minute)
	_, err := s.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, now, s.LastSeen())
}

package loop

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoRunsInOrder(t *testing.T) {
	l := New(0)
	defer l.Close()

	var got []int
	for i := 0; i < 5; i++ {
		i := i
		require.NoError(t, l.Do(context.Background(), func() { got = append(got, i) }))
	}
	assert.Equal(t, []int{0, 1, 2, 3, 4}, got)
}

func TestAfterFuncRunsOnLoop(t *testing.T) {
	l := New(0)
	defer l.Close()

	// A task blocking the loop must delay the timer callback until it returns.
	release := make(chan struct{})
	require.True(t, l.Post(func() { <-release }))

	var fired atomic.Bool
	ran := make(chan struct{})
	l.AfterFunc(5*time.Millisecond, func() {
		fired.Store(true)
		close(ran)
	})

	time.Sleep(30 * time.Millisecond)
	assert.False(t, fired.Load(), "callback must wait for the running task")

	close(release)
	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("timer callback never ran")
	}
}

func TestAfterFuncStop(t *testing.T) {
	l := New(0)
	defer l.Close()

	var fired atomic.Bool
	stop := l.AfterFunc(20*time.Millisecond, func() { fired.Store(true) })
	assert.True(t, stop())

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, l.Do(context.Background(), func() {}))
	assert.False(t, fired.Load())
}

func TestDoAfterClose(t *testing.T) {
	l := New(0)
	l.Close()
	l.Close()

	assert.ErrorIs(t, l.Do(context.Background(), func() {}), ErrClosed)
	assert.False(t, l.Post(func() {}))
}

func TestDoContextCanceled(t *testing.T) {
	l := New(1)
	defer l.Close()

	release := make(chan struct{})
	require.True(t, l.Post(func() { <-release }))
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := l.Do(ctx, func() {})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestPanicDoesNotStopLoop(t *testing.T) {
	l := New(0)
	defer l.Close()

	require.NoError(t, l.Do(context.Background(), func() { panic("boom") }))

	ok := false
	require.NoError(t, l.Do(context.Background(), func() { ok = true }))
	assert.True(t, ok)
}

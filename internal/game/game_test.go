package game

import (
	"errors"
	"fmt"
	"time"
)

// listSource is a fixed ValueSource.
type listSource struct {
	values []string
	err    error
}

func (s *listSource) Values() ([]string, error) { return s.values, s.err }

// noShuffle keeps build order, so a deck over [a b c] is [a a b b c c].
func noShuffle(int, func(i, j int)) {}

func values(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("v%d", i+1)
	}
	return out
}

// manualScheduler fires callbacks only when the test advances its clock.
type manualScheduler struct {
	now        time.Duration
	tasks      []*manualTask
	ignoreStop bool // simulate a callback already dispatched when stop is called
}

type manualTask struct {
	at      time.Duration
	fn      func()
	fired   bool
	stopped bool
}

func (s *manualScheduler) AfterFunc(d time.Duration, fn func()) func() bool {
	t := &manualTask{at: s.now + d, fn: fn}
	s.tasks = append(s.tasks, t)
	return func() bool {
		if s.ignoreStop || t.fired || t.stopped {
			return false
		}
		t.stopped = true
		return true
	}
}

func (s *manualScheduler) Advance(d time.Duration) {
	s.now += d
	due := append([]*manualTask(nil), s.tasks...)
	for _, t := range due {
		if !t.fired && !t.stopped && t.at <= s.now {
			t.fired = true
			t.fn()
		}
	}
}

func (s *manualScheduler) outstanding() int {
	n := 0
	for _, t := range s.tasks {
		if !t.fired && !t.stopped {
			n++
		}
	}
	return n
}

// recorder collects emitted events.
type recorder struct{ events []Event }

func (r *recorder) OnEvent(ev Event) { r.events = append(r.events, ev) }

func (r *recorder) kinds() []EventKind {
	out := make([]EventKind, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Kind
	}
	return out
}

func (r *recorder) count(k EventKind) int {
	n := 0
	for _, ev := range r.events {
		if ev.Kind == k {
			n++
		}
	}
	return n
}

func (r *recorder) clear() { r.events = nil }

var errBoom = errors.New("boom")

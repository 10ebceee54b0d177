// internal/loop/loop.go
//
// Single-goroutine task loop.
// Responsibilities:
//   - Serialise every call into a game engine onto one goroutine.
//   - Turn delayed callbacks (time.AfterFunc) into tasks posted back onto the
//     same goroutine, so timers never touch engine state concurrently.
//
// Notes:
//   - A task posted by a timer that fires after Close is dropped.
//   - A panicking task is logged and the loop keeps running.

package loop

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// ErrClosed is returned by Do after Close.
var ErrClosed = errors.New("loop closed")

// DefaultBuffer is the task queue length used by New when size <= 0.
const DefaultBuffer = 64

// Loop runs tasks one at a time on its own goroutine.
type Loop struct {
	tasks     chan func()
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// New starts a loop with a task queue of the given size.
func New(size int) *Loop {
	if size <= 0 {
		size = DefaultBuffer
	}
	l := &Loop{
		tasks: make(chan func(), size),
		quit:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	go l.run()
	return l
}

func (l *Loop) run() {
	defer close(l.done)
	for {
		select {
		case <-l.quit:
			return
		case fn := <-l.tasks:
			l.exec(fn)
		}
	}
}

func (l *Loop) exec(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("loop task panicked")
		}
	}()
	fn()
}

// Post enqueues fn without waiting. It reports false if the loop is closed.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.quit:
		return false
	default:
	}
	select {
	case l.tasks <- fn:
		return true
	case <-l.quit:
		return false
	}
}

// Do runs fn on the loop and waits for it to finish.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	task := func() {
		defer close(finished)
		fn()
	}
	select {
	case l.tasks <- task:
	case <-l.quit:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-finished:
		return nil
	case <-l.quit:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// AfterFunc arms a timer that posts fn onto the loop after d. The returned
// stop function reports whether the timer was stopped before it fired; once
// it has fired the task may already be queued.
func (l *Loop) AfterFunc(d time.Duration, fn func()) func() bool {
	t := time.AfterFunc(d, func() {
		if !l.Post(fn) {
			log.Debug().Msg("timer fired after loop closed")
		}
	})
	return t.Stop
}

// Close stops the loop and waits for the running task, if any, to return.
// Queued tasks are discarded.
func (l *Loop) Close() {
	l.closeOnce.Do(func() { close(l.quit) })
	<-l.done
}

// internal/game/types.go
//
// Core type definitions for the memory game engine.
// Defines:
//   - State: turn state machine position (idle, one selected, locked, won, lost).
//   - Event/Observer: outbound notifications consumed by a presentation adapter.
//   - Config: board dimensions, tries budget, and mismatch-hide delay.
//   - Scheduler: the deferred-callback contract used for the mismatch-hide delay.
//   - Sentinel errors for configuration, asset, and argument failures.

package game

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrConfiguration reports an unusable board configuration (odd cell count,
	// non-positive dimensions or budget).
	ErrConfiguration = errors.New("configuration error")

	// ErrAssetShortage reports that the value source cannot supply enough
	// distinct values to fill the board.
	ErrAssetShortage = errors.New("asset shortage")

	// ErrInvalidArgument reports a bad argument to a constructor.
	ErrInvalidArgument = errors.New("invalid argument")
)

// State is the position of the engine in the turn state machine.
type State int

const (
	StateIdle        State = iota // no face-up unmatched cell
	StateOneSelected              // one face-up cell awaiting a second pick
	StateEvaluating               // transient, only observable from inside an observer
	StateLocked                   // mismatch-hide outstanding, reveals rejected
	StateWon
	StateLost
)

// String returns the wire name of a State.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateOneSelected:
		return "one_selected"
	case StateEvaluating:
		return "evaluating"
	case StateLocked:
		return "locked"
	case StateWon:
		return "won"
	case StateLost:
		return "lost"
	default:
		return "unknown"
	}
}

// Terminal reports whether the state only leaves via Reset.
func (s State) Terminal() bool { return s == StateWon || s == StateLost }

// EventKind names an outbound engine event.
type EventKind string

const (
	EventCellRevealed    EventKind = "cell_revealed"    // Cells: [index]
	EventMatched         EventKind = "matched"          // Cells: [i1, i2]
	EventMismatchPending EventKind = "mismatch_pending" // Cells: [i1, i2]
	EventCellsHidden     EventKind = "cells_hidden"     // Cells: [i1, i2]
	EventAttemptsChanged EventKind = "attempts_changed" // Attempts: new count
	EventWon             EventKind = "won"
	EventLost            EventKind = "lost"
	EventReset           EventKind = "reset"
)

// Event is a single notification from the engine.
type Event struct {
	Kind     EventKind `json:"kind"`
	Cells    []int     `json:"cells,omitempty"`
	Attempts int       `json:"attempts,omitempty"`
}

// Observer receives engine events. OnEvent is called synchronously on the
// engine's thread of control and must not call back into the engine.
type Observer interface {
	OnEvent(Event)
}

// ObserverFunc adapts a plain function to Observer.
type ObserverFunc func(Event)

// OnEvent calls f(ev).
func (f ObserverFunc) OnEvent(ev Event) { f(ev) }

type nopObserver struct{}

func (nopObserver) OnEvent(Event) {}

// Scheduler runs fn once after d on the same logical thread that drives the
// engine. The returned stop function cancels the callback if it has not yet
// been dispatched and reports whether it did so.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) (stop func() bool)
}

const (
	DefaultRows        = 3
	DefaultCols        = 4
	DefaultTriesBudget = 10
	DefaultHideDelay   = 1000 * time.Millisecond

	// MaxCells bounds rows*cols.
	MaxCells = 4096
)

// Config holds the construction-time options of a game.
type Config struct {
	Rows        int           `json:"rows"`
	Cols        int           `json:"cols"`
	TriesBudget int           `json:"triesBudget"`
	HideDelay   time.Duration `json:"-"`
}

// configJSON is the wire form of Config; the delay travels as hideDelayMs.
type configJSON struct {
	Rows        int   `json:"rows"`
	Cols        int   `json:"cols"`
	TriesBudget int   `json:"triesBudget"`
	HideDelayMs int64 `json:"hideDelayMs"`
}

// MarshalJSON encodes the options as {rows, cols, triesBudget, hideDelayMs}.
func (c Config) MarshalJSON() ([]byte, error) {
	return json.Marshal(configJSON{
		Rows:        c.Rows,
		Cols:        c.Cols,
		TriesBudget: c.TriesBudget,
		HideDelayMs: c.HideDelay.Milliseconds(),
	})
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (c *Config) UnmarshalJSON(b []byte) error {
	var w configJSON
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*c = Config{
		Rows:        w.Rows,
		Cols:        w.Cols,
		TriesBudget: w.TriesBudget,
		HideDelay:   time.Duration(w.HideDelayMs) * time.Millisecond,
	}
	return nil
}

// DefaultConfig returns the classic 3x4 board with 10 tries and a one second
// mismatch delay.
func DefaultConfig() Config {
	return Config{
		Rows:        DefaultRows,
		Cols:        DefaultCols,
		TriesBudget: DefaultTriesBudget,
		HideDelay:   DefaultHideDelay,
	}
}

// Validate checks dimensions and budget.
func (c Config) Validate() error {
	if c.Rows <= 0 || c.Cols <= 0 {
		return fmt.Errorf("%w: board dimensions must be positive, got %dx%d", ErrConfiguration, c.Rows, c.Cols)
	}
	if c.Rows > MaxCells/c.Cols {
		return fmt.Errorf("%w: board %dx%d exceeds %d cells", ErrConfiguration, c.Rows, c.Cols, MaxCells)
	}
	if (c.Rows*c.Cols)%2 != 0 {
		return fmt.Errorf("%w: board %dx%d has an odd number of cells", ErrConfiguration, c.Rows, c.Cols)
	}
	if c.TriesBudget <= 0 {
		return fmt.Errorf("%w: tries budget must be positive, got %d", ErrConfiguration, c.TriesBudget)
	}
	if c.HideDelay < 0 {
		return fmt.Errorf("%w: hide delay must not be negative", ErrConfiguration)
	}
	return nil
}

// Cells returns rows*cols.
func (c Config) Cells() int { return c.Rows * c.Cols }

// Pairs returns the number of pairs on the board.
func (c Config) Pairs() int { return c.Cells() / 2 }

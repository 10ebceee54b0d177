// internal/game/engine.go
//
// Core game engine for a single memory board.
// Responsibilities:
//   - Own the deck, per-cell revealed flags, and turn counters.
//   - Run the turn state machine: idle -> one selected -> evaluating ->
//     idle | locked | won, and locked -> idle | lost when the hide fires.
//   - Schedule the delayed mismatch hide through a Scheduler and guard it
//     with a generation token so a reset invalidates stale callbacks.
//   - Report every transition to an Observer.
//
// Notes:
//   - The engine is not safe for concurrent use. All calls, including the
//     scheduled hide, must run on one logical thread (see internal/loop).
//   - Invalid reveals (out of range, locked, terminal, matched or face-up
//     cell) are silent no-ops and emit nothing.
//   - A Scheduler must not invoke the callback from inside AfterFunc.

package game

import "fmt"

// Engine is the state machine of one memory game.
type Engine struct {
	cfg     Config
	builder *DeckBuilder
	sched   Scheduler
	obs     Observer

	cells          []*Card
	revealed       []bool
	state          State
	first          int // sole selection while OneSelected, else -1
	attempts       int
	triesLeft      int
	pairsRemaining int

	gen      uint64      // bumped on reset; hides scheduled under an older gen are dropped
	stopHide func() bool // non-nil while a hide is outstanding
}

// NewEngine validates cfg, builds the first deck and returns an engine in
// the idle state. obs may be nil.
func NewEngine(cfg Config, builder *DeckBuilder, sched Scheduler, obs Observer) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if builder == nil {
		return nil, fmt.Errorf("%w: nil deck builder", ErrInvalidArgument)
	}
	if sched == nil {
		return nil, fmt.Errorf("%w: nil scheduler", ErrInvalidArgument)
	}
	if obs == nil {
		obs = nopObserver{}
	}
	cards, err := builder.Build(cfg.Pairs())
	if err != nil {
		return nil, err
	}
	e := &Engine{cfg: cfg, builder: builder, sched: sched, obs: obs}
	e.install(cards)
	return e, nil
}

// install replaces board and turn state with a fresh deck.
func (e *Engine) install(cards []*Card) {
	e.cells = cards
	e.revealed = make([]bool, len(cards))
	e.state = StateIdle
	e.first = -1
	e.attempts = 0
	e.triesLeft = e.cfg.TriesBudget
	e.pairsRemaining = len(cards) / 2
}

// RevealCell turns the card at index face up and, if it is the second pick
// of the turn, evaluates the pair.
func (e *Engine) RevealCell(index int) {
	if index < 0 || index >= len(e.cells) {
		return
	}
	if e.state != StateIdle && e.state != StateOneSelected {
		return
	}
	if e.cells[index].Matched() || e.revealed[index] {
		return
	}

	e.revealed[index] = true
	if e.state == StateIdle {
		e.first = index
		e.state = StateOneSelected
		e.emit(Event{Kind: EventCellRevealed, Cells: []int{index}})
		return
	}

	e.emit(Event{Kind: EventCellRevealed, Cells: []int{index}})
	e.evaluate(e.first, index)
}

// RevealAt is RevealCell addressed by grid position.
func (e *Engine) RevealAt(row, col int) {
	if row < 0 || row >= e.cfg.Rows || col < 0 || col >= e.cfg.Cols {
		return
	}
	e.RevealCell(row*e.cfg.Cols + col)
}

func (e *Engine) evaluate(i1, i2 int) {
	e.state = StateEvaluating
	e.attempts++
	e.emit(Event{Kind: EventAttemptsChanged, Attempts: e.attempts})

	a, b := e.cells[i1], e.cells[i2]
	if a.Matches(b) {
		a.markMatched()
		b.markMatched()
		e.first = -1
		e.pairsRemaining--
		e.emit(Event{Kind: EventMatched, Cells: []int{i1, i2}})
		if e.pairsRemaining == 0 {
			e.state = StateWon
			e.emit(Event{Kind: EventWon})
			return
		}
		e.state = StateIdle
		return
	}

	e.triesLeft--
	e.state = StateLocked
	gen := e.gen
	e.stopHide = e.sched.AfterFunc(e.cfg.HideDelay, func() { e.hide(gen, i1, i2) })
	e.emit(Event{Kind: EventMismatchPending, Cells: []int{i1, i2}})
}

// hide is the scheduled end of a mismatched turn. The loss check happens
// here, after the pair has been shown, not when triesLeft was decremented.
func (e *Engine) hide(gen uint64, i1, i2 int) {
	if gen != e.gen || e.state != StateLocked {
		return
	}
	e.stopHide = nil
	e.revealed[i1] = false
	e.revealed[i2] = false
	e.first = -1
	if e.triesLeft == 0 {
		e.state = StateLost
		e.emit(Event{Kind: EventLost})
	} else {
		e.state = StateIdle
	}
	e.emit(Event{Kind: EventCellsHidden, Cells: []int{i1, i2}})
}

// Reset cancels any pending hide and starts a new game on a freshly shuffled
// deck. If the deck cannot be built the current game is left untouched.
func (e *Engine) Reset() error {
	cards, err := e.builder.Build(e.cfg.Pairs())
	if err != nil {
		return err
	}
	if e.stopHide != nil {
		e.stopHide()
		e.stopHide = nil
	}
	e.gen++
	e.install(cards)
	e.emit(Event{Kind: EventReset})
	return nil
}

func (e *Engine) emit(ev Event) { e.obs.OnEvent(ev) }

// Config returns the engine's configuration.
func (e *Engine) Config() Config { return e.cfg }

// State returns the current state machine position.
func (e *Engine) State() State { return e.state }

// Attempts returns the number of completed two-card turns.
func (e *Engine) Attempts() int { return e.attempts }

// TriesLeft returns the remaining mismatches allowed.
func (e *Engine) TriesLeft() int { return e.triesLeft }

// PairsRemaining returns the number of pairs not yet found.
func (e *Engine) PairsRemaining() int { return e.pairsRemaining }

// Generation returns the reset counter.
func (e *Engine) Generation() uint64 { return e.gen }

// Len returns the number of cells.
func (e *Engine) Len() int { return len(e.cells) }

// Card returns the card at index, or nil when out of range.
func (e *Engine) Card(index int) *Card {
	if index < 0 || index >= len(e.cells) {
		return nil
	}
	return e.cells[index]
}

// Revealed reports whether the cell at index is face up, temporarily or
// because it is matched.
func (e *Engine) Revealed(index int) bool {
	if index < 0 || index >= len(e.cells) {
		return false
	}
	return e.revealed[index]
}

// Pending reports whether a mismatch hide is outstanding.
func (e *Engine) Pending() bool { return e.stopHide != nil }

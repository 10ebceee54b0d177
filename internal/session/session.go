// internal/session/session.go
//
// A Session is one player's live memory game.
// Responsibilities:
//   - Own a game.Engine and the loop.Loop that serialises every call into it,
//     including the engine's delayed mismatch hide.
//   - Observe the engine: number each event and fan it out to subscribers
//     (WebSocket clients) without ever blocking the loop.
//   - Report every finished round (won or lost) to an optional hook so the
//     result can be recorded.
//
// Notes:
//   - OnEvent runs on the loop goroutine; fields marked "loop-owned" are only
//     touched there.
//   - A subscriber whose buffer is full is dropped, not waited for.

package session

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/memory/internal/game"
	"github.com/robalobadob/memory/internal/loop"
)

// SubscriberBuffer is the per-subscriber event backlog.
const SubscriberBuffer = 32

// Owner identifies who is playing: a signed-in user or an anonymous cookie.
type Owner struct {
	UserID string `json:"userId,omitempty"`
	AnonID string `json:"anonId,omitempty"`
}

// Result describes a finished round.
type Result struct {
	GameID     string
	Owner      Owner
	Rows       int
	Cols       int
	Attempts   int
	TriesLeft  int
	Outcome    string // "won" | "lost"
	Elapsed    time.Duration
	FinishedAt time.Time
	Daily      string // YYYY-MM-DD for the board of the day, else empty
}

// Envelope is an engine event as delivered to subscribers.
type Envelope struct {
	Seq    uint64     `json:"seq"`
	GameID string     `json:"gameId"`
	At     time.Time  `json:"at"`
	Event  game.Event `json:"event"`
}

// Option configures a Session.
type Option func(*Session)

// WithFinishHook registers fn to receive every finished round. fn runs on its
// own goroutine.
func WithFinishHook(fn func(Result)) Option {
	return func(s *Session) { s.onFinish = fn }
}

// WithShuffle overrides the deck shuffle (tests).
func WithShuffle(fn game.ShuffleFunc) Option {
	return func(s *Session) { s.shuffle = fn }
}

// WithDaily marks the session as playing the board of the given date.
func WithDaily(date string) Option {
	return func(s *Session) { s.daily = date }
}

// WithClock overrides time.Now (tests).
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// Session binds an engine to its loop and subscribers.
type Session struct {
	ID        string
	Owner     Owner
	CreatedAt time.Time

	loop     *loop.Loop
	engine   *game.Engine
	onFinish func(Result)
	shuffle  game.ShuffleFunc
	now      func() time.Time
	daily    string

	// loop-owned
	seq        uint64
	roundStart time.Time

	mu       sync.Mutex // guards subs, nextSub, lastSeen, closed
	subs     map[int]chan Envelope
	nextSub  int
	lastSeen time.Time
	closed   bool
}

// New starts a session playing a fresh board.
func New(id string, owner Owner, cfg game.Config, src game.ValueSource, opts ...Option) (*Session, error) {
	s := &Session{
		ID:    id,
		Owner: owner,
		now:   time.Now,
		subs:  make(map[int]chan Envelope),
	}
	for _, opt := range opts {
		opt(s)
	}

	l := loop.New(0)
	e, err := game.NewEngine(cfg, game.NewDeckBuilder(src, s.shuffle), l, s)
	if err != nil {
		l.Close()
		return nil, err
	}
	s.loop = l
	s.engine = e
	s.CreatedAt = s.now()
	s.roundStart = s.CreatedAt
	s.lastSeen = s.CreatedAt
	log.Debug().Str("gameId", id).Int("rows", cfg.Rows).Int("cols", cfg.Cols).Msg("session started")
	return s, nil
}

// OnEvent implements game.Observer.
func (s *Session) OnEvent(ev game.Event) {
	s.seq++
	at := s.now()
	env := Envelope{Seq: s.seq, GameID: s.ID, At: at, Event: ev}

	switch ev.Kind {
	case game.EventReset:
		s.roundStart = at
	case game.EventWon, game.EventLost:
		s.finish(ev.Kind, at)
	}
	s.broadcast(env)
}

func (s *Session) finish(kind game.EventKind, at time.Time) {
	cfg := s.engine.Config()
	res := Result{
		GameID:     s.ID,
		Owner:      s.Owner,
		Rows:       cfg.Rows,
		Cols:       cfg.Cols,
		Attempts:   s.engine.Attempts(),
		TriesLeft:  s.engine.TriesLeft(),
		Outcome:    string(kind),
		Elapsed:    at.Sub(s.roundStart),
		FinishedAt: at,
		Daily:      s.daily,
	}
	log.Info().Str("gameId", s.ID).Str("outcome", res.Outcome).Int("attempts", res.Attempts).Msg("round finished")
	if s.onFinish != nil {
		go s.onFinish(res)
	}
}

func (s *Session) broadcast(env Envelope) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, ch := range s.subs {
		select {
		case ch <- env:
		default:
			log.Warn().Str("gameId", s.ID).Int("sub", id).Msg("dropping slow subscriber")
			close(ch)
			delete(s.subs, id)
		}
	}
}

// Reveal turns over the cell at index and returns the resulting board.
// Invalid reveals are accepted and change nothing.
func (s *Session) Reveal(ctx context.Context, index int) (game.Snapshot, error) {
	return s.do(ctx, func() { s.engine.RevealCell(index) })
}

// RevealAt is Reveal addressed by row and column.
func (s *Session) RevealAt(ctx context.Context, row, col int) (game.Snapshot, error) {
	return s.do(ctx, func() { s.engine.RevealAt(row, col) })
}

// Reset starts a new round on a reshuffled deck.
func (s *Session) Reset(ctx context.Context) (game.Snapshot, error) {
	var resetErr error
	snap, err := s.do(ctx, func() { resetErr = s.engine.Reset() })
	if err != nil {
		return game.Snapshot{}, err
	}
	if resetErr != nil {
		return game.Snapshot{}, resetErr
	}
	return snap, nil
}

// Snapshot returns the current board.
func (s *Session) Snapshot(ctx context.Context) (game.Snapshot, error) {
	return s.do(ctx, func() {})
}

func (s *Session) do(ctx context.Context, fn func()) (game.Snapshot, error) {
	s.touch()
	var snap game.Snapshot
	err := s.loop.Do(ctx, func() {
		fn()
		snap = s.engine.Snapshot()
	})
	if err != nil {
		return game.Snapshot{}, err
	}
	return snap, nil
}

// Subscribe returns a channel of events and a function that ends the
// subscription. The channel is closed when the subscription ends, when the
// subscriber falls behind, or when the session closes.
func (s *Session) Subscribe() (<-chan Envelope, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan Envelope, SubscriberBuffer)
	if s.closed {
		close(ch)
		return ch, func() {}
	}
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if c, ok := s.subs[id]; ok {
			close(c)
			delete(s.subs, id)
		}
	}
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastSeen = s.now()
	s.mu.Unlock()
}

// Daily returns the board date for a daily session, or "".
func (s *Session) Daily() string { return s.daily }

// LastSeen returns the time of the last player action.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Close stops the loop, cancelling any pending hide, and ends all
// subscriptions.
func (s *Session) Close() {
	s.loop.Close()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for id, ch := range s.subs {
		close(ch)
		delete(s.subs, id)
	}
	log.Debug().Str("gameId", s.ID).Msg("session closed")
}

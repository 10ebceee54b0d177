// internal/httpserver/routes_game.go
//
// Game routes. Each game is a live session.Session held in the store.
//   - POST   /game/new          → start a game (optionally the board of the day)
//   - GET    /game/{id}         → current board
//   - POST   /game/{id}/reveal  → turn over a cell by index or row/col
//   - POST   /game/{id}/reset   → reshuffle and start over
//   - DELETE /game/{id}         → abandon the game
//   - GET    /game/{id}/events  → WebSocket stream of game events
//
// Reveals that the rules ignore (a locked board, a face-up cell, a finished
// game) still answer 200 with the unchanged board.

package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/memory/internal/daily"
	"github.com/robalobadob/memory/internal/game"
	"github.com/robalobadob/memory/internal/loop"
	"github.com/robalobadob/memory/internal/session"
	"github.com/robalobadob/memory/internal/store"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPingPeriod = 30 * time.Second
)

func (s *Server) mountGame(r chi.Router) {
	r.Post("/game/new", s.handleNewGame)
	r.Get("/game/{id}", s.handleGetGame)
	r.Delete("/game/{id}", s.handleDeleteGame)
	r.Post("/game/{id}/reveal", s.handleReveal)
	r.Post("/game/{id}/reset", s.handleReset)
}

// newGameReq/gameRes payloads for POST /game/new.
type newGameReq struct {
	Rows  int  `json:"rows"`  // optional, server default otherwise
	Cols  int  `json:"cols"`  // optional, server default otherwise
	Daily bool `json:"daily"` // board of the day; ignores rows/cols
}
type gameRes struct {
	GameID string        `json:"gameId"`
	Daily  string        `json:"daily,omitempty"`
	Game   game.Snapshot `json:"game"`
}

// revealReq addresses a cell either by index or by row and column.
type revealReq struct {
	Index *int `json:"index"`
	Row   *int `json:"row"`
	Col   *int `json:"col"`
}

// wsMsg is one WebSocket frame.
type wsMsg struct {
	Type  string            `json:"type"` // "snapshot" | "event"
	Game  *game.Snapshot    `json:"game,omitempty"`
	Event *session.Envelope `json:"event,omitempty"`
}

// handleNewGame creates a session for the caller (user or anon cookie).
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}

	cfg := s.cfg.Board()
	opts := []session.Option{session.WithFinishHook(s.recordResult)}
	if req.Daily {
		now := s.now()
		opts = append(opts,
			session.WithShuffle(daily.Shuffle(now, s.cfg.DailySalt)),
			session.WithDaily(daily.DateKey(now)),
		)
	} else {
		if req.Rows > 0 {
			cfg.Rows = req.Rows
		}
		if req.Cols > 0 {
			cfg.Cols = req.Cols
		}
		if s.shuffle != nil {
			opts = append(opts, session.WithShuffle(s.shuffle))
		}
	}

	owner := s.owner(w, r)
	sess, err := session.New(uuid.NewString(), owner, cfg, s.faces, opts...)
	switch {
	case errors.Is(err, game.ErrConfiguration):
		http.Error(w, `{"error":"bad_board"}`, http.StatusBadRequest)
		return
	case errors.Is(err, game.ErrAssetShortage):
		log.Error().Err(err).Msg("new game")
		http.Error(w, `{"error":"not_enough_faces"}`, http.StatusServiceUnavailable)
		return
	case err != nil:
		log.Error().Err(err).Msg("new game")
		http.Error(w, `{"error":"create_failed"}`, http.StatusInternalServerError)
		return
	}
	s.evictOldest(r, owner)
	if err := s.store.Save(r.Context(), sess); err != nil {
		sess.Close()
		log.Error().Err(err).Msg("save game")
		http.Error(w, `{"error":"save_failed"}`, http.StatusInternalServerError)
		return
	}

	snap, err := sess.Snapshot(r.Context())
	if err != nil {
		writeSessionErr(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(gameRes{GameID: sess.ID, Daily: sess.Daily(), Game: snap})
}

// evictOldest makes room for one more game of owner under MaxGamesPerOwner.
func (s *Server) evictOldest(r *http.Request, owner session.Owner) {
	owned := s.store.OwnedBy(r.Context(), owner)
	for i := 0; i <= len(owned)-s.cfg.MaxGamesPerOwner; i++ {
		if err := s.store.Delete(r.Context(), owned[i].ID); err == nil {
			log.Info().Str("gameId", owned[i].ID).Msg("evicted game over per-player limit")
		}
	}
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	snap, err := sess.Snapshot(r.Context())
	if err != nil {
		writeSessionErr(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(gameRes{GameID: sess.ID, Daily: sess.Daily(), Game: snap})
}

func (s *Server) handleDeleteGame(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}

// handleReveal turns over one cell.
func (s *Server) handleReveal(w http.ResponseWriter, r *http.Request) {
	var req revealReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	var (
		snap game.Snapshot
		err  error
	)
	switch {
	case req.Index != nil:
		snap, err = sess.Reveal(r.Context(), *req.Index)
	case req.Row != nil && req.Col != nil:
		snap, err = sess.RevealAt(r.Context(), *req.Row, *req.Col)
	default:
		http.Error(w, `{"error":"index or row/col required"}`, http.StatusBadRequest)
		return
	}
	if err != nil {
		writeSessionErr(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(gameRes{GameID: sess.ID, Daily: sess.Daily(), Game: snap})
}

// handleReset starts a new round; on failure the old board stays in play.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	snap, err := sess.Reset(r.Context())
	if err != nil {
		writeSessionErr(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(gameRes{GameID: sess.ID, Daily: sess.Daily(), Game: snap})
}

// handleEvents upgrades to a WebSocket, sends the current board, then
// streams every event until either side goes away.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Str("gameId", sess.ID).Msg("websocket upgrade")
		return
	}
	defer conn.Close()

	events, unsubscribe := sess.Subscribe()
	defer unsubscribe()

	snap, err := sess.Snapshot(r.Context())
	if err != nil {
		return
	}
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	if err := conn.WriteJSON(wsMsg{Type: "snapshot", Game: &snap}); err != nil {
		return
	}

	// The client sends nothing; reading only surfaces close frames.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Debug().Err(err).Str("gameId", sess.ID).Msg("websocket read")
				}
				return
			}
		}
	}()

	ping := time.NewTicker(wsPingPeriod)
	defer ping.Stop()
	for {
		select {
		case env, ok := <-events:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "stream ended"),
					time.Now().Add(wsWriteWait))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(wsMsg{Type: "event", Event: &env}); err != nil {
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				return
			}
		case <-gone:
			return
		}
	}
}

// session loads the game named in the URL or writes a 404.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Warn().Err(err).Msg("load game")
		}
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
		return nil, false
	}
	return sess, true
}

// writeSessionErr maps session/loop failures to HTTP statuses.
func writeSessionErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, loop.ErrClosed):
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
	case errors.Is(err, game.ErrAssetShortage):
		http.Error(w, `{"error":"not_enough_faces"}`, http.StatusServiceUnavailable)
	default:
		log.Warn().Err(err).Msg("game call")
		http.Error(w, `{"error":"game_unavailable"}`, http.StatusServiceUnavailable)
	}
}

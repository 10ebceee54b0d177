// internal/httpserver/routes_results.go
//
// Read-only routes over recorded results, plus the face image endpoint.
//   - GET /results/leaderboard?rows=&cols=&limit= → best wins on a board size
//   - GET /results/daily?date=YYYY-MM-DD          → best wins on a board of the day
//   - GET /results/mine                           → (auth) caller's recent rounds
//   - GET /faces/{value}                          → card image, when faces are files

package httpserver

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/memory/internal/daily"
	"github.com/robalobadob/memory/internal/faces"
)

func (s *Server) mountResults(r chi.Router) {
	r.Route("/results", func(r chi.Router) {
		r.Get("/leaderboard", s.handleLeaderboard)
		r.Get("/daily", s.handleDailyLeaderboard)
		r.With(s.requireAuth()).Get("/mine", s.handleMine)
	})
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	rows, ok1 := intParam(r, "rows", s.cfg.Rows)
	cols, ok2 := intParam(r, "cols", s.cfg.Cols)
	limit, ok3 := intParam(r, "limit", 0)
	if !ok1 || !ok2 || !ok3 {
		http.Error(w, `{"error":"bad_query"}`, http.StatusBadRequest)
		return
	}
	lb, err := s.results.Leaderboard(r.Context(), rows, cols, limit)
	if err != nil {
		log.Error().Err(err).Msg("leaderboard")
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"rows": rows, "cols": cols, "entries": lb})
}

func (s *Server) handleDailyLeaderboard(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = daily.DateKey(s.now())
	} else if _, err := time.Parse("2006-01-02", date); err != nil {
		http.Error(w, `{"error":"bad_date"}`, http.StatusBadRequest)
		return
	}
	limit, ok := intParam(r, "limit", 0)
	if !ok {
		http.Error(w, `{"error":"bad_query"}`, http.StatusBadRequest)
		return
	}
	lb, err := s.results.DailyLeaderboard(r.Context(), date, limit)
	if err != nil {
		log.Error().Err(err).Msg("daily leaderboard")
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"date": date, "entries": lb})
}

func (s *Server) handleMine(w http.ResponseWriter, r *http.Request) {
	limit, ok := intParam(r, "limit", 50)
	if !ok {
		http.Error(w, `{"error":"bad_query"}`, http.StatusBadRequest)
		return
	}
	rows, err := s.results.Recent(r.Context(), currentUser(r).ID, limit)
	if err != nil {
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(rows)
}

// handleFace serves the image behind a face value. Embedded word faces have
// no image and answer 404.
func (s *Server) handleFace(w http.ResponseWriter, r *http.Request) {
	imgs, ok := s.faces.(faces.ImageSource)
	if !ok {
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
		return
	}
	path, ok := imgs.Path(chi.URLParam(r, "value"))
	if !ok {
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
		return
	}
	w.Header().Set("Cache-Control", "public, max-age=86400")
	http.ServeFile(w, r, path)
}

// intParam reads a non-negative integer query parameter.
func intParam(r *http.Request, name string, def int) (int, bool) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, true
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/robalobadob/memory/internal/session"
)

const (
	// DefaultLimit is used when the caller passes limit <= 0.
	DefaultLimit = 20
	// MaxLimit caps every list query.
	MaxLimit = 100
)

// clampLimit maps limit into [1, MaxLimit].
func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	return min(limit, MaxLimit)
}

// Store records finished rounds and answers leaderboard/history queries.
type Store struct{ db *sql.DB }

// NewStore wraps an open, migrated database.
func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// Record inserts a finished round and, for signed-in players, bumps their
// stats in the same transaction.
func (s *Store) Record(ctx context.Context, r session.Result) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO results
			(game_id, user_id, anonymous_id, board_rows, board_cols, attempts, tries_left, outcome, elapsed_ms, finished_at, daily_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.GameID, nullable(r.Owner.UserID), nullable(r.Owner.AnonID), r.Rows, r.Cols,
		r.Attempts, r.TriesLeft, r.Outcome, r.Elapsed.Milliseconds(),
		r.FinishedAt.UTC().Format(time.RFC3339), nullable(r.Daily),
	)
	if err != nil {
		return fmt.Errorf("insert result: %w", err)
	}

	if r.Owner.UserID != "" {
		if err := bumpStats(ctx, tx, r.Owner.UserID, r.Outcome == "won"); err != nil {
			return fmt.Errorf("bump stats: %w", err)
		}
	}
	return tx.Commit()
}

// bumpStats increments games played; updates wins and streak based on result.
func bumpStats(ctx context.Context, tx *sql.Tx, userID string, won bool) error {
	var gp, wins, streak int
	row := tx.QueryRowContext(ctx, `SELECT games_played, wins, streak FROM users WHERE id=?`, userID)
	if err := row.Scan(&gp, &wins, &streak); err != nil {
		return err
	}
	gp++
	if won {
		wins++
		streak++
	} else {
		streak = 0
	}
	_, err := tx.ExecContext(ctx, `UPDATE users SET games_played=?, wins=?, streak=? WHERE id=?`, gp, wins, streak, userID)
	return err
}

// LBRow is one leaderboard entry.
type LBRow struct {
	Player     string `json:"player"`
	Attempts   int    `json:"attempts"`
	ElapsedMs  int64  `json:"elapsedMs"`
	FinishedAt string `json:"finishedAt"`
}

// Leaderboard returns the best wins on a rows x cols board: fewest attempts,
// then fastest, then earliest.
func (s *Store) Leaderboard(ctx context.Context, rows, cols, limit int) ([]LBRow, error) {
	limit = clampLimit(limit)
	q, err := s.db.QueryContext(ctx, `
		SELECT COALESCE(u.username, 'guest'), r.attempts, r.elapsed_ms, r.finished_at
		FROM results r
		LEFT JOIN users u ON u.id = r.user_id
		WHERE r.board_rows=? AND r.board_cols=? AND r.outcome='won'
		ORDER BY r.attempts ASC, r.elapsed_ms ASC, r.finished_at ASC
		LIMIT ?`, rows, cols, limit,
	)
	if err != nil {
		return nil, err
	}
	return scanLB(q)
}

// DailyLeaderboard ranks wins on the board of the given date.
func (s *Store) DailyLeaderboard(ctx context.Context, date string, limit int) ([]LBRow, error) {
	limit = clampLimit(limit)
	q, err := s.db.QueryContext(ctx, `
		SELECT COALESCE(u.username, 'guest'), r.attempts, r.elapsed_ms, r.finished_at
		FROM results r
		LEFT JOIN users u ON u.id = r.user_id
		WHERE r.daily_date=? AND r.outcome='won'
		ORDER BY r.attempts ASC, r.elapsed_ms ASC, r.finished_at ASC
		LIMIT ?`, date, limit,
	)
	if err != nil {
		return nil, err
	}
	return scanLB(q)
}

func scanLB(q *sql.Rows) ([]LBRow, error) {
	defer q.Close()
	out := []LBRow{}
	for q.Next() {
		var r LBRow
		if err := q.Scan(&r.Player, &r.Attempts, &r.ElapsedMs, &r.FinishedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, q.Err()
}

// Row is one finished round in a player's history.
type Row struct {
	GameID     string `json:"gameId"`
	Rows       int    `json:"rows"`
	Cols       int    `json:"cols"`
	Attempts   int    `json:"attempts"`
	TriesLeft  int    `json:"triesLeft"`
	Outcome    string `json:"outcome"`
	ElapsedMs  int64  `json:"elapsedMs"`
	FinishedAt string `json:"finishedAt"`
	Daily      string `json:"daily,omitempty"`
}

// Recent returns a user's latest rounds, newest first.
func (s *Store) Recent(ctx context.Context, userID string, limit int) ([]Row, error) {
	limit = clampLimit(limit)
	q, err := s.db.QueryContext(ctx, `
		SELECT game_id, board_rows, board_cols, attempts, tries_left, outcome, elapsed_ms, finished_at, COALESCE(daily_date, '')
		FROM results
		WHERE user_id=?
		ORDER BY finished_at DESC, id DESC
		LIMIT ?`, userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer q.Close()

	out := []Row{}
	for q.Next() {
		var r Row
		if err := q.Scan(&r.GameID, &r.Rows, &r.Cols, &r.Attempts, &r.TriesLeft, &r.Outcome, &r.ElapsedMs, &r.FinishedAt, &r.Daily); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, q.Err()
}

// ClaimAnon transfers anonymous results to a user account after sign-in.
func (s *Store) ClaimAnon(ctx context.Context, anonID, userID string) (int64, error) {
	if anonID == "" || userID == "" {
		return 0, nil
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE results SET user_id=?, anonymous_id=NULL WHERE anonymous_id=? AND user_id IS NULL`,
		userID, anonID,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

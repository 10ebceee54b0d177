package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/memory/internal/game"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "5175", cfg.Port)
	assert.Equal(t, game.DefaultConfig(), cfg.Board())
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.False(t, cfg.Production())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("BOARD_ROWS", "4")
	t.Setenv("BOARD_COLS", "4")
	t.Setenv("TRIES_BUDGET", "3")
	t.Setenv("HIDE_DELAY", "250ms")
	t.Setenv("NODE_ENV", "production")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, game.Config{Rows: 4, Cols: 4, TriesBudget: 3, HideDelay: 250 * time.Millisecond}, cfg.Board())
	assert.True(t, cfg.Production())
}

func TestLoadRejectsOddBoard(t *testing.T) {
	t.Setenv("BOARD_ROWS", "3")
	t.Setenv("BOARD_COLS", "3")

	_, err := Load()
	assert.ErrorIs(t, err, game.ErrConfiguration)
}

func TestLoadRejectsMalformedValue(t *testing.T) {
	t.Setenv("HIDE_DELAY", "soon")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadGamesPerOwner(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.MaxGamesPerOwner)

	t.Setenv("MAX_GAMES_PER_OWNER", "0")
	_, err = Load()
	assert.Error(t, err)
}

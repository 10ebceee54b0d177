// internal/config/config.go
//
// Environment-driven configuration for the memory game server.
// Values are read from the process environment (after main has loaded any
// .env file) into Config with caarlos0/env. Every field has a default so a
// bare `go run .` starts a playable server.

package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/robalobadob/memory/internal/game"
)

// Config is the full server configuration.
type Config struct {
	Port     string `env:"PORT"      envDefault:"5175"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	DBPath   string `env:"DB_PATH"   envDefault:"./data/memory.db"`

	JWTSecret      string `env:"JWT_SECRET"       envDefault:"dev_secret_change_me"`
	JWTExpiresDays int    `env:"JWT_EXPIRES_DAYS" envDefault:"14"`
	CookieName     string `env:"COOKIE_NAME"      envDefault:"memory_token"`
	ClientOrigin   string `env:"CLIENT_ORIGIN"    envDefault:"http://localhost:5173"`
	Environment    string `env:"NODE_ENV"         envDefault:"development"`

	// FacesDir holds numbered card images; empty uses the embedded face list.
	FacesDir string `env:"FACES_DIR"`

	Rows        int           `env:"BOARD_ROWS"   envDefault:"3"`
	Cols        int           `env:"BOARD_COLS"   envDefault:"4"`
	TriesBudget int           `env:"TRIES_BUDGET" envDefault:"10"`
	HideDelay   time.Duration `env:"HIDE_DELAY"   envDefault:"1s"`

	// DailySalt keys the board-of-the-day layout.
	DailySalt string `env:"DAILY_SALT" envDefault:"local_dev_salt"`

	// MaxGamesPerOwner caps live games per player; starting another evicts
	// that player's least recently used game.
	MaxGamesPerOwner int `env:"MAX_GAMES_PER_OWNER" envDefault:"5"`

	// SessionTTL is how long an untouched game stays in memory.
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"30m"`
}

// Load parses the environment into a Config and validates the board.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Board().Validate(); err != nil {
		return Config{}, err
	}
	if cfg.SessionTTL <= 0 {
		return Config{}, fmt.Errorf("SESSION_TTL must be positive, got %s", cfg.SessionTTL)
	}
	if cfg.MaxGamesPerOwner <= 0 {
		return Config{}, fmt.Errorf("MAX_GAMES_PER_OWNER must be positive, got %d", cfg.MaxGamesPerOwner)
	}
	return cfg, nil
}

// Board returns the default game configuration.
func (c Config) Board() game.Config {
	return game.Config{
		Rows:        c.Rows,
		Cols:        c.Cols,
		TriesBudget: c.TriesBudget,
		HideDelay:   c.HideDelay,
	}
}

// Production reports whether cookies must be Secure.
func (c Config) Production() bool { return c.Environment == "production" }

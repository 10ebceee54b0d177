package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/memory/internal/config"
	"github.com/robalobadob/memory/internal/faces"
	"github.com/robalobadob/memory/internal/history"
	"github.com/robalobadob/memory/internal/httpserver"
	"github.com/robalobadob/memory/internal/store"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	src, err := faces.FromConfig(cfg.FacesDir)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load card faces")
	}

	db, err := openDB(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database")
	}
	defer db.Close()
	if err := history.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	games := store.NewMemoryStore()
	go store.Janitor(ctx, games, cfg.SessionTTL/2, cfg.SessionTTL)

	srv := httpserver.New(cfg, games, db, src)
	log.Info().Str("port", cfg.Port).Int("rows", cfg.Rows).Int("cols", cfg.Cols).Msg("starting memory server")
	if err := srv.Start(ctx, ":"+cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
	log.Info().Msg("server stopped")
}

// main.go
//
// Reference backend for the vocabulary mini-games.
// Serves the Wordle oracle, statistics, settings, cookie sessions and the
// word-chain bot over HTTP so the terminal client has something to talk to.
//
// Environment: see internal/config (PORT, DB_PATH, JWT_SECRET, ...).

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/vocabgames/internal/config"
	"github.com/robalobadob/vocabgames/internal/httpserver"
	"github.com/robalobadob/vocabgames/internal/store"
	"github.com/robalobadob/vocabgames/internal/words"
)

func main() {
	config.LoadDotEnv()
	cfg, err := config.LoadServer()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	if err := words.Init(); err != nil {
		log.Fatal().Err(err).Msg("failed to load word lists")
	}

	st, err := openStore(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("db", cfg.DBPath).Msg("failed to open store")
	}
	defer st.Close()

	srv := httpserver.New(st, httpserver.Options{
		JWTSecret:      []byte(cfg.JWTSecret),
		AccessTTL:      cfg.AccessTTL,
		RefreshTTL:     cfg.RefreshTTL,
		CookieSecure:   cfg.CookieSecure,
		ClientOrigin:   cfg.ClientOrigin,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	})

	httpSrv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	idle := make(chan struct{})
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		log.Info().Msg("shutdown signal received")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(ctx); err != nil {
			log.Warn().Err(err).Msg("http shutdown")
		}
		close(idle)
	}()

	log.Info().Str("port", cfg.Port).Bool("sqlite", cfg.DBPath != "").Msg("starting vocabgames server")
	if err := httpSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server exited")
	}
	<-idle
	log.Info().Msg("server stopped")
}

// openStore picks SQLite when a path is configured, memory otherwise.
func openStore(path string) (store.Store, error) {
	if path == "" {
		log.Warn().Msg("DB_PATH not set, using in-memory store")
		return store.NewMemoryStore(), nil
	}
	return store.OpenSQLite(path)
}

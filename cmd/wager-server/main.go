package main

import (
	"context"
	"net/http"
	"time"

	"wager-arena/internal/arena"
	"wager-arena/internal/config"
	"wager-arena/internal/logging"
	"wager-arena/internal/store"
	httptransport "wager-arena/internal/transport/http"
	"wager-arena/internal/vault"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	_ = godotenv.Load()

	app, err := config.LoadApp()
	if err != nil {
		panic(err)
	}
	if err := logging.Init(app.Log); err != nil {
		panic(err)
	}
	cfg := app.Server

	st, err := store.New(cfg.PostgresDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("store init failed")
	}
	if err := st.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("db ping failed")
	}

	v := vault.New(st)
	a := arena.New(v, st)
	a.StartJanitor(context.Background(), time.Duration(cfg.JanitorIntervalSecs)*time.Second)

	r := httptransport.NewRouter(st, cfg, a)
	httptransport.LogRoutes(r)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	log.Info().Str("addr", cfg.HTTPAddr).Msg("http listening")
	log.Fatal().Err(server.ListenAndServe()).Msg("server stopped")
}

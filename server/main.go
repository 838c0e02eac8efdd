package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (yaml, toml or json)")
	flag.Parse()

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		Logger.Fatal().Err(err).Msg("load config")
	}
	InitLogger(cfg.LogLevel, cfg.LogPretty)

	var db *DB
	var rec *Recorder
	if cfg.DBPath != "" {
		db, err = OpenDB(cfg.DBPath)
		if err != nil {
			Logger.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database")
		}
		defer db.Close()
		rec = NewRecorder(db)
		defer rec.Stop()
	} else {
		Logger.Warn().Msg("no dbPath set, results and replays are not persisted")
	}

	hub := NewHub(cfg, db, rec)
	go hub.Run()

	mux := SetupRoutes(hub)

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	server := &http.Server{Addr: cfg.Addr, Handler: mux}

	go func() {
		Logger.Info().Str("addr", cfg.Addr).Int("tickRate", cfg.TickRate).Msg("server starting")
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			Logger.Fatal().Err(err).Msg("listen")
		}
	}()

	<-stop
	Logger.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		Logger.Warn().Err(err).Msg("shutdown")
	}
}

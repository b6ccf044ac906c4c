package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"stage-battle-server/api"
	"stage-battle-server/auth"
	"stage-battle-server/catalog"
	"stage-battle-server/config"
	"stage-battle-server/lobby"
	"stage-battle-server/loghandler"
	"stage-battle-server/skill"
	"stage-battle-server/storage"
	"stage-battle-server/ws"
)

func logLevel() slog.Level {
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func main() {
	slog.SetDefault(slog.New(loghandler.NewCompactHandler(os.Stderr, logLevel())))

	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found; using environment variables", "tag", "main")
	}

	if err := run(); err != nil {
		slog.Error("server stopped", "tag", "main", "err", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	slog.Info("configuration", "tag", "main",
		"port", cfg.WSPort,
		"max_players", cfg.Rules.MaxPlayers,
		"max_heart", cfg.Rules.MaxHeart,
		"starting_hand", cfg.Rules.StartingHand,
		"card_phase_sec", cfg.Timing.CardPhaseSec,
		"action_phase_sec", cfg.Timing.ActionPhaseSec,
		"bots", len(cfg.BotProfiles))

	cat := catalog.MustLoad()
	skills := skill.NewRegistry()
	skill.RegisterAll(skills)

	history, err := storage.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	var sink lobby.ResultSink
	if history != nil {
		defer history.Close()
		sink = history
		slog.Info("match history enabled", "tag", "main")
	} else {
		slog.Info("DATABASE_URL is not set; match history disabled", "tag", "main")
	}

	validator, err := auth.NewValidator(ctx, cfg.AuthBaseURL)
	if err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	if validator == nil {
		slog.Info("AUTH_BASE_URL is not set; every client plays as a guest", "tag", "main")
	} else {
		slog.Info("auth configured", "tag", "main", "base_url", cfg.AuthBaseURL)
	}

	rooms := lobby.NewStore(cfg, cat, skills, sink)
	hub := ws.NewHub(cfg, rooms, validator)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", hub.ServeWS)
	var historyStore storage.HistoryStore
	if history != nil {
		historyStore = history
	}
	api.NewHandler(historyStore, validator, cat, skills, rooms).Register(mux)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.WSPort),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})
	g.Go(func() error {
		slog.Info("stage battle server listening", "tag", "main", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down", "tag", "main")
		rooms.CloseAll()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

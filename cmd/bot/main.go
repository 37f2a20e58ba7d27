// Package main is the entry point for the transit bot.
// Its sole responsibility is wiring dependencies together and starting the
// Telegram listener and the ops HTTP server. No business logic belongs here.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"

	"github.com/pkordes/transit-bot/internal/bot"
	"github.com/pkordes/transit-bot/internal/config"
	"github.com/pkordes/transit-bot/internal/directory"
	"github.com/pkordes/transit-bot/internal/handler"
	"github.com/pkordes/transit-bot/internal/matcher"
	"github.com/pkordes/transit-bot/internal/middleware"
	"github.com/pkordes/transit-bot/internal/repo"
	"github.com/pkordes/transit-bot/internal/service"
	"github.com/pkordes/transit-bot/internal/session"
	"github.com/pkordes/transit-bot/internal/telegram"
	"github.com/pkordes/transit-bot/internal/transit"
)

func main() {
	// --- Config -----------------------------------------------------------
	// A missing .env is fine; the environment may be set by the supervisor.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		// Use plain stderr before the logger is configured.
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Favorites store --------------------------------------------------
	// Open applies pending migrations before returning.
	store, err := repo.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to open favorites store", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("favorites store ready", "backend", store.Backend)

	// --- Transit directory ------------------------------------------------
	client, err := transit.NewClient(cfg.TransitAPIURL, cfg.UpstreamTimeout)
	if err != nil {
		slog.Error("invalid transit API URL", "error", err)
		os.Exit(1)
	}
	dir := directory.New(client, cfg.CacheTTL, directory.WithLogger(logger))

	// Warm the cache so the first user does not pay for both downloads.
	// A failure here is not fatal; the next lookup retries.
	go func() {
		if _, err := dir.Routes(ctx); err != nil {
			slog.Warn("directory warm-up failed", "resource", directory.ResourceRoutes, "error", err)
		}
		if _, err := dir.Stops(ctx); err != nil {
			slog.Warn("directory warm-up failed", "resource", directory.ResourceStops, "error", err)
		}
	}()

	// --- Bot --------------------------------------------------------------
	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		slog.Error("failed to connect to Telegram", "error", err)
		os.Exit(1)
	}
	slog.Info("authorized on Telegram", "username", api.Self.UserName)

	b := bot.New(bot.Deps{
		Gateway:   telegram.NewGateway(api),
		Directory: dir,
		Stops:     service.NewStopService(dir, matcher.New(), cfg.SearchLimit),
		Schedule:  service.NewScheduleService(client, cfg.Location, logger),
		Favorites: service.NewFavoriteService(store.Favorites),
		Sessions:  session.NewStore(cfg.SessionTTL),
		Logger:    logger,
	})
	listener := telegram.NewListener(api, b, logger)

	// --- Ops HTTP server --------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Logger → Recoverer.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger, "/healthz"))
	r.Use(chimiddleware.Recoverer)
	r.Mount("/", handler.NewServer(dir).Routes())

	// Explicit timeouts prevent slowloris and resource exhaustion attacks.
	srv := &http.Server{
		Addr:         ":" + cfg.OpsPort,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("ops server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("ops server error", "error", err)
			stop()
		}
	}()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		slog.Info("listening for updates")
		listener.Run(ctx)
	}()

	// Graceful shutdown: wait for a signal, let in-flight events finish, then
	// give in-flight HTTP requests up to 15 seconds.
	<-ctx.Done()
	slog.Info("shutting down")
	wg.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
	slog.Info("stopped")
}

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"newsweb/api"
	"newsweb/config"
	"newsweb/ident"
	"newsweb/model"
	"newsweb/web"
)

func main() {
	configPath := config.GetConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("failed to load config", "path", configPath, "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	slog.Info("starting newsweb", "config", configPath, "backend", cfg.APIBaseURL)

	client := api.NewClient(
		api.WithBaseURL(cfg.APIBaseURL),
		api.WithTimeout(time.Duration(cfg.FetchTimeoutSecs)*time.Second),
	)
	idents := ident.NewStore(cfg.IdentityPath)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Surface logins and logouts performed by other running views.
	err = idents.Watch(ctx, func(u *model.User) {
		if u == nil {
			slog.Info("identity cleared")
			return
		}
		slog.Info("identity changed", "user_id", int64(u.ID), "name", u.Name)
	})
	if err != nil {
		slog.Warn("identity watch unavailable", "error", err)
	}

	server := web.NewServer(client, idents,
		web.WithPageSize(cfg.PageSize),
		web.WithLogger(logger),
	)

	httpServer := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: server.Routes(),
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutting down")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("portal listening", "addr", cfg.ListenAddr)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	slog.Info("portal stopped")
}

func logLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Command server runs the Symvora backend: accounts and symptom analysis
// over a JSON API.
//
// Configuration comes from the environment (and an optional .env file);
// see internal/config for the variables. With DIAGNOSIS_API_KEY unset the
// server still starts and answers every analysis with general advice.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/sakif/symvora/internal/config"
	"github.com/sakif/symvora/internal/diagnosis"
	"github.com/sakif/symvora/internal/server"
)

func main() {
	cfg, err := config.LoadServer()
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := newLogger(cfg.Log)
	slog.SetDefault(logger)

	if cfg.DBPath != ":memory:" {
		dir := filepath.Dir(cfg.DBPath)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logger.Error("failed to create database directory",
				slog.String("dir", dir),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
	}

	diagnoser, err := newDiagnoser(cfg.Diagnosis, logger)
	if err != nil {
		logger.Error("failed to configure diagnosis", slog.String("error", err.Error()))
		os.Exit(1)
	}

	srv, err := server.New(server.Config{
		Port:      cfg.Port,
		DBPath:    cfg.DBPath,
		JWTSecret: cfg.JWTSecret,
		TokenTTL:  cfg.TokenTTL,
	}, logger, diagnoser)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func newLogger(cfg config.Log) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.JSON() {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func newDiagnoser(cfg config.Diagnosis, logger *slog.Logger) (diagnosis.Diagnoser, error) {
	if cfg.APIKey == "" {
		logger.Warn("DIAGNOSIS_API_KEY not set, answering with canned advice")
		return diagnosis.Canned{}, nil
	}

	d, err := diagnosis.NewOpenAI(diagnosis.OpenAIConfig{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
		Timeout: cfg.Timeout,
	})
	if err != nil {
		return nil, err
	}
	logger.Info("diagnosis model configured",
		slog.String("baseURL", cfg.BaseURL),
		slog.String("model", cfg.Model),
	)
	return d, nil
}

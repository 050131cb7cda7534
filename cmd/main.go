package main

import (
	"context"
	"errors"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/cratedig/cratedig/internal/llm"
	"github.com/cratedig/cratedig/internal/services"
	"github.com/cratedig/cratedig/internal/shared"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	var catalog services.OAuthService
	if config.Credentials.Spotify.ClientID != "" && config.Credentials.Spotify.ClientSecret != "" {
		if svc, err := services.NewSpotifyService(config.Credentials.Spotify.Map()); err == nil {
			if config.Credentials.Spotify.AccessToken != "" {
				if err := svc.OAuthenticate(context.Background(), config.Credentials.Spotify.Token()); err != nil {
					logger.Warn("stored Spotify token rejected", "error", err)
				}
			}
			catalog = svc
		}
	}

	var backend llm.Backend
	if b, err := llm.New(config.LLM); err == nil {
		backend = b
	} else {
		logger.Debug("no LLM backend available", "error", err)
	}

	runner := NewRunner(RunnerOpts{
		Config:  config,
		Catalog: catalog,
		Backend: backend,
		Logger:  logger,
	})

	app := &cli.Command{
		Name:     "cratedig",
		Usage:    "Sort a Spotify library into DJ crates with an LLM",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		err_ := errors.Unwrap(err)
		if errors.Is(err_, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		} else {
			logger.Fatalf("application error: %v", err)
		}
	}
}

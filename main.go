package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/alyssonw2/BD-AJ/auth"
	"github.com/alyssonw2/BD-AJ/collection"
	"github.com/alyssonw2/BD-AJ/config"
	"github.com/alyssonw2/BD-AJ/diskstore"
	"github.com/alyssonw2/BD-AJ/httpapi"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ---------------------------

func setupLogging(cfg config.ConfigMap) {
	if cfg.PrettyLogOutput {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	// ---------------------------
	// Default level is info, unless debug flag is present
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if cfg.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		log.Debug().Interface("config", cfg.Redacted()).Msg("Environment config")
	}
	// ---------------------------
	log.Debug().Msg("Debug mode enabled")
}

// backupLoop checks once a minute, the disk store decides whether the newest
// backup is old enough to be replaced.
func backupLoop(ds diskstore.DiskStore, cfg auth.AuthConfig) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		if err := ds.Backup(cfg.BackupFrequency, cfg.BackupCount); err != nil {
			log.Error().Err(err).Str("path", ds.Path()).Msg("backupLoop")
		}
		<-ticker.C
	}
}

// ---------------------------

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	setupLogging(cfg)
	log.Info().Str("version", "1.0.0").Msg("Starting bdaj")
	// ---------------------------
	// Setup collection store
	store, err := collection.NewStore(cfg.Store)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create collection store")
	}
	// ---------------------------
	// Setup user registry
	userDiskStore, err := diskstore.Open(filepath.Join(store.RootDir(), "users.db"))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open user store")
	}
	users, err := auth.NewUserStore(userDiskStore)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create user store")
	}
	userCount, err := users.Count()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to count users")
	}
	log.Info().Str("path", userDiskStore.Path()).Int("users", userCount).Msg("User store ready")
	if cfg.Auth.BackupCount > 0 {
		go backupLoop(userDiskStore, cfg.Auth)
	}
	tokens, err := auth.NewTokenIssuer(cfg.Auth)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create token issuer")
	}
	// ---------------------------
	httpServer := httpapi.RunHTTPServer(cfg.HttpApi, store, users, tokens)
	// ---------------------------
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	sig := <-quit
	log.Info().Str("signal", sig.String()).Msg("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("HTTP server forced to shut")
	}
	cancel()
	// ---------------------------
	// In flight writes have finished once the server is down
	if err := userDiskStore.Close(); err != nil {
		log.Error().Err(err).Msg("User store did not close gracefully")
	}
}

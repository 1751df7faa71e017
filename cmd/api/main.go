// Package main runs the PageGuard server: the Facebook webhook endpoint
// that moderates page comments and messages, and the admin API behind the
// dashboard.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/yasinhessnawi1/pageguard/internal/config"
	"github.com/yasinhessnawi1/pageguard/internal/constants"
	"github.com/yasinhessnawi1/pageguard/internal/server"
	"github.com/yasinhessnawi1/pageguard/internal/utils"
)

// Set with -ldflags "-X main.version=..." at build time
var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	configPath := flag.String("config", "./configs/config.yaml", "Path to configuration file")
	showVersion := flag.Bool("version", false, "Print version information and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("pageguard %s (commit %s, built %s)\n", version, commit, buildDate)
		return
	}

	// Until the configured logger is built
	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()

	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("No .env file loaded")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", *configPath).Msg("Failed to load configuration")
	}
	if version != "dev" {
		cfg.App.Version = version
	}

	utils.InitLogger(cfg)
	utils.InitValidator()

	log.Info().
		Str("commit", commit).
		Str("webhook_path", constants.WebhookPath).
		Msg("Starting PageGuard")

	srv, err := server.NewServer(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create server")
	}

	// Returns after SIGINT or SIGTERM once shutdown has finished
	if err := srv.Start(); err != nil {
		log.Fatal().Err(err).Msg("Server stopped with an error")
	}
}

// Package main runs the development seeder. It connects the pages listed in a
// YAML fixture and prints a dashboard token for each owner so the admin API
// can be exercised locally.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/yasinhessnawi1/pageguard/internal/auth"
	"github.com/yasinhessnawi1/pageguard/internal/config"
	"github.com/yasinhessnawi1/pageguard/internal/database"
	"github.com/yasinhessnawi1/pageguard/internal/repository"
	"github.com/yasinhessnawi1/pageguard/internal/service"
	"github.com/yasinhessnawi1/pageguard/internal/utils"
	"github.com/yasinhessnawi1/pageguard/migrations"
	"github.com/yasinhessnawi1/pageguard/scripts"
)

func main() {
	var (
		configPath  string
		fixturePath string
		tokenTTL    time.Duration
	)

	flag.StringVar(&configPath, "config", "./configs/config.yaml", "Path to configuration file")
	flag.StringVar(&fixturePath, "fixture", "./configs/seed_pages.yaml", "Path to the page fixture")
	flag.DurationVar(&tokenTTL, "token-ttl", 24*time.Hour, "Lifetime of the printed dashboard tokens")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	utils.InitLogger(cfg)

	if cfg.App.IsProduction() {
		log.Fatal().Msg("Refusing to seed a production database")
	}

	if err := run(cfg, fixturePath, tokenTTL); err != nil {
		log.Fatal().Err(err).Msg("Seeding failed")
	}
}

func run(cfg *config.AppConfig, fixturePath string, tokenTTL time.Duration) error {
	ctx := context.Background()

	fixture, err := scripts.LoadFixture(fixturePath)
	if err != nil {
		return err
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := migrations.NewMigrator(db).RunMigrations(ctx); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	tokenKey, err := utils.DeriveTokenKey(cfg.PageTokenSecret())
	if err != nil {
		return fmt.Errorf("failed to derive page token key: %w", err)
	}

	pages := service.NewPageService(
		repository.NewPageRepository(db),
		tokenKey,
		service.DefaultPageSettings(cfg.PageDefaults),
	)

	if err := scripts.NewSeeder(db, pages, fixture).SeedDatabase(ctx); err != nil {
		return err
	}

	jwtService := auth.NewJWTService(&cfg.JWT)
	printed := map[int64]bool{}
	for _, page := range fixture.Pages {
		if printed[page.OwnerID] {
			continue
		}
		printed[page.OwnerID] = true

		token, err := jwtService.IssueToken(page.OwnerID, tokenTTL)
		if err != nil {
			return fmt.Errorf("failed to issue token for owner %d: %w", page.OwnerID, err)
		}
		fmt.Printf("owner %d: %s\n", page.OwnerID, token)
	}

	return nil
}

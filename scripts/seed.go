// Package scripts provides utility scripts for database and system management.
//
// This package implements development seeding: connected pages are read from a
// YAML fixture and created through the page service, so access tokens are
// encrypted exactly as they are for pages connected from the dashboard. Like
// migrations, executed seeds are tracked so each one only runs once.
package scripts

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/yasinhessnawi1/pageguard/internal/constants"
	"github.com/yasinhessnawi1/pageguard/internal/database"
	"github.com/yasinhessnawi1/pageguard/internal/models"
	"github.com/yasinhessnawi1/pageguard/internal/utils"
)

// PageFixture describes one page to connect
type PageFixture struct {
	PageID      string   `yaml:"page_id"`
	PageName    string   `yaml:"page_name"`
	AccessToken string   `yaml:"access_token"`
	OwnerID     int64    `yaml:"owner_id"`
	BotEnabled  bool     `yaml:"bot_enabled"`
	BannedWords []string `yaml:"banned_words"`
}

// Fixture is the content of a seed file
type Fixture struct {
	Pages []PageFixture `yaml:"pages"`
}

// LoadFixture reads and validates a seed file.
//
// Parameters:
//   - path: The path of the YAML file
//
// Returns:
//   - The parsed fixture
//   - An error if the file cannot be read or a page is incomplete
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var fixture Fixture
	if err := yaml.Unmarshal(data, &fixture); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}

	for i, page := range fixture.Pages {
		if page.PageID == "" || page.AccessToken == "" || page.OwnerID <= 0 {
			return nil, fmt.Errorf("seed page %d: page_id, access_token and owner_id are required", i)
		}
	}

	return &fixture, nil
}

// PageConnector is the part of the page service the seeder drives
type PageConnector interface {
	Connect(ctx context.Context, ownerID int64, req *models.ConnectPageRequest) (*models.Page, error)
	SetBotEnabled(ctx context.Context, ownerID int64, pageID string, enabled bool) (*models.Page, error)
	AddBannedWords(ctx context.Context, ownerID int64, pageID string, words []string) ([]string, error)
}

// Seeder handles database seeding.
type Seeder struct {
	db      *database.Pool
	pages   PageConnector
	fixture *Fixture
}

// NewSeeder creates a new seeder.
//
// Parameters:
//   - db: A database connection pool used to track executed seeds
//   - pages: The page service that creates the pages
//   - fixture: The pages to create
//
// Returns:
//   - *Seeder: A configured seeder
func NewSeeder(db *database.Pool, pages PageConnector, fixture *Fixture) *Seeder {
	return &Seeder{
		db:      db,
		pages:   pages,
		fixture: fixture,
	}
}

// SeedDatabase runs every seed that has not been executed yet.
func (s *Seeder) SeedDatabase(ctx context.Context) error {
	log.Info().Msg("Seeding database")
	startTime := time.Now()

	if err := s.createSeedsTable(ctx); err != nil {
		return fmt.Errorf("failed to create seeds table: %w", err)
	}

	executedSeeds, err := s.getExecutedSeeds(ctx)
	if err != nil {
		return fmt.Errorf("failed to get executed seeds: %w", err)
	}

	seeds := []struct {
		Name     string
		SeedFunc func(ctx context.Context) error
	}{
		{"dev_pages", s.seedPages},
	}

	for _, seed := range seeds {
		if executedSeeds[seed.Name] {
			log.Debug().Str("seed", seed.Name).Msg("Seed already executed")
			continue
		}
		log.Info().Str("seed", seed.Name).Msg("Running seed")
		if err := s.runSeed(ctx, seed.Name, seed.SeedFunc); err != nil {
			return err
		}
	}

	log.Info().
		Dur("duration", time.Since(startTime)).
		Msg("Database seeding completed")

	return nil
}

// createSeedsTable creates the seeds tracking table if it doesn't exist
func (s *Seeder) createSeedsTable(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS seeds (
			name VARCHAR(255) PRIMARY KEY,
			executed_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`
	_, err := s.db.ExecContext(ctx, query)
	return err
}

// getExecutedSeeds returns the names of the executed seeds
func (s *Seeder) getExecutedSeeds(ctx context.Context) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM seeds`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Error().Err(closeErr).Msg("failed to close rows")
		}
	}()

	seeds := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		seeds[name] = true
	}

	return seeds, rows.Err()
}

// runSeed runs a seed and records it once it succeeded
func (s *Seeder) runSeed(ctx context.Context, name string, seedFunc func(ctx context.Context) error) error {
	if err := seedFunc(ctx); err != nil {
		return fmt.Errorf("seed %s failed: %w", name, err)
	}

	if _, err := s.db.ExecContext(ctx, `INSERT INTO seeds (name) VALUES ($1)`, name); err != nil {
		return fmt.Errorf("failed to record seed: %w", err)
	}

	return nil
}

// seedPages connects the fixture pages. Pages that are already connected are left alone.
func (s *Seeder) seedPages(ctx context.Context) error {
	if s.fixture == nil {
		return nil
	}

	created := 0
	for _, fixture := range s.fixture.Pages {
		name := fixture.PageName
		if name == "" {
			name = fixture.PageID
		}

		_, err := s.pages.Connect(ctx, fixture.OwnerID, &models.ConnectPageRequest{
			PageID:      fixture.PageID,
			PageName:    name,
			AccessToken: fixture.AccessToken,
		})
		if err != nil {
			if utils.IsDuplicateError(err) {
				log.Info().Str(constants.LogFieldPageID, fixture.PageID).Msg("Seed page already connected")
				continue
			}
			return fmt.Errorf("failed to connect page %s: %w", fixture.PageID, err)
		}

		if len(fixture.BannedWords) > 0 {
			if _, err := s.pages.AddBannedWords(ctx, fixture.OwnerID, fixture.PageID, fixture.BannedWords); err != nil {
				return fmt.Errorf("failed to add banned words to page %s: %w", fixture.PageID, err)
			}
		}

		if fixture.BotEnabled {
			if _, err := s.pages.SetBotEnabled(ctx, fixture.OwnerID, fixture.PageID, true); err != nil {
				return fmt.Errorf("failed to enable bot on page %s: %w", fixture.PageID, err)
			}
		}

		created++
	}

	log.Info().
		Int("fixture_pages", len(s.fixture.Pages)).
		Int("connected_pages", created).
		Msg("Page seeding completed")

	return nil
}

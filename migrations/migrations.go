// Package migrations creates and evolves the PostgreSQL schema.
//
// Executed migrations are tracked in the schema_migrations table so each one
// runs exactly once. A migration whose table already exists is recorded
// without running, which keeps the migrator safe on databases created by hand.
package migrations

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/yasinhessnawi1/pageguard/internal/constants"
	"github.com/yasinhessnawi1/pageguard/internal/database"
)

// Migration represents a database migration.
type Migration struct {
	// Name is a unique identifier for the migration
	Name string
	// Description is a human-readable explanation of what the migration does
	Description string
	// TableName is the table affected by this migration, used for existence checks
	TableName string
	// RunSQL executes the migration inside a transaction
	RunSQL func(ctx context.Context, tx *sql.Tx) error
}

// ColumnAddition describes a column added to an existing table after its
// creating migration shipped.
type ColumnAddition struct {
	TableName  string
	ColumnName string
	Definition string
}

// Migrator handles database migrations.
type Migrator struct {
	db *database.Pool
}

// NewMigrator creates a new migrator.
func NewMigrator(db *database.Pool) *Migrator {
	return &Migrator{
		db: db,
	}
}

// RunMigrations runs all pending database migrations and column additions.
func (m *Migrator) RunMigrations(ctx context.Context) error {
	log.Info().Msg("Running database migrations")
	startTime := time.Now()

	if err := m.createMigrationsTable(ctx); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	executedMigrations, err := m.getExecutedMigrations(ctx)
	if err != nil {
		return fmt.Errorf("failed to get executed migrations: %w", err)
	}

	migrations := GetMigrations()
	migrationsRun := 0
	migrationsRecorded := 0

	for _, migration := range migrations {
		if executedMigrations[migration.Name] {
			continue
		}

		exists, err := m.tableExists(ctx, migration.TableName)
		if err != nil {
			return fmt.Errorf("failed to check if table %s exists: %w", migration.TableName, err)
		}

		if exists {
			log.Info().
				Str("migration", migration.Name).
				Str("table", migration.TableName).
				Msg("Table already exists, recording migration as completed")

			if err := m.recordMigration(ctx, migration.Name, migration.Description); err != nil {
				return err
			}
			migrationsRecorded++
			continue
		}

		log.Info().
			Str("migration", migration.Name).
			Str("table", migration.TableName).
			Msg("Running migration")

		if err := m.runMigration(ctx, migration); err != nil {
			return err
		}
		migrationsRun++
	}

	for _, addition := range GetColumnAdditions() {
		if err := m.ensureColumn(ctx, addition); err != nil {
			return err
		}
	}

	log.Info().
		Int("migrations_run", migrationsRun).
		Int("migrations_recorded", migrationsRecorded).
		Int("total_migrations", len(migrations)).
		Dur("duration", time.Since(startTime)).
		Msg("Database migrations completed")

	return nil
}

// createMigrationsTable creates the table tracking executed migrations
func (m *Migrator) createMigrationsTable(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS ` + constants.TableMigrations + ` (
			name VARCHAR(255) PRIMARY KEY,
			description TEXT,
			executed_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`
	_, err := m.db.ExecContext(ctx, query)
	return err
}

// getExecutedMigrations returns the names of executed migrations
func (m *Migrator) getExecutedMigrations(ctx context.Context) (map[string]bool, error) {
	query := `SELECT name FROM ` + constants.TableMigrations
	rows, err := m.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Error().Err(closeErr).Msg("failed to close rows")
		}
	}()

	migrations := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		migrations[name] = true
	}

	return migrations, rows.Err()
}

// runMigration runs a migration and records it in the same transaction
func (m *Migrator) runMigration(ctx context.Context, migration Migration) error {
	return m.db.Transaction(ctx, func(tx *sql.Tx) error {
		if err := migration.RunSQL(ctx, tx); err != nil {
			return fmt.Errorf("migration %s failed: %w", migration.Name, err)
		}

		query := `INSERT INTO ` + constants.TableMigrations + ` (name, description) VALUES ($1, $2)`
		if _, err := tx.ExecContext(ctx, query, migration.Name, migration.Description); err != nil {
			return fmt.Errorf("failed to record migration: %w", err)
		}

		return nil
	})
}

// recordMigration records a migration as completed without running the SQL
func (m *Migrator) recordMigration(ctx context.Context, name, description string) error {
	query := `INSERT INTO ` + constants.TableMigrations + ` (name, description) VALUES ($1, $2)`
	if _, err := m.db.ExecContext(ctx, query, name, description); err != nil {
		return fmt.Errorf("failed to record migration: %w", err)
	}
	return nil
}

// tableExists checks if a table exists in the current schema
func (m *Migrator) tableExists(ctx context.Context, tableName string) (bool, error) {
	query := `
        SELECT EXISTS(SELECT 1
        FROM information_schema.tables
        WHERE table_schema = current_schema()
        AND table_name = $1)
    `
	var exists bool
	err := m.db.QueryRowContext(ctx, query, tableName).Scan(&exists)
	return exists, err
}

// ensureColumn adds a column to an existing table when it is missing
func (m *Migrator) ensureColumn(ctx context.Context, addition ColumnAddition) error {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM information_schema.columns
			WHERE table_schema = current_schema()
			AND table_name = $1
			AND column_name = $2
		)
	`

	var columnExists bool
	if err := m.db.QueryRowContext(ctx, query, addition.TableName, addition.ColumnName).Scan(&columnExists); err != nil {
		return fmt.Errorf("failed to check if %s.%s exists: %w", addition.TableName, addition.ColumnName, err)
	}

	if columnExists {
		return nil
	}

	log.Info().
		Str("table", addition.TableName).
		Str("column", addition.ColumnName).
		Msg("Adding missing column")

	alterQuery := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", addition.TableName, addition.ColumnName, addition.Definition)
	if _, err := m.db.ExecContext(ctx, alterQuery); err != nil {
		return fmt.Errorf("failed to add %s.%s: %w", addition.TableName, addition.ColumnName, err)
	}

	return nil
}

// GetMigrations returns all migrations in the order they must run.
func GetMigrations() []Migration {
	return []Migration{
		createPagesTable(),
		createPageBannedWordsTable(),
		createBlockedUsersTable(),
		createActionLogsTable(),
		createCommentsTable(),
		createConversationsTable(),
		createMessagesTable(),
	}
}

// GetColumnAdditions returns the columns added after the first schema release.
func GetColumnAdditions() []ColumnAddition {
	return []ColumnAddition{
		{
			TableName:  constants.TablePages,
			ColumnName: "welcome_mode",
			Definition: "VARCHAR(20) NOT NULL DEFAULT 'every_message'",
		},
		{
			TableName:  constants.TableBlockedUsers,
			ColumnName: "notes",
			Definition: "TEXT NOT NULL DEFAULT ''",
		},
	}
}

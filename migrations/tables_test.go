package migrations

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

// createMockDBAndTx creates a mock database with an open transaction
func createMockDBAndTx(t *testing.T) (*sql.Tx, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create mock database: %v", err)
	}

	mock.ExpectBegin()
	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("Failed to create transaction: %v", err)
	}

	cleanup := func() {
		_ = tx.Rollback()
		db.Close()
	}

	return tx, mock, cleanup
}

func TestTableMigrations(t *testing.T) {
	tests := []struct {
		migration  Migration
		name       string
		table      string
		statements []string
	}{
		{
			migration:  createPagesTable(),
			name:       "create_pages_table",
			table:      "pages",
			statements: []string{"CREATE TABLE IF NOT EXISTS pages", "CREATE INDEX IF NOT EXISTS idx_pages_owner_id"},
		},
		{
			migration:  createPageBannedWordsTable(),
			name:       "create_page_banned_words_table",
			table:      "page_banned_words",
			statements: []string{"CREATE TABLE IF NOT EXISTS page_banned_words"},
		},
		{
			migration: createBlockedUsersTable(),
			name:      "create_blocked_users_table",
			table:     "blocked_users",
			statements: []string{
				"CREATE TABLE IF NOT EXISTS blocked_users",
				"CREATE UNIQUE INDEX IF NOT EXISTS idx_blocked_users_active ON blocked_users\\(user_id, page_id\\) WHERE is_active",
				"CREATE INDEX IF NOT EXISTS idx_blocked_users_page",
			},
		},
		{
			migration: createActionLogsTable(),
			name:      "create_action_logs_table",
			table:     "action_logs",
			statements: []string{
				"CREATE TABLE IF NOT EXISTS action_logs",
				"CREATE INDEX IF NOT EXISTS idx_action_logs_page_created",
				"CREATE INDEX IF NOT EXISTS idx_action_logs_type",
				"CREATE INDEX IF NOT EXISTS idx_action_logs_created",
			},
		},
		{
			migration:  createCommentsTable(),
			name:       "create_comments_table",
			table:      "comments",
			statements: []string{"CREATE TABLE IF NOT EXISTS comments", "CREATE INDEX IF NOT EXISTS idx_comments_page"},
		},
		{
			migration:  createConversationsTable(),
			name:       "create_conversations_table",
			table:      "conversations",
			statements: []string{"CREATE TABLE IF NOT EXISTS conversations", "CREATE INDEX IF NOT EXISTS idx_conversations_page"},
		},
		{
			migration:  createMessagesTable(),
			name:       "create_messages_table",
			table:      "messages",
			statements: []string{"CREATE TABLE IF NOT EXISTS messages", "CREATE INDEX IF NOT EXISTS idx_messages_conversation"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx, mock, cleanup := createMockDBAndTx(t)
			defer cleanup()

			assert.Equal(t, tt.name, tt.migration.Name)
			assert.Equal(t, tt.table, tt.migration.TableName)

			for _, statement := range tt.statements {
				mock.ExpectExec(statement).WillReturnResult(sqlmock.NewResult(0, 0))
			}

			err := tt.migration.RunSQL(context.Background(), tx)

			assert.NoError(t, err)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestExecStatementsStopsOnError(t *testing.T) {
	tx, mock, cleanup := createMockDBAndTx(t)
	defer cleanup()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS first").WillReturnError(errors.New("boom"))

	err := execStatements(context.Background(), tx,
		"CREATE TABLE IF NOT EXISTS first (id INT)",
		"CREATE TABLE IF NOT EXISTS second (id INT)",
	)

	assert.EqualError(t, err, "boom")
	assert.NoError(t, mock.ExpectationsWereMet())
}

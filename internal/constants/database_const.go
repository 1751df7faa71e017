// Package constants provides shared constant values used throughout the application.
//
// The database_const.go file defines table, column and index names. Repositories
// and migrations build their SQL from these names so a schema change touches a
// single place.
package constants

// Table Names define the names of database tables used in the application.
const (
	// TablePages stores connected Facebook pages, their tokens and moderation settings.
	TablePages = "pages"

	// TablePageBannedWords stores the banned word list of each page.
	TablePageBannedWords = "page_banned_words"

	// TableBlockedUsers stores block records, active and historical.
	TableBlockedUsers = "blocked_users"

	// TableActionLogs stores the append-only audit trail of bot actions.
	TableActionLogs = "action_logs"

	// TableComments stores comments seen on page posts.
	TableComments = "comments"

	// TableConversations stores one Messenger thread per page and user.
	TableConversations = "conversations"

	// TableMessages stores individual Messenger messages.
	TableMessages = "messages"

	// TableMigrations tracks which schema migrations have been applied.
	TableMigrations = "schema_migrations"
)

// Common Column Names define frequently used database column names.
const (
	ColumnPageID         = "page_id"
	ColumnUserID         = "user_id"
	ColumnUserName       = "user_name"
	ColumnOwnerID        = "owner_id"
	ColumnIsActive       = "is_active"
	ColumnBotEnabled     = "bot_enabled"
	ColumnAccessToken    = "access_token"
	ColumnWord           = "word"
	ColumnReason         = "reason"
	ColumnBlockedAt      = "blocked_at"
	ColumnType           = "type"
	ColumnStatus         = "status"
	ColumnCreatedAt      = "created_at"
	ColumnLogID          = "log_id"
	ColumnCommentID      = "comment_id"
	ColumnConversationID = "conversation_id"
)

// Index Names define database index names.
const (
	// IndexActiveBlock enforces at most one active block per (user, page).
	IndexActiveBlock = "idx_blocked_users_active"
)

// PostgreSQL connection string parameters
const (
	PostgresSSLRequire = "sslmode=require connect_timeout=15"
	PostgresSSLDisable = "sslmode=disable connect_timeout=15"
)

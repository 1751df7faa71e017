package migrations

import (
	"context"
	"database/sql"

	"github.com/yasinhessnawi1/pageguard/internal/constants"
)

// execStatements runs the statements of a migration in order
func execStatements(ctx context.Context, tx *sql.Tx, statements ...string) error {
	for _, statement := range statements {
		if _, err := tx.ExecContext(ctx, statement); err != nil {
			return err
		}
	}
	return nil
}

// createPagesTable creates the pages table
func createPagesTable() Migration {
	return Migration{
		Name:        "create_pages_table",
		Description: "Creates the pages table",
		TableName:   constants.TablePages,
		RunSQL: func(ctx context.Context, tx *sql.Tx) error {
			return execStatements(ctx, tx,
				`CREATE TABLE IF NOT EXISTS pages (
					page_id VARCHAR(64) PRIMARY KEY,
					page_name VARCHAR(255) NOT NULL,
					access_token TEXT NOT NULL,
					owner_id BIGINT NOT NULL,
					is_active BOOLEAN NOT NULL DEFAULT FALSE,
					bot_enabled BOOLEAN NOT NULL DEFAULT FALSE,
					welcome_message TEXT NOT NULL DEFAULT '',
					auto_reply_message TEXT NOT NULL DEFAULT '',
					comment_auto_reply TEXT NOT NULL DEFAULT '',
					auto_delete_bad_comments BOOLEAN NOT NULL DEFAULT FALSE,
					welcome_mode VARCHAR(20) NOT NULL DEFAULT 'every_message',
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				)`,
				`CREATE INDEX IF NOT EXISTS idx_pages_owner_id ON pages(owner_id)`,
			)
		},
	}
}

// createPageBannedWordsTable creates the page_banned_words table
func createPageBannedWordsTable() Migration {
	return Migration{
		Name:        "create_page_banned_words_table",
		Description: "Creates the page_banned_words table",
		TableName:   constants.TablePageBannedWords,
		RunSQL: func(ctx context.Context, tx *sql.Tx) error {
			return execStatements(ctx, tx,
				`CREATE TABLE IF NOT EXISTS page_banned_words (
					banned_word_id BIGSERIAL PRIMARY KEY,
					page_id VARCHAR(64) NOT NULL,
					word VARCHAR(100) NOT NULL,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					CONSTRAINT fk_banned_word_page FOREIGN KEY (page_id) REFERENCES pages(page_id) ON DELETE CASCADE,
					CONSTRAINT idx_page_word UNIQUE (page_id, word)
				)`,
			)
		},
	}
}

// createBlockedUsersTable creates the blocked_users table. The partial unique
// index allows any number of lifted blocks but one active block per pair.
func createBlockedUsersTable() Migration {
	return Migration{
		Name:        "create_blocked_users_table",
		Description: "Creates the blocked_users table",
		TableName:   constants.TableBlockedUsers,
		RunSQL: func(ctx context.Context, tx *sql.Tx) error {
			return execStatements(ctx, tx,
				`CREATE TABLE IF NOT EXISTS blocked_users (
					blocked_user_id BIGSERIAL PRIMARY KEY,
					user_id VARCHAR(64) NOT NULL,
					user_name VARCHAR(255) NOT NULL DEFAULT '',
					page_id VARCHAR(64) NOT NULL,
					reason VARCHAR(20) NOT NULL CHECK (reason IN ('angry_reaction', 'bad_comment', 'manual_block')),
					blocked_by BIGINT NOT NULL DEFAULT 0,
					is_active BOOLEAN NOT NULL DEFAULT TRUE,
					blocked_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					unblocked_at TIMESTAMPTZ,
					notes TEXT NOT NULL DEFAULT '',
					CONSTRAINT fk_blocked_user_page FOREIGN KEY (page_id) REFERENCES pages(page_id) ON DELETE CASCADE
				)`,
				`CREATE UNIQUE INDEX IF NOT EXISTS `+constants.IndexActiveBlock+` ON blocked_users(user_id, page_id) WHERE is_active`,
				`CREATE INDEX IF NOT EXISTS idx_blocked_users_page ON blocked_users(page_id, blocked_at DESC)`,
			)
		},
	}
}

// createActionLogsTable creates the action_logs table. page_id carries no
// foreign key because webhook deliveries for unknown pages are logged too.
func createActionLogsTable() Migration {
	return Migration{
		Name:        "create_action_logs_table",
		Description: "Creates the action_logs table",
		TableName:   constants.TableActionLogs,
		RunSQL: func(ctx context.Context, tx *sql.Tx) error {
			return execStatements(ctx, tx,
				`CREATE TABLE IF NOT EXISTS action_logs (
					log_id BIGSERIAL PRIMARY KEY,
					type VARCHAR(30) NOT NULL CHECK (type IN ('comment_reply', 'message_sent', 'comment_deleted', 'user_blocked', 'user_unblocked', 'webhook_received')),
					page_id VARCHAR(64) NOT NULL,
					user_id VARCHAR(64) NOT NULL DEFAULT '',
					user_name VARCHAR(255) NOT NULL DEFAULT '',
					content TEXT NOT NULL DEFAULT '',
					metadata JSONB NOT NULL DEFAULT '{}',
					status VARCHAR(10) NOT NULL DEFAULT 'success' CHECK (status IN ('success', 'error', 'pending')),
					error_message TEXT NOT NULL DEFAULT '',
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				)`,
				`CREATE INDEX IF NOT EXISTS idx_action_logs_page_created ON action_logs(page_id, created_at DESC)`,
				`CREATE INDEX IF NOT EXISTS idx_action_logs_type ON action_logs(type)`,
				`CREATE INDEX IF NOT EXISTS idx_action_logs_created ON action_logs(created_at)`,
			)
		},
	}
}

// createCommentsTable creates the comments table
func createCommentsTable() Migration {
	return Migration{
		Name:        "create_comments_table",
		Description: "Creates the comments table",
		TableName:   constants.TableComments,
		RunSQL: func(ctx context.Context, tx *sql.Tx) error {
			return execStatements(ctx, tx,
				`CREATE TABLE IF NOT EXISTS comments (
					id BIGSERIAL PRIMARY KEY,
					comment_id VARCHAR(128) NOT NULL,
					page_id VARCHAR(64) NOT NULL,
					post_id VARCHAR(128) NOT NULL DEFAULT '',
					user_id VARCHAR(64) NOT NULL DEFAULT '',
					user_name VARCHAR(255) NOT NULL DEFAULT '',
					content TEXT NOT NULL DEFAULT '',
					status VARCHAR(10) NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'approved', 'rejected', 'deleted')),
					reply TEXT NOT NULL DEFAULT '',
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					CONSTRAINT idx_comment_id UNIQUE (comment_id)
				)`,
				`CREATE INDEX IF NOT EXISTS idx_comments_page ON comments(page_id, created_at DESC)`,
			)
		},
	}
}

// createConversationsTable creates the conversations table
func createConversationsTable() Migration {
	return Migration{
		Name:        "create_conversations_table",
		Description: "Creates the conversations table",
		TableName:   constants.TableConversations,
		RunSQL: func(ctx context.Context, tx *sql.Tx) error {
			return execStatements(ctx, tx,
				`CREATE TABLE IF NOT EXISTS conversations (
					id BIGSERIAL PRIMARY KEY,
					conversation_id VARCHAR(160) NOT NULL,
					page_id VARCHAR(64) NOT NULL,
					user_id VARCHAR(64) NOT NULL,
					user_name VARCHAR(255) NOT NULL DEFAULT '',
					status VARCHAR(10) NOT NULL DEFAULT 'unread' CHECK (status IN ('unread', 'read', 'replied', 'archived')),
					last_message TEXT NOT NULL DEFAULT '',
					unread_count INTEGER NOT NULL DEFAULT 0,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					CONSTRAINT idx_conversation_id UNIQUE (conversation_id)
				)`,
				`CREATE INDEX IF NOT EXISTS idx_conversations_page ON conversations(page_id, updated_at DESC)`,
			)
		},
	}
}

// createMessagesTable creates the messages table
func createMessagesTable() Migration {
	return Migration{
		Name:        "create_messages_table",
		Description: "Creates the messages table",
		TableName:   constants.TableMessages,
		RunSQL: func(ctx context.Context, tx *sql.Tx) error {
			return execStatements(ctx, tx,
				`CREATE TABLE IF NOT EXISTS messages (
					message_id BIGSERIAL PRIMARY KEY,
					conversation_id VARCHAR(160) NOT NULL,
					sender VARCHAR(10) NOT NULL CHECK (sender IN ('user', 'bot')),
					content TEXT NOT NULL DEFAULT '',
					external_id VARCHAR(128) NOT NULL DEFAULT '',
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					CONSTRAINT fk_message_conversation FOREIGN KEY (conversation_id) REFERENCES conversations(conversation_id) ON DELETE CASCADE
				)`,
				`CREATE INDEX IF NOT EXISTS idx_messages_conversation ON messages(conversation_id, created_at)`,
			)
		},
	}
}

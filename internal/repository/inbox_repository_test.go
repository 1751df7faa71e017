package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yasinhessnawi1/pageguard/internal/database"
	"github.com/yasinhessnawi1/pageguard/internal/models"
	"github.com/yasinhessnawi1/pageguard/internal/repository"
	"github.com/yasinhessnawi1/pageguard/internal/utils"
)

func newInboxMock(t *testing.T) (*database.Pool, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &database.Pool{DB: db}, mock
}

func TestCommentRepository_Upsert(t *testing.T) {
	pool, mock := newInboxMock(t)
	repo := repository.NewCommentRepository(pool)

	comment := models.NewComment("C1", "P1", "P1_POST", "U1", "Bob", "nice post")

	mock.ExpectQuery("INSERT INTO comments .* ON CONFLICT \\(comment_id\\) DO UPDATE .* RETURNING id, status").
		WithArgs("C1", "P1", "P1_POST", "U1", "Bob", "nice post", "pending", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status"}).AddRow(int64(5), "approved"))

	err := repo.Upsert(context.Background(), comment)

	require.NoError(t, err)
	assert.Equal(t, int64(5), comment.ID)
	assert.Equal(t, models.CommentStatusApproved, comment.Status, "stored status wins over the new record")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentRepository_UpdateStatus(t *testing.T) {
	pool, mock := newInboxMock(t)
	repo := repository.NewCommentRepository(pool)

	mock.ExpectExec("UPDATE comments SET status = \\$1, reply = \\$2, updated_at = NOW\\(\\) WHERE comment_id = \\$3").
		WithArgs("approved", "Thanks!", "C1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE comments").
		WithArgs("deleted", "", "C404").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, repo.UpdateStatus(context.Background(), "C1", models.CommentStatusApproved, "Thanks!"))

	err := repo.UpdateStatus(context.Background(), "C404", models.CommentStatusDeleted, "")
	assert.True(t, utils.IsNotFoundError(err))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConversationRepository_RecordInbound(t *testing.T) {
	tests := []struct {
		name     string
		inserted bool
		unread   int
	}{
		{name: "first message opens the thread", inserted: true, unread: 1},
		{name: "later message bumps the unread count", inserted: false, unread: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool, mock := newInboxMock(t)
			repo := repository.NewConversationRepository(pool)

			conv := &models.Conversation{
				ConversationID: models.ConversationKey("P1", "U1"),
				PageID:         "P1",
				UserID:         "U1",
				LastMessage:    "hello",
			}

			mock.ExpectQuery("INSERT INTO conversations AS c .* ON CONFLICT \\(conversation_id\\) DO UPDATE .* RETURNING c.id, c.unread_count, \\(xmax = 0\\) AS inserted").
				WithArgs("P1:U1", "P1", "U1", "", "hello").
				WillReturnRows(sqlmock.NewRows([]string{"id", "unread_count", "inserted"}).AddRow(int64(8), tt.unread, tt.inserted))

			inserted, err := repo.RecordInbound(context.Background(), conv)

			require.NoError(t, err)
			assert.Equal(t, tt.inserted, inserted)
			assert.Equal(t, int64(8), conv.ID)
			assert.Equal(t, tt.unread, conv.UnreadCount)
			assert.Equal(t, models.ConversationStatusUnread, conv.Status)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestConversationRepository_RecordInbound_Error(t *testing.T) {
	pool, mock := newInboxMock(t)
	repo := repository.NewConversationRepository(pool)

	mock.ExpectQuery("INSERT INTO conversations").
		WillReturnError(errors.New("connection reset"))

	inserted, err := repo.RecordInbound(context.Background(), &models.Conversation{ConversationID: "P1:U1"})

	assert.False(t, inserted)
	assert.Contains(t, err.Error(), "failed to record conversation")
}

func TestConversationRepository_MarkReplied(t *testing.T) {
	pool, mock := newInboxMock(t)
	repo := repository.NewConversationRepository(pool)

	mock.ExpectExec("UPDATE conversations SET status = 'replied', last_message = \\$1, unread_count = 0").
		WithArgs("Welcome!", "P1:U1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.MarkReplied(context.Background(), "P1:U1", "Welcome!"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMessageRepository_Create(t *testing.T) {
	pool, mock := newInboxMock(t)
	repo := repository.NewMessageRepository(pool)

	msg := models.NewMessage("P1:U1", models.MessageSenderUser, "hello", "m_1")

	mock.ExpectQuery("INSERT INTO messages .* RETURNING message_id").
		WithArgs("P1:U1", "user", "hello", "m_1", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"message_id"}).AddRow(int64(21)))

	require.NoError(t, repo.Create(context.Background(), msg))
	assert.Equal(t, int64(21), msg.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

package moderation_test

import (
	"context"
	"sync"

	"github.com/yasinhessnawi1/pageguard/internal/graph"
	"github.com/yasinhessnawi1/pageguard/internal/models"
	"github.com/yasinhessnawi1/pageguard/internal/moderation"
	"github.com/yasinhessnawi1/pageguard/internal/repository"
	"github.com/yasinhessnawi1/pageguard/internal/utils"
)

// In-memory stand-ins for the stores and the Graph API used by the evaluator

type fakeBlockList struct {
	mu        sync.Mutex
	active    map[string]*models.BlockedUser
	created   []*models.BlockedUser
	createErr error
	checkErr  error
}

func newFakeBlockList() *fakeBlockList {
	return &fakeBlockList{active: make(map[string]*models.BlockedUser)}
}

func (f *fakeBlockList) IsBlocked(_ context.Context, pageID, userID string) (bool, error) {
	if f.checkErr != nil {
		return false, f.checkErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.active[pageID+"|"+userID]
	return ok, nil
}

func (f *fakeBlockList) Create(_ context.Context, blocked *models.BlockedUser) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	key := blocked.PageID + "|" + blocked.UserID
	if _, ok := f.active[key]; ok {
		return repository.ErrAlreadyBlocked
	}
	blocked.ID = int64(len(f.created) + 1)
	f.active[key] = blocked
	f.created = append(f.created, blocked)
	return nil
}

func (f *fakeBlockList) block(pageID, userID string) {
	f.active[pageID+"|"+userID] = models.NewBlockedUser(userID, "", pageID, models.BlockReasonManual, 1)
}

type fakeLogs struct {
	entries []*models.ActionLog
	err     error
}

func (f *fakeLogs) Create(_ context.Context, entry *models.ActionLog) error {
	if f.err != nil {
		return f.err
	}
	entry.ID = int64(len(f.entries) + 1)
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeLogs) ofType(logType models.LogType) []*models.ActionLog {
	var out []*models.ActionLog
	for _, entry := range f.entries {
		if entry.Type == logType {
			out = append(out, entry)
		}
	}
	return out
}

type sentText struct {
	Target string
	Text   string
}

type fakeActions struct {
	tokens   []string
	deleted  []string
	replies  []sentText
	messages []sentText

	deleteErr error
	replyErr  error
	sendErr   error
}

func (f *fakeActions) factory() moderation.ActionsFactory {
	return func(token string) moderation.PageActions {
		f.tokens = append(f.tokens, token)
		return f
	}
}

func (f *fakeActions) calls() int {
	return len(f.deleted) + len(f.replies) + len(f.messages)
}

func (f *fakeActions) SendMessage(_ context.Context, recipientID, text string) (*graph.SendResult, error) {
	f.messages = append(f.messages, sentText{Target: recipientID, Text: text})
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	return &graph.SendResult{RecipientID: recipientID, MessageID: "m_bot"}, nil
}

func (f *fakeActions) ReplyToComment(_ context.Context, commentID, text string) (*graph.ObjectID, error) {
	f.replies = append(f.replies, sentText{Target: commentID, Text: text})
	if f.replyErr != nil {
		return nil, f.replyErr
	}
	return &graph.ObjectID{ID: commentID + "_reply"}, nil
}

func (f *fakeActions) DeleteComment(_ context.Context, commentID string) error {
	f.deleted = append(f.deleted, commentID)
	return f.deleteErr
}

type fakeComments struct {
	comments map[string]*models.Comment
	err      error
}

func (f *fakeComments) Upsert(_ context.Context, comment *models.Comment) error {
	if f.err != nil {
		return f.err
	}
	f.comments[comment.CommentID] = comment
	return nil
}

func (f *fakeComments) UpdateStatus(_ context.Context, commentID string, status models.CommentStatus, reply string) error {
	comment, ok := f.comments[commentID]
	if !ok {
		return utils.NewNotFoundError("Comment", commentID)
	}
	comment.Status = status
	comment.Reply = reply
	return nil
}

type fakeConversations struct {
	conversations map[string]*models.Conversation
	err           error
}

func (f *fakeConversations) RecordInbound(_ context.Context, conv *models.Conversation) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	existing, ok := f.conversations[conv.ConversationID]
	if ok {
		existing.UnreadCount++
		existing.LastMessage = conv.LastMessage
		existing.Status = models.ConversationStatusUnread
		return false, nil
	}
	conv.UnreadCount = 1
	conv.Status = models.ConversationStatusUnread
	f.conversations[conv.ConversationID] = conv
	return true, nil
}

func (f *fakeConversations) MarkReplied(_ context.Context, conversationID, lastMessage string) error {
	conv, ok := f.conversations[conversationID]
	if !ok {
		return utils.NewNotFoundError("Conversation", conversationID)
	}
	conv.Status = models.ConversationStatusReplied
	conv.LastMessage = lastMessage
	conv.UnreadCount = 0
	return nil
}

type fakeMessages struct {
	messages []*models.Message
}

func (f *fakeMessages) Create(_ context.Context, message *models.Message) error {
	message.ID = int64(len(f.messages) + 1)
	f.messages = append(f.messages, message)
	return nil
}

// harness wires an evaluator to fresh fakes
type harness struct {
	blocks        *fakeBlockList
	logs          *fakeLogs
	actions       *fakeActions
	comments      *fakeComments
	conversations *fakeConversations
	messages      *fakeMessages
	evaluator     *moderation.Evaluator
}

func newHarness() *harness {
	h := &harness{
		blocks:        newFakeBlockList(),
		logs:          &fakeLogs{},
		actions:       &fakeActions{},
		comments:      &fakeComments{comments: map[string]*models.Comment{}},
		conversations: &fakeConversations{conversations: map[string]*models.Conversation{}},
		messages:      &fakeMessages{},
	}
	recorder := moderation.NewRecorder(h.comments, h.conversations, h.messages)
	h.evaluator = moderation.NewEvaluator(h.blocks, h.logs, h.actions.factory(), recorder)
	return h
}

// moderatedPage returns the page used throughout the tests
func moderatedPage() *models.Page {
	page := models.NewPage("P1", "My Page", "page-token", 7, models.PageSettings{
		WelcomeMessage:        "Welcome!",
		CommentAutoReply:      "Thanks for your comment!",
		BannedWords:           []string{"idiot"},
		AutoDeleteBadComments: true,
		WelcomeMode:           models.WelcomeEveryMessage,
	})
	page.BotEnabled = true
	return page
}

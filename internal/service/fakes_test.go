package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/yasinhessnawi1/pageguard/internal/graph"
	"github.com/yasinhessnawi1/pageguard/internal/models"
	"github.com/yasinhessnawi1/pageguard/internal/repository"
	"github.com/yasinhessnawi1/pageguard/internal/utils"
)

// Mock implementations for testing

type MockPageRepository struct {
	mu             sync.Mutex
	pages          map[string]*models.Page
	words          map[string]map[string]bool
	moderatedCalls int
	err            error
}

func NewMockPageRepository() *MockPageRepository {
	return &MockPageRepository{
		pages: make(map[string]*models.Page),
		words: make(map[string]map[string]bool),
	}
}

func (m *MockPageRepository) Create(ctx context.Context, page *models.Page) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.pages[page.PageID]; ok {
		return utils.NewDuplicateError("Page", "page_id", page.PageID)
	}
	stored := *page
	m.pages[page.PageID] = &stored
	m.words[page.PageID] = make(map[string]bool)
	for _, w := range page.Settings.BannedWords {
		m.words[page.PageID][w] = true
	}
	return nil
}

func (m *MockPageRepository) load(pageID string) (*models.Page, error) {
	if m.err != nil {
		return nil, m.err
	}
	page, ok := m.pages[pageID]
	if !ok {
		return nil, utils.NewNotFoundError("Page", pageID)
	}
	cp := *page
	cp.Settings.BannedWords = m.sortedWords(pageID)
	return &cp, nil
}

func (m *MockPageRepository) sortedWords(pageID string) []string {
	words := []string{}
	for w := range m.words[pageID] {
		words = append(words, w)
	}
	sort.Strings(words)
	return words
}

func (m *MockPageRepository) GetByID(ctx context.Context, pageID string) (*models.Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.load(pageID)
}

func (m *MockPageRepository) GetModerated(ctx context.Context, pageID string) (*models.Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.moderatedCalls++
	page, err := m.load(pageID)
	if err != nil {
		return nil, err
	}
	if !page.Moderated() {
		return nil, utils.NewNotFoundError("Page", pageID)
	}
	return page, nil
}

func (m *MockPageRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*models.Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pages := []*models.Page{}
	for id, page := range m.pages {
		if page.OwnerID == ownerID {
			p, _ := m.load(id)
			pages = append(pages, p)
		}
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].PageID < pages[j].PageID })
	return pages, nil
}

func (m *MockPageRepository) UpdateSettings(ctx context.Context, page *models.Page) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.pages[page.PageID]
	if !ok {
		return utils.NewNotFoundError("Page", page.PageID)
	}
	words := stored.Settings.BannedWords
	stored.Settings = page.Settings
	stored.Settings.BannedWords = words
	return nil
}

func (m *MockPageRepository) SetBotEnabled(ctx context.Context, pageID string, enabled bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.pages[pageID]
	if !ok {
		return utils.NewNotFoundError("Page", pageID)
	}
	stored.BotEnabled = enabled
	return nil
}

func (m *MockPageRepository) GetBannedWords(ctx context.Context, pageID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sortedWords(pageID), nil
}

func (m *MockPageRepository) AddBannedWords(ctx context.Context, pageID string, words []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, w := range words {
		m.words[pageID][w] = true
	}
	return nil
}

func (m *MockPageRepository) RemoveBannedWords(ctx context.Context, pageID string, words []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, w := range words {
		delete(m.words[pageID], w)
	}
	return nil
}

type MockBlockedUserRepository struct {
	records []*models.BlockedUser
	filters []models.BlockedUserFilter
}

func (m *MockBlockedUserRepository) Create(ctx context.Context, blocked *models.BlockedUser) error {
	for _, r := range m.records {
		if r.IsActive && r.PageID == blocked.PageID && r.UserID == blocked.UserID {
			return repository.ErrAlreadyBlocked
		}
	}
	blocked.ID = int64(len(m.records) + 1)
	m.records = append(m.records, blocked)
	return nil
}

func (m *MockBlockedUserRepository) GetActive(ctx context.Context, pageID, userID string) (*models.BlockedUser, error) {
	for _, r := range m.records {
		if r.IsActive && r.PageID == pageID && r.UserID == userID {
			return r, nil
		}
	}
	return nil, utils.NewNotFoundError("BlockedUser", userID)
}

func (m *MockBlockedUserRepository) IsBlocked(ctx context.Context, pageID, userID string) (bool, error) {
	_, err := m.GetActive(ctx, pageID, userID)
	return err == nil, nil
}

func (m *MockBlockedUserRepository) List(ctx context.Context, filter models.BlockedUserFilter) ([]*models.BlockedUser, int, error) {
	m.filters = append(m.filters, filter)
	var out []*models.BlockedUser
	for _, r := range m.records {
		if r.PageID == filter.PageID {
			out = append(out, r)
		}
	}
	return out, len(out), nil
}

func (m *MockBlockedUserRepository) Stats(ctx context.Context, pageID string) (*models.BlockStats, error) {
	stats := &models.BlockStats{ByReason: map[models.BlockReason]int{}}
	for _, r := range m.records {
		if r.IsActive && r.PageID == pageID {
			stats.Total++
			stats.ByReason[r.Reason]++
		}
	}
	return stats, nil
}

func (m *MockBlockedUserRepository) Unblock(ctx context.Context, pageID, userID string) (*models.BlockedUser, error) {
	active, err := m.GetActive(ctx, pageID, userID)
	if err != nil {
		return nil, err
	}
	active.Unblock(time.Now())
	return active, nil
}

type MockActionLogRepository struct {
	entries []*models.ActionLog
	cutoffs []time.Time
	deleted int64
	err     error
}

func (m *MockActionLogRepository) Create(ctx context.Context, entry *models.ActionLog) error {
	if m.err != nil {
		return m.err
	}
	entry.ID = int64(len(m.entries) + 1)
	m.entries = append(m.entries, entry)
	return nil
}

func (m *MockActionLogRepository) List(ctx context.Context, filter models.ActionLogFilter) ([]*models.ActionLog, int, error) {
	if m.err != nil {
		return nil, 0, m.err
	}
	var out []*models.ActionLog
	for _, e := range m.entries {
		if e.PageID == filter.PageID && (filter.Type == "" || e.Type == filter.Type) {
			out = append(out, e)
		}
	}
	return out, len(out), nil
}

func (m *MockActionLogRepository) Stats(ctx context.Context, pageID string) (*models.LogStats, error) {
	stats := &models.LogStats{ByType: map[models.LogType]int{}, ByStatus: map[models.LogStatus]int{}}
	for _, e := range m.entries {
		if e.PageID == pageID {
			stats.Total++
			stats.ByType[e.Type]++
			stats.ByStatus[e.Status]++
		}
	}
	return stats, nil
}

func (m *MockActionLogRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.cutoffs = append(m.cutoffs, cutoff)
	return m.deleted, nil
}

type MockGraphPage struct {
	token    string
	sent     []string
	postIDs  []string
	sendErr  error
	fetchErr error
}

func (m *MockGraphPage) SendMessage(ctx context.Context, recipientID, text string) (*graph.SendResult, error) {
	if m.sendErr != nil {
		return nil, m.sendErr
	}
	m.sent = append(m.sent, recipientID+":"+text)
	return &graph.SendResult{RecipientID: recipientID, MessageID: "m_1"}, nil
}

func (m *MockGraphPage) GetPagePosts(ctx context.Context, pageID string, page graph.Pagination) (*graph.PostList, error) {
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	return &graph.PostList{Data: []graph.Post{{ID: pageID + "_1", Message: "hello"}}}, nil
}

func (m *MockGraphPage) GetPostComments(ctx context.Context, postID string, page graph.Pagination) (*graph.CommentList, error) {
	m.postIDs = append(m.postIDs, postID)
	return &graph.CommentList{}, nil
}

func (m *MockGraphPage) GetConversations(ctx context.Context, pageID string, page graph.Pagination) (*graph.ConversationList, error) {
	return &graph.ConversationList{}, nil
}

func (m *MockGraphPage) GetConversationMessages(ctx context.Context, conversationID string, page graph.Pagination) (*graph.MessageList, error) {
	return &graph.MessageList{}, nil
}

func (m *MockGraphPage) GetUserInfo(ctx context.Context, userID string) (*graph.UserInfo, error) {
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	return &graph.UserInfo{ID: userID, Name: "Bob"}, nil
}

var errDatabaseDown = errors.New("database down")

// testTokenKey returns a fixed AES key for token encryption in tests
func testTokenKey() []byte {
	key, err := utils.DeriveTokenKey("test-secret")
	if err != nil {
		panic(err)
	}
	return key
}

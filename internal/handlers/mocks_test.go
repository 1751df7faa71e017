package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yasinhessnawi1/pageguard/internal/auth"
	"github.com/yasinhessnawi1/pageguard/internal/graph"
	"github.com/yasinhessnawi1/pageguard/internal/models"
	"github.com/yasinhessnawi1/pageguard/internal/utils"
	"github.com/yasinhessnawi1/pageguard/internal/webhook"
)

// MockDispatcher is a mock implementation of the webhook dispatcher
type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) Verify(mode, token, challenge string) (string, error) {
	args := m.Called(mode, token, challenge)
	return args.String(0), args.Error(1)
}

func (m *MockDispatcher) Authenticate(body []byte, signature string) error {
	args := m.Called(body, signature)
	return args.Error(0)
}

func (m *MockDispatcher) Dispatch(ctx context.Context, body []byte) (*webhook.Result, error) {
	args := m.Called(ctx, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*webhook.Result), args.Error(1)
}

// MockPageService is a mock implementation of the page service
type MockPageService struct {
	mock.Mock
}

func (m *MockPageService) Connect(ctx context.Context, ownerID int64, req *models.ConnectPageRequest) (*models.Page, error) {
	args := m.Called(ctx, ownerID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Page), args.Error(1)
}

func (m *MockPageService) ListPages(ctx context.Context, ownerID int64) ([]*models.Page, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Page), args.Error(1)
}

func (m *MockPageService) GetPage(ctx context.Context, ownerID int64, pageID string) (*models.Page, error) {
	args := m.Called(ctx, ownerID, pageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Page), args.Error(1)
}

func (m *MockPageService) UpdateSettings(ctx context.Context, ownerID int64, pageID string, req *models.UpdatePageSettingsRequest) (*models.Page, error) {
	args := m.Called(ctx, ownerID, pageID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Page), args.Error(1)
}

func (m *MockPageService) SetBotEnabled(ctx context.Context, ownerID int64, pageID string, enabled bool) (*models.Page, error) {
	args := m.Called(ctx, ownerID, pageID, enabled)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Page), args.Error(1)
}

func (m *MockPageService) GetBannedWords(ctx context.Context, ownerID int64, pageID string) ([]string, error) {
	args := m.Called(ctx, ownerID, pageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockPageService) AddBannedWords(ctx context.Context, ownerID int64, pageID string, words []string) ([]string, error) {
	args := m.Called(ctx, ownerID, pageID, words)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockPageService) RemoveBannedWords(ctx context.Context, ownerID int64, pageID string, words []string) ([]string, error) {
	args := m.Called(ctx, ownerID, pageID, words)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockBlockService is a mock implementation of the block service
type MockBlockService struct {
	mock.Mock
}

func (m *MockBlockService) Block(ctx context.Context, ownerID int64, pageID string, req *models.BlockUserRequest) (*models.BlockedUser, error) {
	args := m.Called(ctx, ownerID, pageID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BlockedUser), args.Error(1)
}

func (m *MockBlockService) Unblock(ctx context.Context, ownerID int64, pageID, userID string) (*models.BlockedUser, error) {
	args := m.Called(ctx, ownerID, pageID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BlockedUser), args.Error(1)
}

func (m *MockBlockService) List(ctx context.Context, ownerID int64, filter models.BlockedUserFilter) ([]*models.BlockedUser, int, error) {
	args := m.Called(ctx, ownerID, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*models.BlockedUser), args.Int(1), args.Error(2)
}

func (m *MockBlockService) Stats(ctx context.Context, ownerID int64, pageID string) (*models.BlockStats, error) {
	args := m.Called(ctx, ownerID, pageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BlockStats), args.Error(1)
}

// MockLogService is a mock implementation of the log service
type MockLogService struct {
	mock.Mock
}

func (m *MockLogService) List(ctx context.Context, ownerID int64, filter models.ActionLogFilter) ([]*models.ActionLog, int, error) {
	args := m.Called(ctx, ownerID, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*models.ActionLog), args.Int(1), args.Error(2)
}

func (m *MockLogService) Stats(ctx context.Context, ownerID int64, pageID string) (*models.LogStats, error) {
	args := m.Called(ctx, ownerID, pageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LogStats), args.Error(1)
}

func (m *MockLogService) Cleanup(ctx context.Context) (*models.CleanupResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CleanupResult), args.Error(1)
}

// MockFacebookService is a mock implementation of the Facebook service
type MockFacebookService struct {
	mock.Mock
}

func (m *MockFacebookService) Posts(ctx context.Context, ownerID int64, pageID string, page graph.Pagination) (*graph.PostList, error) {
	args := m.Called(ctx, ownerID, pageID, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*graph.PostList), args.Error(1)
}

func (m *MockFacebookService) PostComments(ctx context.Context, ownerID int64, pageID, postID string, page graph.Pagination) (*graph.CommentList, error) {
	args := m.Called(ctx, ownerID, pageID, postID, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*graph.CommentList), args.Error(1)
}

func (m *MockFacebookService) Conversations(ctx context.Context, ownerID int64, pageID string, page graph.Pagination) (*graph.ConversationList, error) {
	args := m.Called(ctx, ownerID, pageID, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*graph.ConversationList), args.Error(1)
}

func (m *MockFacebookService) ConversationMessages(ctx context.Context, ownerID int64, pageID, conversationID string, page graph.Pagination) (*graph.MessageList, error) {
	args := m.Called(ctx, ownerID, pageID, conversationID, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*graph.MessageList), args.Error(1)
}

func (m *MockFacebookService) UserInfo(ctx context.Context, ownerID int64, pageID, userID string) (*graph.UserInfo, error) {
	args := m.Called(ctx, ownerID, pageID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*graph.UserInfo), args.Error(1)
}

func (m *MockFacebookService) SendMessage(ctx context.Context, ownerID int64, pageID string, req *models.SendMessageRequest) (*graph.SendResult, error) {
	args := m.Called(ctx, ownerID, pageID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*graph.SendResult), args.Error(1)
}

// newRequest builds a request carrying chi route parameters and, for a
// positive userID, an authenticated user.
func newRequest(t *testing.T, method, target string, body interface{}, userID int64, params map[string]string) *http.Request {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")

	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	if userID > 0 {
		ctx = auth.WithUserID(ctx, userID)
	}

	return req.WithContext(ctx)
}

func decodeResponse(t *testing.T, rr *httptest.ResponseRecorder) utils.Response {
	t.Helper()
	var resp utils.Response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}

func pageParams(pageID string) map[string]string {
	return map[string]string{"pageID": pageID}
}

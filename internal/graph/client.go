// Package graph wraps the Facebook Graph API calls made on behalf of a page.
//
// A Client carries the shared transport settings; ForToken binds it to one
// page access token. Every operation issues exactly one HTTP call with the
// token as the access_token query parameter and never retries.
package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/yasinhessnawi1/pageguard/internal/config"
	"github.com/yasinhessnawi1/pageguard/internal/constants"
	"github.com/yasinhessnawi1/pageguard/internal/utils"
)

// Field selections requested for fetched objects
const (
	postFields    = "id,message,created_time,likes.summary(true),comments.summary(true)"
	commentFields = "id,message,from,created_time,like_count"
	userFields    = "id,name,email,picture"
)

// maxErrorBody bounds how much of an upstream error body is kept
const maxErrorBody = 64 * 1024

// Client holds the transport shared by all page clients
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Graph API client from configuration
func NewClient(cfg config.GraphSettings) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Version != "" {
		baseURL += "/" + strings.Trim(cfg.Version, "/")
	}

	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// ForToken returns a client acting with the given page access token
func (c *Client) ForToken(accessToken string) *PageClient {
	return &PageClient{
		client: c,
		token:  accessToken,
	}
}

// PageClient performs Graph API calls with one page access token
type PageClient struct {
	client *Client
	token  string
}

// SendMessage sends a text message to a Messenger user
func (p *PageClient) SendMessage(ctx context.Context, recipientID, text string) (*SendResult, error) {
	body := map[string]interface{}{
		"recipient": map[string]string{"id": recipientID},
		"message":   map[string]string{"text": text},
	}

	result := &SendResult{}
	if err := p.do(ctx, "send_message", http.MethodPost, "/me/messages", nil, body, result); err != nil {
		return nil, err
	}
	return result, nil
}

// ReplyToComment posts a reply under a comment
func (p *PageClient) ReplyToComment(ctx context.Context, commentID, text string) (*ObjectID, error) {
	result := &ObjectID{}
	path := "/" + url.PathEscape(commentID) + "/comments"
	if err := p.do(ctx, "reply_to_comment", http.MethodPost, path, nil, map[string]string{"message": text}, result); err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteComment removes a comment from the page
func (p *PageClient) DeleteComment(ctx context.Context, commentID string) error {
	return p.do(ctx, "delete_comment", http.MethodDelete, "/"+url.PathEscape(commentID), nil, nil, nil)
}

// GetPagePosts lists the posts of a page
func (p *PageClient) GetPagePosts(ctx context.Context, pageID string, page Pagination) (*PostList, error) {
	query := page.values(constants.DefaultPostsLimit)
	query.Set("fields", postFields)

	result := &PostList{}
	if err := p.do(ctx, "get_page_posts", http.MethodGet, "/"+url.PathEscape(pageID)+"/posts", query, nil, result); err != nil {
		return nil, err
	}
	return result, nil
}

// GetPostComments lists the comments of a post
func (p *PageClient) GetPostComments(ctx context.Context, postID string, page Pagination) (*CommentList, error) {
	query := page.values(constants.DefaultCommentsLimit)
	query.Set("fields", commentFields)

	result := &CommentList{}
	if err := p.do(ctx, "get_post_comments", http.MethodGet, "/"+url.PathEscape(postID)+"/comments", query, nil, result); err != nil {
		return nil, err
	}
	return result, nil
}

// GetConversations lists the Messenger threads of a page
func (p *PageClient) GetConversations(ctx context.Context, pageID string, page Pagination) (*ConversationList, error) {
	result := &ConversationList{}
	path := "/" + url.PathEscape(pageID) + "/conversations"
	if err := p.do(ctx, "get_conversations", http.MethodGet, path, page.values(constants.DefaultCommentsLimit), nil, result); err != nil {
		return nil, err
	}
	return result, nil
}

// GetConversationMessages lists the messages of a thread
func (p *PageClient) GetConversationMessages(ctx context.Context, conversationID string, page Pagination) (*MessageList, error) {
	result := &MessageList{}
	path := "/" + url.PathEscape(conversationID) + "/messages"
	if err := p.do(ctx, "get_conversation_messages", http.MethodGet, path, page.values(constants.DefaultCommentsLimit), nil, result); err != nil {
		return nil, err
	}
	return result, nil
}

// GetUserInfo fetches the profile of a user
func (p *PageClient) GetUserInfo(ctx context.Context, userID string) (*UserInfo, error) {
	query := url.Values{}
	query.Set("fields", userFields)

	result := &UserInfo{}
	if err := p.do(ctx, "get_user_info", http.MethodGet, "/"+url.PathEscape(userID), query, nil, result); err != nil {
		return nil, err
	}
	return result, nil
}

// values renders the pagination window, falling back to defaultLimit
func (pg Pagination) values(defaultLimit int) url.Values {
	limit := pg.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	query.Set("offset", strconv.Itoa(max(pg.Offset, 0)))
	return query
}

// do issues one Graph API call and decodes a 2xx response into out
func (p *PageClient) do(ctx context.Context, op, method, path string, query url.Values, body, out interface{}) error {
	if query == nil {
		query = url.Values{}
	}
	query.Set("access_token", p.token)
	endpoint := p.client.baseURL + path + "?" + query.Encode()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return &GraphAPIError{Op: op, Err: fmt.Errorf("failed to encode request: %w", err)}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return &GraphAPIError{Op: op, Err: err}
	}
	if body != nil {
		req.Header.Set(constants.HeaderContentType, constants.ContentTypeJSON)
	}

	startTime := time.Now()
	resp, err := p.client.httpClient.Do(req)
	if err != nil {
		err = redactToken(err, p.token)
		log.Warn().
			Str("op", op).
			Dur("duration", time.Since(startTime)).
			Err(err).
			Msg("Graph API request failed")
		return &GraphAPIError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return &GraphAPIError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	log.Debug().
		Str("op", op).
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(startTime)).
		Msg("Graph API call")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &GraphAPIError{Op: op, StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return &GraphAPIError{Op: op, StatusCode: resp.StatusCode, Body: string(respBody), Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	return nil
}

// redactToken keeps the access token out of errors that echo the request URL
func redactToken(err error, token string) error {
	var urlErr *url.Error
	if token != "" && errors.As(err, &urlErr) {
		urlErr.URL = strings.ReplaceAll(urlErr.URL, token, utils.MaskToken(token))
	}
	return err
}

package service

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/yasinhessnawi1/pageguard/internal/constants"
	"github.com/yasinhessnawi1/pageguard/internal/graph"
	"github.com/yasinhessnawi1/pageguard/internal/models"
	"github.com/yasinhessnawi1/pageguard/internal/repository"
	"github.com/yasinhessnawi1/pageguard/internal/utils"
)

// Trigger recorded on message_sent entries for messages sent from the dashboard
const triggerManual = "manual"

// PageTokens resolves the decrypted access token of an owned page
type PageTokens interface {
	AccessToken(ctx context.Context, ownerID int64, pageID string) (string, error)
}

// GraphPage is the set of Graph API calls the dashboard proxies for a page
type GraphPage interface {
	SendMessage(ctx context.Context, recipientID, text string) (*graph.SendResult, error)
	GetPagePosts(ctx context.Context, pageID string, page graph.Pagination) (*graph.PostList, error)
	GetPostComments(ctx context.Context, postID string, page graph.Pagination) (*graph.CommentList, error)
	GetConversations(ctx context.Context, pageID string, page graph.Pagination) (*graph.ConversationList, error)
	GetConversationMessages(ctx context.Context, conversationID string, page graph.Pagination) (*graph.MessageList, error)
	GetUserInfo(ctx context.Context, userID string) (*graph.UserInfo, error)
}

// GraphFactory binds the Graph API calls to an access token
type GraphFactory func(accessToken string) GraphPage

// GraphPages adapts a Graph client to a GraphFactory
func GraphPages(client *graph.Client) GraphFactory {
	return func(accessToken string) GraphPage {
		return client.ForToken(accessToken)
	}
}

// FacebookService reads page content from the Graph API and sends messages
// on behalf of a page owner. Graph API failures are returned as upstream errors.
type FacebookService struct {
	tokens PageTokens
	graph  GraphFactory
	logs   repository.ActionLogRepository
}

// NewFacebookService creates a new FacebookService
func NewFacebookService(tokens PageTokens, graph GraphFactory, logs repository.ActionLogRepository) *FacebookService {
	return &FacebookService{
		tokens: tokens,
		graph:  graph,
		logs:   logs,
	}
}

// Posts lists the posts of an owned page
func (s *FacebookService) Posts(ctx context.Context, ownerID int64, pageID string, page graph.Pagination) (*graph.PostList, error) {
	client, err := s.client(ctx, ownerID, pageID)
	if err != nil {
		return nil, err
	}

	posts, err := client.GetPagePosts(ctx, pageID, page)
	if err != nil {
		return nil, upstreamError(err)
	}
	return posts, nil
}

// PostComments lists the comments of a post. Post ids carry their page id as
// prefix; posts of other pages are reported as not found.
func (s *FacebookService) PostComments(ctx context.Context, ownerID int64, pageID, postID string, page graph.Pagination) (*graph.CommentList, error) {
	if !strings.HasPrefix(postID, pageID+"_") {
		return nil, utils.NewNotFoundError("Post", postID)
	}

	client, err := s.client(ctx, ownerID, pageID)
	if err != nil {
		return nil, err
	}

	comments, err := client.GetPostComments(ctx, postID, page)
	if err != nil {
		return nil, upstreamError(err)
	}
	return comments, nil
}

// Conversations lists the Messenger threads of an owned page
func (s *FacebookService) Conversations(ctx context.Context, ownerID int64, pageID string, page graph.Pagination) (*graph.ConversationList, error) {
	client, err := s.client(ctx, ownerID, pageID)
	if err != nil {
		return nil, err
	}

	conversations, err := client.GetConversations(ctx, pageID, page)
	if err != nil {
		return nil, upstreamError(err)
	}
	return conversations, nil
}

// ConversationMessages lists the messages of a Messenger thread of an owned page
func (s *FacebookService) ConversationMessages(ctx context.Context, ownerID int64, pageID, conversationID string, page graph.Pagination) (*graph.MessageList, error) {
	client, err := s.client(ctx, ownerID, pageID)
	if err != nil {
		return nil, err
	}

	messages, err := client.GetConversationMessages(ctx, conversationID, page)
	if err != nil {
		return nil, upstreamError(err)
	}
	return messages, nil
}

// UserInfo fetches the profile of a user as seen by an owned page
func (s *FacebookService) UserInfo(ctx context.Context, ownerID int64, pageID, userID string) (*graph.UserInfo, error) {
	client, err := s.client(ctx, ownerID, pageID)
	if err != nil {
		return nil, err
	}

	info, err := client.GetUserInfo(ctx, userID)
	if err != nil {
		return nil, upstreamError(err)
	}
	return info, nil
}

// SendMessage sends a Messenger message from an owned page and records a
// message_sent log entry whatever the outcome.
func (s *FacebookService) SendMessage(ctx context.Context, ownerID int64, pageID string, req *models.SendMessageRequest) (*graph.SendResult, error) {
	client, err := s.client(ctx, ownerID, pageID)
	if err != nil {
		return nil, err
	}

	result, sendErr := client.SendMessage(ctx, req.RecipientID, req.Text)

	entry := models.NewActionLog(pageID, req.RecipientID, "", req.Text, models.MessageSentMetadata{
		RecipientID: req.RecipientID,
		Trigger:     triggerManual,
	}).Fail(sendErr)
	if err := s.logs.Create(ctx, entry); err != nil {
		log.Error().Err(err).Str(constants.LogFieldPageID, pageID).Msg("Failed to write action log")
	}

	if sendErr != nil {
		return nil, upstreamError(sendErr)
	}
	return result, nil
}

// client returns the Graph API calls bound to the token of an owned page
func (s *FacebookService) client(ctx context.Context, ownerID int64, pageID string) (GraphPage, error) {
	token, err := s.tokens.AccessToken(ctx, ownerID, pageID)
	if err != nil {
		return nil, err
	}
	return s.graph(token), nil
}

// upstreamError reports a failed Graph call as 502, or as 504 when the call
// ran out of time.
func upstreamError(err error) error {
	var netErr net.Error
	timedOut := errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout())
	if graph.IsGraphAPIError(err) && timedOut {
		appErr := utils.ParseError(context.DeadlineExceeded)
		appErr.DevInfo = err.Error()
		return appErr
	}
	return utils.NewUpstreamError(err)
}

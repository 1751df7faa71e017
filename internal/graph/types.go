package graph

import "encoding/json"

// Pagination selects a window of a Graph API collection
type Pagination struct {
	Limit  int
	Offset int
}

// SendResult is the response of the Send API
type SendResult struct {
	RecipientID string `json:"recipient_id"`
	MessageID   string `json:"message_id"`
}

// ObjectID is returned when Graph creates an object, such as a comment reply
type ObjectID struct {
	ID string `json:"id"`
}

// Paging holds the cursors Graph returns alongside a collection
type Paging struct {
	Cursors struct {
		Before string `json:"before"`
		After  string `json:"after"`
	} `json:"cursors"`
	Next     string `json:"next,omitempty"`
	Previous string `json:"previous,omitempty"`
}

// Post is a page post with its engagement summaries
type Post struct {
	ID          string          `json:"id"`
	Message     string          `json:"message,omitempty"`
	CreatedTime string          `json:"created_time"`
	Likes       json.RawMessage `json:"likes,omitempty"`
	Comments    json.RawMessage `json:"comments,omitempty"`
}

// PostList is a page of posts
type PostList struct {
	Data   []Post `json:"data"`
	Paging Paging `json:"paging"`
}

// Author identifies who wrote a comment or message
type Author struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// PostComment is a comment fetched from a post
type PostComment struct {
	ID          string `json:"id"`
	Message     string `json:"message"`
	From        Author `json:"from"`
	CreatedTime string `json:"created_time"`
	LikeCount   int    `json:"like_count"`
}

// CommentList is a page of comments
type CommentList struct {
	Data   []PostComment `json:"data"`
	Paging Paging        `json:"paging"`
}

// ConversationSummary is a Messenger thread as listed by Graph
type ConversationSummary struct {
	ID          string `json:"id"`
	Link        string `json:"link,omitempty"`
	UpdatedTime string `json:"updated_time"`
}

// ConversationList is a page of conversations
type ConversationList struct {
	Data   []ConversationSummary `json:"data"`
	Paging Paging                `json:"paging"`
}

// ThreadMessage is a message inside a Messenger thread
type ThreadMessage struct {
	ID          string `json:"id"`
	Message     string `json:"message"`
	From        Author `json:"from"`
	CreatedTime string `json:"created_time"`
}

// MessageList is a page of thread messages
type MessageList struct {
	Data   []ThreadMessage `json:"data"`
	Paging Paging          `json:"paging"`
}

// UserInfo is the public profile of a user as seen by the page
type UserInfo struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Email   string          `json:"email,omitempty"`
	Picture json.RawMessage `json:"picture,omitempty"`
}

package constants

// Base Routes
const (
	APIBasePath = "/api"
	HealthPath  = "/health"
	VersionPath = "/version"
	WebhookPath = "/webhook"
)

// Page Routes
const (
	PagesBasePath     = "/api/pages"
	PageDetailPath    = "/api/pages/{pageID}"
	PageSettingsPath  = "/api/pages/{pageID}/settings"
	PageBotTogglePath = "/api/pages/{pageID}/bot"
	BannedWordsPath   = "/api/pages/{pageID}/banned-words"
	BlockedUsersPath  = "/api/pages/{pageID}/blocked-users"
	BlockedStatsPath  = "/api/pages/{pageID}/blocked-users/stats"
	UnblockUserPath   = "/api/pages/{pageID}/blocked-users/{userID}/unblock"
	PageLogsPath      = "/api/pages/{pageID}/logs"
	PageLogStatsPath  = "/api/pages/{pageID}/logs/stats"
	LogsCleanupPath   = "/api/logs/cleanup"
)

// Graph read-through Routes
const (
	PagePostsPath            = "/api/pages/{pageID}/posts"
	PostCommentsPath         = "/api/pages/{pageID}/posts/{postID}/comments"
	PageConversationsPath    = "/api/pages/{pageID}/conversations"
	ConversationMessagesPath = "/api/pages/{pageID}/conversations/{conversationID}/messages"
	PageUserInfoPath         = "/api/pages/{pageID}/users/{userID}"
	PageMessagesPath         = "/api/pages/{pageID}/messages"
)

// URL Parameters
const (
	ParamPageID         = "pageID"
	ParamUserID         = "userID"
	ParamPostID         = "postID"
	ParamConversationID = "conversationID"
)

// Query Parameters
const (
	QueryParamLimit     = "limit"
	QueryParamOffset    = "offset"
	QueryParamType      = "type"
	QueryParamReason    = "reason"
	QueryParamSearch    = "search"
	QueryParamStartDate = "start_date"
	QueryParamEndDate   = "end_date"
	QueryParamActive    = "active"
	QueryParamStatus    = "status"

	// Webhook handshake parameters as sent by Facebook.
	QueryParamHubMode        = "hub.mode"
	QueryParamHubVerifyToken = "hub.verify_token"
	QueryParamHubChallenge   = "hub.challenge"
)

// Context Keys
const (
	RequestIDContextKey = "request_id"
	UserIDContextKey    = "user_id"
)

// Package constants provides shared constant values used throughout the application.
//
// The defaults.go file defines default values and limits. These constants are
// the fallbacks applied by the config loader when a setting is left empty.
package constants

import "time"

// Default Pagination Values define the limit/offset window for listings.
const (
	// DefaultListLimit is the number of items returned when no limit is given.
	DefaultListLimit = 50

	// MaxListLimit caps the limit a client may request.
	MaxListLimit = 200
)

// Default Configuration Values define fallback settings when not specified in configuration.
const (
	// DefaultServerPort is the default HTTP server port.
	DefaultServerPort = 8080

	// DefaultDBPort is the default PostgreSQL port.
	DefaultDBPort = 5432

	// DefaultDBMaxConnections is the default maximum number of database connections.
	DefaultDBMaxConnections = 20

	// DefaultDBMinConnections is the default number of idle database connections.
	DefaultDBMinConnections = 5

	// DefaultLogLevel is the default logging verbosity level.
	DefaultLogLevel = "info"

	// DefaultLogFormat is the default logging output format.
	DefaultLogFormat = "json"

	// DefaultJWTIssuer is the issuer expected on admin bearer tokens.
	DefaultJWTIssuer = "pageguard-auth"

	// BearerTokenPrefix is the prefix for Authorization header bearer tokens.
	BearerTokenPrefix = "Bearer "
)

// Graph API defaults.
const (
	// DefaultGraphBaseURL is the Facebook Graph API host.
	DefaultGraphBaseURL = "https://graph.facebook.com"

	// DefaultGraphVersion is the pinned Graph API version.
	DefaultGraphVersion = "v18.0"

	// DefaultGraphTimeout bounds a single Graph API call.
	DefaultGraphTimeout = 10 * time.Second

	// DefaultPostsLimit is the page size used when listing page posts.
	DefaultPostsLimit = 25

	// DefaultCommentsLimit is the page size used when listing post comments.
	DefaultCommentsLimit = 50
)

// Moderation defaults applied to newly connected pages.
const (
	DefaultWelcomeMessage       = "Hello! Thanks for reaching out. We will get back to you soon."
	DefaultAutoReplyMessage     = "Thank you for your message! We will respond as soon as possible."
	DefaultCommentAutoReply     = "Thanks for your comment!"
	DefaultAutoDeleteBadComment = true
	DefaultWelcomeMode          = "every_message"
)

// Retention and dedupe defaults.
const (
	// DefaultLogRetentionDays is how long action logs are kept.
	DefaultLogRetentionDays = 30

	// DefaultCleanupSchedule runs the retention cleanup once a day.
	DefaultCleanupSchedule = "@daily"

	// DefaultDedupeWindow is how long a delivered event key is remembered.
	DefaultDedupeWindow = 10 * time.Minute

	// DefaultRedisAddr is used when dedupe is backed by Redis and no address is given.
	DefaultRedisAddr = "localhost:6379"
)

// Rate limiting defaults for the admin API.
const (
	DefaultRateLimitRate  = 10.0
	DefaultRateLimitBurst = 30

	// Retention cleanup deletes in bulk; one call per client per minute
	CleanupRateLimitRate  = 1.0 / 60
	CleanupRateLimitBurst = 1
)

// Environment Types define the recognized application running environments.
const (
	EnvDevelopment = "development"
	EnvTesting     = "testing"
	EnvProduction  = "production"
)

// Request Size Limits.
const (
	// MaxRequestBodySize is the maximum size in bytes for admin API request bodies.
	MaxRequestBodySize = 1048576 // 1MB

	// MaxWebhookBodySize is the maximum size in bytes accepted on the webhook endpoint.
	MaxWebhookBodySize = 4 * 1048576
)

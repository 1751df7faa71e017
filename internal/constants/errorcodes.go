package constants

// Client messages. They never carry internal details such as SQL or
// Graph API error bodies.
const (
	MsgAuthRequired        = "Authentication required"
	MsgAccessDenied        = "You don't have permission to access this resource"
	MsgInternalServerError = "An internal server error occurred"
	MsgTokenExpired        = "Authentication token has expired"
	MsgInvalidToken        = "Invalid token"
	MsgRateLimitExceeded   = "Rate limit exceeded. Please try again later."
	MsgMethodNotAllowed    = "This method is not allowed for this resource"

	// Request decoding
	MsgRequestBodyTooLarge = "Request body too large"
	MsgEmptyRequestBody    = "Request body must not be empty"
	MsgMalformedJSON       = "Request body contains malformed JSON"

	MsgResourceNotFound      = "The requested resource could not be found"
	MsgResourceAlreadyExists = "A resource with the same unique identifier already exists"

	// Manual blocks
	MsgUserAlreadyBlocked = "User is already blocked"
	MsgUserNotBlocked     = "User is not blocked"

	// Webhook endpoint
	MsgVerificationFailed = "Webhook verification failed"
	MsgInvalidSignature   = "Invalid webhook signature"

	// Graph API proxy
	MsgUpstreamRejected = "The Facebook API rejected the request"
	MsgUpstreamTimeout  = "The request timed out waiting for an upstream service"
)

// PostgreSQL SQLSTATE codes mapped to client errors
const (
	PGErrorDuplicateConstraint  = "23505"
	PGErrorForeignKeyConstraint = "23503"
	PGErrorNotNullConstraint    = "23502"
)

// Structured log fields shared by the moderation pipeline
const (
	LogRedactedValue  = "[REDACTED]"
	LogFieldPageID    = "page_id"
	LogFieldEventKind = "event_kind"
)

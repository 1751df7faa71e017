package webhook

import (
	"errors"
	"fmt"
)

// ErrMalformedPayload is returned by Dispatch when the body is not a JSON webhook payload
var ErrMalformedPayload = errors.New("malformed webhook payload")

// ErrInvalidSignature is returned when a body does not match its X-Hub-Signature-256 header
var ErrInvalidSignature = errors.New("invalid webhook signature")

// AuthorizationError is returned when the subscription handshake is rejected
type AuthorizationError struct {
	Mode   string
	Reason string
}

// Error implements the error interface
func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("webhook verification failed: %s", e.Reason)
}

// IsAuthorizationError reports whether err is an AuthorizationError
func IsAuthorizationError(err error) bool {
	var authErr *AuthorizationError
	return errors.As(err, &authErr)
}

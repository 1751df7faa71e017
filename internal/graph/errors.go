package graph

import (
	"errors"
	"fmt"

	"github.com/yasinhessnawi1/pageguard/internal/utils"
)

// GraphAPIError is returned when a Graph API call fails, either because the
// request never completed or because Facebook answered with a non-2xx status.
type GraphAPIError struct {
	Op         string // Operation name, e.g. "delete_comment"
	StatusCode int    // Zero for transport failures
	Body       string // Upstream error body, as returned
	Err        error  // Transport error, if any
}

// Error implements the error interface
func (e *GraphAPIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("graph api %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("graph api %s: status %d: %s", e.Op, e.StatusCode, utils.TruncateString(e.Body, 512))
}

// Unwrap returns the transport error
func (e *GraphAPIError) Unwrap() error {
	return e.Err
}

// Is lets callers match any Graph failure with errors.Is(err, utils.ErrUpstream)
func (e *GraphAPIError) Is(target error) bool {
	return target == utils.ErrUpstream
}

// IsGraphAPIError reports whether err is or wraps a GraphAPIError
func IsGraphAPIError(err error) bool {
	var graphErr *GraphAPIError
	return errors.As(err, &graphErr)
}

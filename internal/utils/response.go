package utils

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/yasinhessnawi1/pageguard/internal/constants"
)

// Response is the envelope of every admin API response. The webhook
// handshake is the only endpoint answering outside of it.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
	Meta    *MetaInfo   `json:"meta,omitempty"`
}

// ErrorInfo describes a failed request. Details maps request fields to
// their validation messages.
type ErrorInfo struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// MetaInfo carries the window of a paginated listing such as blocked users
// or message logs.
type MetaInfo struct {
	Limit      int  `json:"limit"`
	Offset     int  `json:"offset"`
	TotalItems int  `json:"total_items"`
	HasMore    bool `json:"has_more"`
}

// PaginationParams is the limit/offset window requested by a list endpoint
type PaginationParams struct {
	Limit  int
	Offset int
}

// errorCodes maps the AppError sentinels to the codes clients switch on
var errorCodes = map[error]string{
	ErrNotFound:     constants.CodeNotFound,
	ErrBadRequest:   constants.CodeBadRequest,
	ErrUnauthorized: constants.CodeUnauthorized,
	ErrForbidden:    constants.CodeForbidden,
	ErrValidation:   constants.CodeValidationError,
	ErrDuplicate:    constants.CodeDuplicateResource,
	ErrUpstream:     constants.CodeUpstreamError,
	ErrExpiredToken: constants.CodeTokenExpired,
	ErrInvalidToken: constants.CodeTokenInvalid,
}

// JSON writes data inside the envelope. Success follows the status code.
//
// Parameters:
//   - w: The HTTP response writer
//   - statusCode: The HTTP status code
//   - data: The payload placed under "data"
func JSON(w http.ResponseWriter, statusCode int, data interface{}) {
	writeEnvelope(w, statusCode, Response{
		Success: statusCode >= 200 && statusCode < 300,
		Data:    data,
	})
}

// Error writes a failure envelope
func Error(w http.ResponseWriter, statusCode int, code, message string, details map[string]string) {
	writeEnvelope(w, statusCode, Response{
		Success: constants.ResponseFailure,
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// ErrorFromAppError reports err with the code of its sentinel. A field error
// becomes a single detail entry, otherwise the error's own details are sent.
func ErrorFromAppError(w http.ResponseWriter, err *AppError) {
	code, ok := errorCodes[err.Err]
	if !ok {
		code = constants.CodeInternalError
	}

	var details map[string]string
	switch {
	case err.Field != "":
		details = map[string]string{err.Field: err.Message}
	case len(err.Details) > 0:
		details = make(map[string]string, len(err.Details))
		for field, msg := range err.Details {
			details[field] = fmt.Sprint(msg)
		}
	}

	Error(w, err.StatusCode, code, err.Message, details)
}

// Paginated writes one window of a listing together with its meta block.
//
// Parameters:
//   - w: The HTTP response writer
//   - statusCode: The HTTP status code
//   - data: The items of the window
//   - params: The limit and offset the items were fetched with
//   - totalItems: The number of items matching the filter
func Paginated(w http.ResponseWriter, statusCode int, data interface{}, params PaginationParams, totalItems int) {
	writeEnvelope(w, statusCode, Response{
		Success: constants.ResponseSuccess,
		Data:    data,
		Meta: &MetaInfo{
			Limit:      params.Limit,
			Offset:     params.Offset,
			TotalItems: totalItems,
			HasMore:    params.Offset+params.Limit < totalItems,
		},
	})
}

// writeEnvelope marshals before writing the header so an encoding failure
// can still be reported as a 500.
func writeEnvelope(w http.ResponseWriter, statusCode int, body Response) {
	w.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON)

	payload, err := json.Marshal(body)
	if err != nil {
		log.Error().Err(err).Int("status", statusCode).Msg("Failed to encode response")
		statusCode = http.StatusInternalServerError
		payload = []byte(`{"success":false,"error":{"code":"internal_error","message":"Failed to generate response"}}`)
	}

	w.WriteHeader(statusCode)
	if _, err := w.Write(payload); err != nil {
		log.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// PlainText writes body as text/plain. Facebook expects the handshake
// challenge echoed verbatim.
func PlainText(w http.ResponseWriter, statusCode int, body string) {
	w.Header().Set(constants.HeaderContentType, constants.ContentTypeText)
	w.WriteHeader(statusCode)
	if _, err := w.Write([]byte(body)); err != nil {
		log.Error().Err(err).Msg("Failed to write text response")
	}
}

// BadRequest writes a 400 with optional per-field details
func BadRequest(w http.ResponseWriter, message string, details map[string]string) {
	Error(w, http.StatusBadRequest, constants.CodeBadRequest, message, details)
}

// Unauthorized writes a 401. An empty message uses the default one.
func Unauthorized(w http.ResponseWriter, message string) {
	Error(w, http.StatusUnauthorized, constants.CodeUnauthorized, orDefault(message, constants.MsgAuthRequired), nil)
}

// Forbidden writes a 403. An empty message uses the default one.
func Forbidden(w http.ResponseWriter, message string) {
	Error(w, http.StatusForbidden, constants.CodeForbidden, orDefault(message, constants.MsgAccessDenied), nil)
}

// NotFound writes a 404. An empty message uses the default one.
func NotFound(w http.ResponseWriter, message string) {
	Error(w, http.StatusNotFound, constants.CodeNotFound, orDefault(message, constants.MsgResourceNotFound), nil)
}

func MethodNotAllowed(w http.ResponseWriter) {
	Error(w, http.StatusMethodNotAllowed, constants.CodeMethodNotAllowed, constants.MsgMethodNotAllowed, nil)
}

// InternalServerError logs err and writes a generic 500 that does not leak it
func InternalServerError(w http.ResponseWriter, err error) {
	log.Error().Err(err).Msg("Internal server error")
	Error(w, http.StatusInternalServerError, constants.CodeInternalError, constants.MsgInternalServerError, nil)
}

// TooManyRequests writes a 429 with a Retry-After hint in seconds
func TooManyRequests(w http.ResponseWriter, retryAfterSeconds int) {
	w.Header().Set(constants.HeaderRetryAfter, strconv.Itoa(retryAfterSeconds))
	Error(w, http.StatusTooManyRequests, constants.CodeRateLimited, constants.MsgRateLimitExceeded, nil)
}

// GetPaginationParams reads limit and offset from the query string. Invalid
// values fall back to the defaults and the limit is capped at MaxListLimit.
func GetPaginationParams(r *http.Request) PaginationParams {
	query := r.URL.Query()

	limit := queryInt(query.Get(constants.QueryParamLimit), constants.DefaultListLimit)
	switch {
	case limit < 1:
		limit = constants.DefaultListLimit
	case limit > constants.MaxListLimit:
		limit = constants.MaxListLimit
	}

	return PaginationParams{
		Limit:  limit,
		Offset: max(queryInt(query.Get(constants.QueryParamOffset), 0), 0),
	}
}

func queryInt(s string, fallback int) int {
	value, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return value
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/yasinhessnawi1/pageguard/internal/constants"
)

// validate is shared by all request decoders
var validate *validator.Validate

// tagMessages holds the messages of validation tags that take no parameter
var tagMessages = map[string]string{
	"required":   "This field is required",
	"notblank":   "Must not be blank",
	"singleline": "Must not contain line breaks",
	"dive":       "Contains an invalid item",
}

// InitValidator builds the request validator. Field errors are reported
// under their JSON names.
func InitValidator() {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	custom := map[string]validator.Func{
		"notblank":   validateNotBlank,
		"singleline": validateSingleLine,
	}
	for tag, fn := range custom {
		if err := v.RegisterValidation(tag, fn); err != nil {
			log.Error().Err(err).Str("tag", tag).Msg("Failed to register validation")
		}
	}

	validate = v
	log.Info().Msg("Validator initialized")
}

// GetValidator returns the request validator, building it on first use
func GetValidator() *validator.Validate {
	if validate == nil {
		InitValidator()
	}
	return validate
}

// DecodeJSON decodes a single JSON object from the request body into v.
// Unknown fields are rejected so typos in settings updates are not silently dropped.
func DecodeJSON(r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(nil, r.Body, constants.MaxRequestBodySize)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		return decodeError(err)
	}

	if dec.More() {
		return NewBadRequestError("Request body must only contain a single JSON object")
	}

	return nil
}

// decodeError maps a json decoding failure to a client error
func decodeError(err error) error {
	var (
		maxBytesErr     *http.MaxBytesError
		syntaxErr       *json.SyntaxError
		typeErr         *json.UnmarshalTypeError
		invalidTargetEr *json.InvalidUnmarshalError
	)

	switch {
	case errors.As(err, &maxBytesErr):
		return NewBadRequestError(constants.MsgRequestBodyTooLarge)
	case errors.Is(err, io.EOF):
		return NewBadRequestError(constants.MsgEmptyRequestBody)
	case errors.Is(err, io.ErrUnexpectedEOF):
		return NewBadRequestError(constants.MsgMalformedJSON)
	case errors.As(err, &syntaxErr):
		return NewBadRequestError(fmt.Sprintf("%s (at position %d)", constants.MsgMalformedJSON, syntaxErr.Offset))
	case errors.As(err, &typeErr):
		if typeErr.Field != "" {
			return NewValidationError(typeErr.Field, fmt.Sprintf("Must be a %s", typeErr.Type.String()))
		}
		return NewBadRequestError(fmt.Sprintf("Request body contains incorrect JSON type (at position %d)", typeErr.Offset))
	case errors.As(err, &invalidTargetEr):
		return NewInternalServerError(err)
	}

	// encoding/json has no typed error for unknown fields
	if field, ok := strings.CutPrefix(err.Error(), "json: unknown field "); ok {
		return NewValidationError("unknown_field", fmt.Sprintf("Request body contains unknown field %s", field))
	}

	return NewBadRequestError(fmt.Sprintf("Error decoding JSON: %s", err.Error()))
}

// ValidateStruct validates v against its validate tags. A single failing
// field yields a field error, several yield one error with per-field details.
func ValidateStruct(v interface{}) error {
	err := GetValidator().Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return NewBadRequestError(err.Error())
	}

	if len(fieldErrs) == 1 {
		return NewValidationError(fieldErrs[0].Field(), fieldMessage(fieldErrs[0]))
	}

	details := make(map[string]string, len(fieldErrs))
	for _, e := range fieldErrs {
		details[e.Field()] = fieldMessage(e)
	}
	return NewValidationErrorWithDetails("Multiple validation errors", details)
}

// DecodeAndValidate decodes a JSON request body and validates it
func DecodeAndValidate(r *http.Request, v interface{}) error {
	if err := DecodeJSON(r, v); err != nil {
		return err
	}
	return ValidateStruct(v)
}

// fieldMessage returns a user-friendly message for a failed validation tag
func fieldMessage(e validator.FieldError) string {
	if msg, ok := tagMessages[e.Tag()]; ok {
		return msg
	}

	isString := e.Type().Kind() == reflect.String
	switch e.Tag() {
	case "min":
		if isString {
			return fmt.Sprintf("Must be at least %s characters long", e.Param())
		}
		return fmt.Sprintf("Must contain at least %s", e.Param())
	case "max":
		if isString {
			return fmt.Sprintf("Must be at most %s characters long", e.Param())
		}
		return fmt.Sprintf("Must contain at most %s", e.Param())
	case "oneof":
		return "Must be one of: " + strings.Join(strings.Fields(e.Param()), ", ")
	default:
		return fmt.Sprintf("Failed validation on the '%s' tag", e.Tag())
	}
}

// validateNotBlank rejects strings that are empty after trimming whitespace
func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// validateSingleLine rejects strings containing line breaks
func validateSingleLine(fl validator.FieldLevel) bool {
	return !strings.ContainsAny(fl.Field().String(), "\r\n")
}

// NewValidationErrorWithDetails creates a validation error with multiple field details
func NewValidationErrorWithDetails(message string, details map[string]string) *AppError {
	detailsMap := make(map[string]interface{}, len(details))
	for k, v := range details {
		detailsMap[k] = v
	}

	return &AppError{
		Err:        ErrValidation,
		StatusCode: http.StatusBadRequest,
		Message:    message,
		Details:    detailsMap,
	}
}

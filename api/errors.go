package api

import (
	"errors"
	"fmt"
	"strings"

	"github.com/elasticinbox/elasticinbox-go/internal/validation"
)

// ValidationError is returned when an argument is rejected locally.
// No request is sent when a ValidationError is returned.
type ValidationError = validation.ValidationError

// Local validation failures. Returned errors may carry the offending value;
// compare with errors.Is.
var (
	ErrInvalidAccount     = validation.ErrInvalidAccount
	ErrInvalidLabel       = validation.ErrInvalidLabel
	ErrInvalidLabelID     = validation.ErrInvalidLabelID
	ErrInvalidUUID        = validation.ErrInvalidUUID
	ErrInvalidDate        = validation.ErrInvalidDate
	ErrInvalidPartID      = validation.ErrInvalidPartID
	ErrInvalidContentID   = validation.ErrInvalidContentID
	ErrInvalidMarker      = validation.ErrInvalidMarker
	ErrInvalidCount       = validation.ErrInvalidCount
	ErrEmptyMessage       = validation.ErrEmptyMessage
	ErrNoModifications    = validation.ErrNoModifications
	ErrNoMessages         = validation.ErrNoMessages
	ErrAdjacentNeedsLabel = validation.ErrAdjacentNeedsLabel
	ErrStartNeedsCount    = validation.ErrStartNeedsCount
)

var (
	// ErrNoHost is returned by New when neither Host nor Hostname is set.
	ErrNoHost = errors.New("no host specified")

	// ErrNotFound is returned when the server answers 404.
	ErrNotFound = errors.New("resource not found")

	// ErrNotImplemented is returned by operations the server does not offer.
	ErrNotImplemented = errors.New("not implemented")
)

// ServerError is returned when the server answers 500. The message is the
// response body exactly as sent.
type ServerError struct {
	Body string
}

func (e *ServerError) Error() string {
	if strings.TrimSpace(e.Body) == "" {
		return "internal server error"
	}
	return e.Body
}

// APIError is returned for any status other than the expected one, 404 or 500.
type APIError struct {
	StatusCode int
	Body       string
	RequestID  string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("could not access ElasticInbox server (status %d): %s", e.StatusCode, e.Body)
	if e.RequestID != "" {
		msg += fmt.Sprintf(" [request_id: %s]", e.RequestID)
	}
	return msg
}

// IsValidationError reports whether err was produced by local validation.
func IsValidationError(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}

// IsNotFoundError reports whether err indicates a missing resource.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsServerError reports whether err is a server fault (status 500).
func IsServerError(err error) bool {
	var e *ServerError
	return errors.As(err, &e)
}

// IsAPIError reports whether err is an unexpected status from the server.
func IsAPIError(err error) bool {
	var e *APIError
	return errors.As(err, &e)
}

// StatusCode returns the HTTP status behind err, or 0 when err did not come
// from a server response.
func StatusCode(err error) int {
	var apiErr *APIError
	switch {
	case err == nil:
		return 0
	case errors.As(err, &apiErr):
		return apiErr.StatusCode
	case IsServerError(err):
		return 500
	case IsNotFoundError(err):
		return 404
	default:
		return 0
	}
}

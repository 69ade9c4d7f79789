package dto

import (
	"errors"
	"net/http"

	"github.com/erp/receivables/internal/domain/shared"
)

// Transport error codes. Domain failures are reported with their taxonomy
// kind instead (VALIDATION, CONFLICT, LOCKED, FORBIDDEN, NOT_FOUND, INTERNAL).
const (
	// ErrCodeUnauthorized is used when authentication is required but missing/invalid
	ErrCodeUnauthorized = "UNAUTHORIZED"
	// ErrCodeTokenExpired is used when the auth token has expired
	ErrCodeTokenExpired = "TOKEN_EXPIRED"
	// ErrCodeTokenInvalid is used when the auth token is invalid
	ErrCodeTokenInvalid = "TOKEN_INVALID"
	// ErrCodeRateLimited is used when rate limit is exceeded
	ErrCodeRateLimited = "RATE_LIMITED"
	// ErrCodeRequestTooLarge is used when the body exceeds the configured limit
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
	// ErrCodeDuplicateRequest is used when an Idempotency-Key was already used
	ErrCodeDuplicateRequest = "DUPLICATE_REQUEST"
	// ErrCodeRequestTimeout is used when the request deadline expired
	ErrCodeRequestTimeout = "REQUEST_TIMEOUT"
)

// KindHTTPStatus maps error taxonomy kinds to HTTP status codes
var KindHTTPStatus = map[shared.ErrorKind]int{
	shared.KindValidation: http.StatusBadRequest,
	shared.KindForbidden:  http.StatusForbidden,
	shared.KindNotFound:   http.StatusNotFound,
	shared.KindConflict:   http.StatusConflict,
	shared.KindLocked:     http.StatusLocked,
	shared.KindInternal:   http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error kind.
// Returns 500 Internal Server Error if the kind is not known.
func GetHTTPStatus(kind shared.ErrorKind) int {
	if status, ok := KindHTTPStatus[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// internalMessage replaces every INTERNAL error message on the wire
const internalMessage = "An internal error occurred"

// ErrorFromDomain converts any error into the wire error body. The code is
// the taxonomy kind and Reason carries the granular domain code when it
// differs. Messages of INTERNAL errors are never exposed.
func ErrorFromDomain(err error) (int, *ErrorInfo) {
	kind := shared.KindOf(err)
	info := &ErrorInfo{Code: string(kind), Message: internalMessage}
	if kind == shared.KindInternal {
		return GetHTTPStatus(kind), info
	}
	var de *shared.DomainError
	if errors.As(err, &de) {
		info.Message = de.Message
		if de.Code != string(kind) {
			info.Reason = de.Code
		}
	}
	return GetHTTPStatus(kind), info
}

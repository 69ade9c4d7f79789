package shared

import "errors"

// ErrorKind is the coarse classification every domain error falls into.
// Callers branch on the kind; the Code on DomainError stays specific.
type ErrorKind string

const (
	KindValidation ErrorKind = "VALIDATION"
	KindConflict   ErrorKind = "CONFLICT"
	KindLocked     ErrorKind = "LOCKED"
	KindForbidden  ErrorKind = "FORBIDDEN"
	KindNotFound   ErrorKind = "NOT_FOUND"
	KindInternal   ErrorKind = "INTERNAL"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Kind returns the taxonomy bucket for the error code
func (e *DomainError) Kind() ErrorKind {
	if kind, ok := codeKinds[e.Code]; ok {
		return kind
	}
	switch ErrorKind(e.Code) {
	case KindValidation, KindConflict, KindLocked, KindForbidden, KindNotFound, KindInternal:
		return ErrorKind(e.Code)
	}
	return KindValidation
}

// Is matches domain errors by code so sentinel comparisons work with errors.Is
func (e *DomainError) Is(target error) bool {
	var other *DomainError
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Granular codes
const (
	CodeInvalidInput           = "INVALID_INPUT"
	CodeInvalidAmount          = "INVALID_AMOUNT"
	CodeInvalidState           = "INVALID_STATE"
	CodeInvalidTarget          = "INVALID_TARGET"
	CodeOverrideReasonRequired = "OVERRIDE_REASON_REQUIRED"
	CodeReasonRequired         = "REASON_REQUIRED"
	CodeAlreadyExists          = "ALREADY_EXISTS"
	CodeConcurrentModification = "CONCURRENT_MODIFICATION"
	CodePeriodLocked           = "PERIOD_LOCKED"
	CodeAuditFailed            = "AUDIT_FAILED"
	CodeScanInProgress         = "SCAN_IN_PROGRESS"
	CodeSkipped                = "SKIPPED"
)

var codeKinds = map[string]ErrorKind{
	CodeInvalidInput:           KindValidation,
	CodeInvalidAmount:          KindValidation,
	CodeInvalidState:           KindValidation,
	CodeInvalidTarget:          KindValidation,
	CodeOverrideReasonRequired: KindValidation,
	CodeReasonRequired:         KindValidation,
	CodeAlreadyExists:          KindConflict,
	CodeConcurrentModification: KindConflict,
	CodePeriodLocked:           KindLocked,
	CodeAuditFailed:            KindInternal,
	CodeScanInProgress:         KindConflict,
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError(string(KindNotFound), "Resource not found")
	ErrAlreadyExists       = NewDomainError(CodeAlreadyExists, "Resource already exists")
	ErrInvalidInput        = NewDomainError(CodeInvalidInput, "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError(CodeConcurrentModification, "Resource was modified by another process")
	ErrForbidden           = NewDomainError(string(KindForbidden), "Access to this resource is forbidden")
	ErrInvalidState        = NewDomainError(CodeInvalidState, "Operation not allowed in current state")
	ErrPeriodLocked        = NewDomainError(CodePeriodLocked, "Accounting period is locked")
	ErrScanInProgress      = NewDomainError(CodeScanInProgress, "A suggestion scan is already running")
	ErrInternal            = NewDomainError(string(KindInternal), "Internal error")
)

// KindOf classifies any error. Errors that are not domain errors are INTERNAL.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind()
	}
	return KindInternal
}

// IsKind reports whether err falls into the given taxonomy bucket
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}

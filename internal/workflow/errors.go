package workflow

import (
	"errors"
	"fmt"
)

// Error codes for workflow validation failures. These are user-correctable
// input errors except ErrCodeConfiguration, which indicates a matrix/data bug.
const (
	ErrCodeInvalidTransition       = "INVALID_TRANSITION"
	ErrCodeUnauthorizedActor       = "UNAUTHORIZED_ACTOR"
	ErrCodeMissingReason           = "MISSING_REASON"
	ErrCodeDocumentsIncomplete     = "DOCUMENTS_INCOMPLETE"
	ErrCodeInvalidCommissionState  = "INVALID_COMMISSION_STATE"
	ErrCodeMissingProgramOrPartner = "MISSING_PROGRAM_OR_PARTNER"
	ErrCodeConfiguration           = "CONFIGURATION_ERROR"
	ErrCodeNotFound                = "NOT_FOUND"
)

// Error is a workflow validation failure carrying a stable machine-readable
// code alongside the human-readable message.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// NewError creates a workflow error with the given code.
func NewError(code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// ErrInvalidTransition reports a target status not reachable from the current one.
func ErrInvalidTransition(stage Stage, from, to Status) *Error {
	return NewError(ErrCodeInvalidTransition,
		"transition from %q to %q is not allowed at stage %d", from, to, stage)
}

// ErrUnauthorizedActor reports a role not permitted to set the target status.
func ErrUnauthorizedActor(role Role, to Status) *Error {
	return NewError(ErrCodeUnauthorizedActor,
		"role %q is not authorized to set status %q", role, to)
}

// ErrMissingReason reports a missing reason on a reason-gated transition.
func ErrMissingReason(to Status) *Error {
	return NewError(ErrCodeMissingReason, "a reason is required to set status %q", to)
}

// ErrDocumentsIncomplete reports unsatisfied mandatory document requirements.
func ErrDocumentsIncomplete(stage Stage) *Error {
	return NewError(ErrCodeDocumentsIncomplete,
		"mandatory documents for stage %d are incomplete", stage)
}

// ErrConfiguration reports an unknown (stage, status) pair. This should never
// occur at runtime and is treated as a programming error.
func ErrConfiguration(stage Stage, status Status) *Error {
	return NewError(ErrCodeConfiguration,
		"no authority matrix entry for stage %d status %q", stage, status)
}

// CodeOf extracts the workflow error code from err, or empty string if err is
// not a workflow error.
func CodeOf(err error) string {
	var we *Error
	if errors.As(err, &we) {
		return we.Code
	}
	return ""
}

// Package errors provides standardized error handling for interaction handlers.
package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodePermissionDenied ErrorCode = "PERMISSION_DENIED"
	ErrCodeTimeout          ErrorCode = "TIMEOUT"
	ErrCodeMalformedInput   ErrorCode = "MALFORMED_INPUT"
	ErrCodeMalformedState   ErrorCode = "MALFORMED_STATE"
	ErrCodeNotFound         ErrorCode = "NOT_FOUND"
	ErrCodeDeliveryFailed   ErrorCode = "DELIVERY_FAILED"
	ErrCodeAlreadyDecided   ErrorCode = "ALREADY_DECIDED"
	ErrCodeInternal         ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error. Message is the
// text shown to the member who triggered the interaction.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	cause     error
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// WithMessage returns a copy carrying a different user-facing message.
func (e *StandardError) WithMessage(msg string) *StandardError {
	cp := *e
	cp.Message = msg
	return &cp
}

// ==========================
// 2. Error Constructors
// ==========================

func newError(code ErrorCode, msg, details string, retryable bool, cause error) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   msg,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

func detailsOf(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// NewPermissionDeniedError is returned when the platform refuses an action.
func NewPermissionDeniedError(msg string, cause error) *StandardError {
	return newError(ErrCodePermissionDenied, msg, detailsOf(cause), false, cause)
}

// NewTimeoutError is returned when a follow-up reply did not arrive in time.
func NewTimeoutError(cause error) *StandardError {
	return newError(ErrCodeTimeout, "Temps écoulé, veuillez recommencer.", detailsOf(cause), true, cause)
}

// NewMalformedInputError reports a reply with the wrong count or kind of references.
func NewMalformedInputError(msg, details string) *StandardError {
	return newError(ErrCodeMalformedInput, msg, details, true, nil)
}

// NewMalformedStateError reports state that could not be decoded from a message.
func NewMalformedStateError(details string) *StandardError {
	return newError(ErrCodeMalformedState,
		"Ce message de validation est illisible ou a été modifié. Veuillez demander à un modérateur de relancer /role.",
		details, true, nil)
}

// NewNotFoundError reports a channel, role or member that no longer resolves.
func NewNotFoundError(msg, details string) *StandardError {
	return newError(ErrCodeNotFound, msg, details, true, nil)
}

// NewDeliveryFailedError reports a send or edit rejected by the platform transport.
func NewDeliveryFailedError(cause error) *StandardError {
	return newError(ErrCodeDeliveryFailed,
		"Une erreur est survenue lors de l'envoi du message. Veuillez réessayer.",
		detailsOf(cause), true, cause)
}

// NewAlreadyDecidedError reports a second activation of a decision control.
func NewAlreadyDecidedError(details string) *StandardError {
	return newError(ErrCodeAlreadyDecided, "Cette demande a déjà été traitée.", details, false, nil)
}

// NewInternalError wraps anything unexpected.
func NewInternalError(cause error) *StandardError {
	return newError(ErrCodeInternal, "Une erreur inattendue est survenue. Veuillez réessayer.", detailsOf(cause), true, cause)
}

// ==========================
// 3. Helpers
// ==========================

// AsStandard returns err as a *StandardError, wrapping unknown errors as internal.
func AsStandard(err error) *StandardError {
	if err == nil {
		return nil
	}
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return NewInternalError(err)
}

// CodeOf extracts the error code, INTERNAL_ERROR for foreign errors.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	return AsStandard(err).Code
}

// Is reports whether err carries the given code.
func Is(err error, code ErrorCode) bool {
	return err != nil && CodeOf(err) == code
}

// GetErrorCategory groups codes for metrics and logs.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeMalformedInput, ErrCodeMalformedState, ErrCodeAlreadyDecided:
		return "user"
	case ErrCodePermissionDenied, ErrCodeNotFound:
		return "platform"
	case ErrCodeTimeout, ErrCodeDeliveryFailed:
		return "transient"
	default:
		return "internal"
	}
}

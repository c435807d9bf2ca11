package apperrors

import (
	"fmt"
	"net/http"
)

type ErrorType string

const (
	ErrInvalidAmount       ErrorType = "INVALID_AMOUNT"
	ErrInsufficientBalance ErrorType = "INSUFFICIENT_BALANCE"
	ErrShareOverflow       ErrorType = "SHARE_OVERFLOW"
	ErrShareOutOfRange     ErrorType = "SHARE_OUT_OF_RANGE"
	ErrLengthMismatch      ErrorType = "LENGTH_MISMATCH"
	ErrVenueUnhealthy      ErrorType = "VENUE_UNHEALTHY"
	ErrEmptyDescription    ErrorType = "EMPTY_DESCRIPTION"
	ErrUnauthorized        ErrorType = "UNAUTHORIZED"
	ErrInvalidRequest      ErrorType = "INVALID_REQUEST"
	ErrInternal            ErrorType = "INTERNAL_ERROR"
	ErrNotFound            ErrorType = "NOT_FOUND"
	ErrUpstream            ErrorType = "UPSTREAM_ERROR"
	ErrReadOnly            ErrorType = "READ_ONLY"
)

// AppError is the standard error struct for the application
type AppError struct {
	Type       ErrorType `json:"code"`
	Message    string    `json:"message"`
	Suggestion string    `json:"suggestion,omitempty"`
	HTTPStatus int       `json:"-"`
	Cause      error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func New(errType ErrorType, msg string, cause error) *AppError {
	return &AppError{
		Type:       errType,
		Message:    msg,
		Cause:      cause,
		HTTPStatus: mapTypeToStatus(errType),
		Suggestion: mapTypeToSuggestion(errType),
	}
}

func Newf(errType ErrorType, format string, args ...any) *AppError {
	return New(errType, fmt.Sprintf(format, args...), nil)
}

func NewInvalidAmount(msg string) *AppError {
	return New(ErrInvalidAmount, msg, nil)
}

func NewInvalidRequest(msg string) *AppError {
	return New(ErrInvalidRequest, msg, nil)
}

func Wrap(err error) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return New(ErrInternal, err.Error(), err)
}

// Is reports whether err is an AppError of the given type.
func Is(err error, errType ErrorType) bool {
	appErr, ok := err.(*AppError)
	return ok && appErr.Type == errType
}

func mapTypeToStatus(t ErrorType) int {
	switch t {
	case ErrInvalidAmount, ErrEmptyDescription, ErrLengthMismatch, ErrInvalidRequest:
		return http.StatusBadRequest
	case ErrInsufficientBalance:
		return http.StatusConflict
	case ErrShareOverflow, ErrShareOutOfRange:
		return http.StatusUnprocessableEntity
	case ErrUnauthorized:
		return http.StatusUnauthorized
	case ErrNotFound:
		return http.StatusNotFound
	case ErrVenueUnhealthy, ErrReadOnly:
		return http.StatusServiceUnavailable
	case ErrUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func mapTypeToSuggestion(t ErrorType) string {
	switch t {
	case ErrInvalidAmount:
		return "Amounts must be positive."
	case ErrInsufficientBalance:
		return "Check the account principal before withdrawing."
	case ErrShareOverflow:
		return "user_bps + platform_bps + reserve_bps must not exceed 10000."
	case ErrShareOutOfRange:
		return "Each share must be between 0 and 10000 basis points."
	case ErrLengthMismatch:
		return "Batch account_ids, amounts and descriptions must have equal length."
	case ErrVenueUnhealthy:
		return "Wait for the venue to report healthy again."
	case ErrEmptyDescription:
		return "Every balance-affecting event needs an audit description."
	case ErrUnauthorized:
		return "Check API keys and required role."
	default:
		return ""
	}
}

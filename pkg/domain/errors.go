package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes returned to API clients. These are stable contract values;
// storage-layer error text is never exposed alongside them.
const (
	CodeValidation        = "VALIDATION_ERROR"
	CodeInvalidDateRange  = "INVALID_DATE_RANGE"
	CodeRoomNotFound      = "ROOM_NOT_FOUND"
	CodeCapacityExceeded  = "CAPACITY_EXCEEDED"
	CodeRoomUnavailable   = "ROOM_UNAVAILABLE"
	CodeConflict          = "CONFLICT"
	CodeForbidden         = "FORBIDDEN"
	CodeNotFound          = "NOT_FOUND"
	CodeAlreadyCancelled  = "ALREADY_CANCELLED"
	CodeInvalidTransition = "INVALID_TRANSITION"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeInternal          = "INTERNAL_ERROR"
)

// AppError is a typed application error carrying a stable code and the
// HTTP status it maps to at the transport boundary.
type AppError struct {
	Code    string
	Message string
	Status  int
}

// Error implements the error interface.
func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// AsAppError unwraps err into an *AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// NewValidationError reports invalid request input.
func NewValidationError(message string) *AppError {
	return &AppError{Code: CodeValidation, Message: message, Status: http.StatusBadRequest}
}

// NewInvalidDateRangeError reports a check-in/check-out ordering problem.
func NewInvalidDateRangeError(message string) *AppError {
	return &AppError{Code: CodeInvalidDateRange, Message: message, Status: http.StatusBadRequest}
}

// NewRoomNotFoundError reports a missing or inactive room.
func NewRoomNotFoundError(id string) *AppError {
	return &AppError{Code: CodeRoomNotFound, Message: fmt.Sprintf("room %s not found", id), Status: http.StatusNotFound}
}

// NewCapacityExceededError reports a guest count above the room's capacity.
func NewCapacityExceededError(message string) *AppError {
	return &AppError{Code: CodeCapacityExceeded, Message: message, Status: http.StatusBadRequest}
}

// NewRoomUnavailableError reports inventory exhaustion for the requested
// dates. This is an expected business outcome, not a system error.
func NewRoomUnavailableError() *AppError {
	return &AppError{
		Code:    CodeRoomUnavailable,
		Message: "room is not available for the selected dates",
		Status:  http.StatusConflict,
	}
}

// NewConflictError reports a transient concurrency conflict that survived
// the retry budget. Callers may retry the whole request.
func NewConflictError(message string) *AppError {
	return &AppError{Code: CodeConflict, Message: message, Status: http.StatusConflict}
}

// NewForbiddenError reports an authorization failure.
func NewForbiddenError(message string) *AppError {
	return &AppError{Code: CodeForbidden, Message: message, Status: http.StatusForbidden}
}

// NewNotFoundError reports a missing entity.
func NewNotFoundError(entity, id string) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s %s not found", entity, id),
		Status:  http.StatusNotFound,
	}
}

// NewAlreadyCancelledError reports a repeated cancellation attempt.
func NewAlreadyCancelledError() *AppError {
	return &AppError{Code: CodeAlreadyCancelled, Message: "booking is already cancelled", Status: http.StatusConflict}
}

// NewInvalidTransitionError reports an illegal state-machine edge.
func NewInvalidTransitionError(from, to string) *AppError {
	return &AppError{
		Code:    CodeInvalidTransition,
		Message: fmt.Sprintf("cannot transition from %s to %s", from, to),
		Status:  http.StatusConflict,
	}
}

// NewUnauthorizedError reports a missing or invalid credential.
func NewUnauthorizedError() *AppError {
	return &AppError{Code: CodeUnauthorized, Message: "unauthorized", Status: http.StatusUnauthorized}
}

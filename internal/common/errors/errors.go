package errors

import (
	"fmt"
	"runtime"
	"strings"
	"time"
)

// ErrorCode identifies a structured failure outcome.
type ErrorCode string

const (
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
	ErrCodeValidation   ErrorCode = "VALIDATION_ERROR"
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeConflict     ErrorCode = "CONFLICT"

	// Payment engine outcomes. These are distinct on the wire and must never
	// be collapsed into a generic failure.
	ErrCodeInsufficientFunds ErrorCode = "INSUFFICIENT_FUNDS"
	ErrCodeAddressResolution ErrorCode = "ADDRESS_RESOLUTION_FAILED"
	ErrCodeTransactionBuild  ErrorCode = "TX_BUILD_FAILED"
	ErrCodeTokenNotFound     ErrorCode = "TOKEN_NOT_FOUND"
	ErrCodeSubmission        ErrorCode = "SUBMISSION_FAILED"

	// Storage and cache failures.
	ErrCodeDatabaseError ErrorCode = "DATABASE_ERROR"
	ErrCodeChatNotFound  ErrorCode = "CHAT_NOT_FOUND"
	ErrCodeUserNotFound  ErrorCode = "USER_NOT_FOUND"
)

// AppError is a typed application error carried through handlers.
type AppError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Stack     []string               `json:"stack,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	RequestID string                 `json:"request_id,omitempty"`
	Cause     error                  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// IsNotFound reports whether the error is any of the "not found" outcomes.
func (e *AppError) IsNotFound() bool {
	return e.Code == ErrCodeNotFound ||
		e.Code == ErrCodeChatNotFound ||
		e.Code == ErrCodeUserNotFound ||
		e.Code == ErrCodeTokenNotFound
}

// IsRetryable reports whether the caller may retry after the error. Only
// query-layer failures qualify; anything past a state-mutating step must not
// be retried.
func (e *AppError) IsRetryable() bool {
	return e.Code == ErrCodeAddressResolution
}

// WithDetail attaches structured detail to the error.
func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithRequestID attaches the originating request id.
func (e *AppError) WithRequestID(requestID string) *AppError {
	e.RequestID = requestID
	return e
}

// New creates a new application error.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
		Stack:     getStackTrace(),
	}
}

// Wrap wraps an existing error with a code and message.
func Wrap(err error, code ErrorCode, message string) *AppError {
	appErr := New(code, message)
	appErr.Cause = err
	return appErr
}

// Wrapf wraps an existing error with a formatted message.
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *AppError {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

func getStackTrace() []string {
	var stack []string
	for i := 2; ; i++ {
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}
		fn := runtime.FuncForPC(pc)
		if fn == nil {
			continue
		}
		if strings.Contains(fn.Name(), "internal/common/errors") {
			continue
		}
		stack = append(stack, fmt.Sprintf("%s:%d %s", file, line, fn.Name()))
		if len(stack) >= 10 {
			break
		}
	}
	return stack
}

// NewInsufficientFundsError marks a coin selection that could not cover the
// requested amount plus the fee bound. Expected outcome, not exceptional.
func NewInsufficientFundsError(stake string) *AppError {
	return New(ErrCodeInsufficientFunds, "Not enough funds to cover amount and fee").
		WithDetail("stake_address", stake)
}

// NewAddressResolutionError marks a failed ledger query; retryable by caller.
func NewAddressResolutionError(stake string, err error) *AppError {
	return Wrap(err, ErrCodeAddressResolution, "Failed to resolve payment addresses").
		WithDetail("stake_address", stake)
}

// NewTransactionBuildError marks an internal consistency failure during
// transaction construction.
func NewTransactionBuildError(err error) *AppError {
	return Wrap(err, ErrCodeTransactionBuild, "Failed to build transaction")
}

// NewTokenNotFoundError marks a consume attempt on an absent, expired, or
// already-used linking token.
func NewTokenNotFoundError() *AppError {
	return New(ErrCodeTokenNotFound, "Linking token not found or no longer valid")
}

// NewSubmissionError marks a rejected or failed ledger submission. Terminal
// for the attempt; never retried automatically.
func NewSubmissionError(err error) *AppError {
	return Wrap(err, ErrCodeSubmission, "Ledger rejected transaction submission")
}

// NewChatNotFoundError marks a lookup of an unknown chat record.
func NewChatNotFoundError(chatID string) *AppError {
	return New(ErrCodeChatNotFound, fmt.Sprintf("Chat not found: %s", chatID)).
		WithDetail("chat_id", chatID)
}

// NewValidationError marks a malformed request field.
func NewValidationError(field, reason string) *AppError {
	return New(ErrCodeValidation, fmt.Sprintf("Validation failed for field '%s': %s", field, reason)).
		WithDetail("field", field).
		WithDetail("reason", reason)
}

// NewDatabaseError marks a failed storage operation.
func NewDatabaseError(operation string, err error) *AppError {
	return Wrap(err, ErrCodeDatabaseError, fmt.Sprintf("Storage operation failed: %s", operation)).
		WithDetail("operation", operation)
}

// AsAppError extracts an AppError from err when possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if err != nil {
		appErr, _ = err.(*AppError)
	}
	return appErr, appErr != nil
}

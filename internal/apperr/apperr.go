package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Application error codes. HTTP-shaped codes stay below 1000, reward-flow
// codes start at 1000.
const (
	CodeInvalidRequest = 400
	CodeUnauthorized   = 401
	CodeNotFound       = 404
	CodeInternal       = 500

	CodeValidation             = 1001
	CodeAuth                   = 1002
	CodePersistence            = 1003
	CodeInsufficientBalance    = 1004
	CodeSpinsExhausted         = 1005
	CodeMissingAccountID       = 1006
	CodeAdGateBusy             = 1007
	CodeAdGateNotReady         = 1008
	CodeReconciliationRequired = 1009
	CodeSpinInFlight           = 1010
)

// Error is the application error carried from services up to handlers.
// Message is safe to show the user; Err keeps the cause for logs.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(code int, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Wrap(err error, code int, message string) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

func Validation(message string) *Error {
	return New(CodeValidation, message)
}

func Persistence(err error, message string) *Error {
	return Wrap(err, CodePersistence, message)
}

// Code extracts the application code from any error chain.
func Code(err error) int {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// Message returns the user-safe message for any error chain.
func Message(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "internal error"
}

// HTTPStatus maps an application code to an HTTP status.
func HTTPStatus(code int) int {
	switch code {
	case CodeInvalidRequest, CodeValidation, CodeInsufficientBalance,
		CodeSpinsExhausted, CodeMissingAccountID, CodeAdGateNotReady:
		return http.StatusBadRequest
	case CodeUnauthorized, CodeAuth:
		return http.StatusUnauthorized
	case CodeNotFound:
		return http.StatusNotFound
	case CodeAdGateBusy, CodeSpinInFlight:
		return http.StatusConflict
	case CodePersistence, CodeReconciliationRequired:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

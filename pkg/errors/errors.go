package errors

import (
	stderrors "errors"
	"fmt"
)

type AppError struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Cause }

// Constructors
func New(code Code, message string) error {
	return &AppError{Code: code, Message: message}
}

func Wrap(code Code, message string, cause error) error {
	return &AppError{Code: code, Message: message, Cause: cause}
}

func UnknownRole(role string) error {
	return New(CodeUnknownRole, fmt.Sprintf("unknown role: %s", role))
}

func InvalidField(field string) error {
	return New(CodeInvalidField, fmt.Sprintf("invalid field: %s", field))
}

func AccessDenied(msg string) error {
	return New(CodeAccessDenied, msg)
}

func NotFound(msg string) error {
	return New(CodeNotFound, msg)
}

func StoreUnavailable(cause error) error {
	return Wrap(CodeStoreUnavailable, "document store unavailable", cause)
}

func SummaryUnavailable(cause error) error {
	return Wrap(CodeSummaryUnavailable, "summary generation unavailable", cause)
}

func Internal(msg string) error {
	return New(CodeInternal, msg)
}

// IsCode reports whether err carries the given code anywhere in its chain.
func IsCode(err error, code Code) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

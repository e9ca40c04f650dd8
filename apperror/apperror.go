// Package apperror defines the error kinds reported back to the interactive session.
package apperror

import (
	"errors"
	"fmt"
)

type ErrorCode string

const (
	ErrCodeValidation    ErrorCode = "VALIDATION_ERROR"
	ErrCodeNotFound      ErrorCode = "NOT_FOUND"
	ErrCodeDuplicate     ErrorCode = "DUPLICATE"
	ErrCodeConfigMissing ErrorCode = "CONFIG_MISSING"
	ErrCodeTransport     ErrorCode = "TRANSPORT_ERROR"
	ErrCodeDatabase      ErrorCode = "DATABASE_ERROR"
)

type AppError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

func Newf(code ErrorCode, format string, args ...any) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...)}
}

func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message, Cause: err}
}

func Validation(format string, args ...any) *AppError {
	return Newf(ErrCodeValidation, format, args...)
}

func NotFound(format string, args ...any) *AppError {
	return Newf(ErrCodeNotFound, format, args...)
}

func Database(err error, message string) *AppError {
	return Wrap(err, ErrCodeDatabase, message)
}

func is(err error, code ErrorCode) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

func IsValidation(err error) bool    { return is(err, ErrCodeValidation) }
func IsNotFound(err error) bool      { return is(err, ErrCodeNotFound) }
func IsDuplicate(err error) bool     { return is(err, ErrCodeDuplicate) }
func IsConfigMissing(err error) bool { return is(err, ErrCodeConfigMissing) }
func IsTransport(err error) bool     { return is(err, ErrCodeTransport) }

// Message returns the user-facing text of err: the AppError message when there is one,
// the plain error text otherwise.
func Message(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

var (
	ErrInvalidNumber = New(ErrCodeValidation, "value must be a non-negative number")
	ErrInvalidURL    = New(ErrCodeValidation, "invalid link, enter a full URL (e.g. https://...)")
	ErrInvalidStatus = New(ErrCodeValidation, "invalid status option")
	ErrDuplicateMail = New(ErrCodeDuplicate, "this email is already registered")
	ErrEmailNotSetUp = New(ErrCodeConfigMissing, "email configuration not found, configure it first")
)

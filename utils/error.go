package utils

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorKind classifies recoverable domain failures.
type ErrorKind string

const (
	KindValidation    ErrorKind = "validation"
	KindNotFound      ErrorKind = "not_found"
	KindAuthorization ErrorKind = "authorization"
	KindConflict      ErrorKind = "conflict"
	KindTiming        ErrorKind = "timing"
	KindState         ErrorKind = "state"
)

// AppError is returned by the engines for every expected, caller-visible failure.
// Anything that is not an *AppError (store outages, decode failures) is fatal for the request.
type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

func newAppError(kind ErrorKind, format string, args ...any) *AppError {
	return &AppError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func NewValidationError(format string, args ...any) error {
	return newAppError(KindValidation, format, args...)
}

func NewNotFoundError(format string, args ...any) error {
	return newAppError(KindNotFound, format, args...)
}

func NewAuthorizationError(format string, args ...any) error {
	return newAppError(KindAuthorization, format, args...)
}

func NewConflictError(format string, args ...any) error {
	return newAppError(KindConflict, format, args...)
}

func NewTimingError(format string, args ...any) error {
	return newAppError(KindTiming, format, args...)
}

func NewStateError(format string, args ...any) error {
	return newAppError(KindState, format, args...)
}

// KindOf returns the kind of err, or "" when err is not an *AppError.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

// IsKind reports whether err (or anything it wraps) is an *AppError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}

// IsAppError reports whether err is an expected domain failure.
func IsAppError(err error) bool {
	return KindOf(err) != ""
}

// HTTPStatus maps an error to the status code the API answers with.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindAuthorization:
		return http.StatusForbidden
	case KindConflict, KindState:
		return http.StatusConflict
	case KindTiming:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// ErrorResponse defines the structure of error responses
type ErrorResponse struct {
	Message string    `json:"message"`
	Kind    ErrorKind `json:"kind,omitempty"`
	Details string    `json:"details,omitempty"`
}

// ErrorHandler is a middleware to catch panics and return structured errors
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				Logger := GetLogger()
				Logger.Error("Unhandled panic", zap.Any("error", err))

				c.JSON(http.StatusInternalServerError, ErrorResponse{
					Message: "Internal Server Error",
					Details: "An unexpected error occurred. Please try again later.",
				})
				c.Abort()
			}
		}()
		c.Next()
	}
}

// JSONError sends a standardized JSON error response
func JSONError(c *gin.Context, status int, message string, details string) {
	Logger := GetLogger()
	Logger.Warn(message, zap.String("details", details))
	c.JSON(status, ErrorResponse{Message: message, Details: details})
}

// RespondError writes err with the status its kind maps to. Store failures are
// logged and hidden behind a generic message.
func RespondError(c *gin.Context, err error) {
	status := HTTPStatus(err)
	if status == http.StatusInternalServerError {
		GetLogger().Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(status, ErrorResponse{Message: "Internal Server Error"})
		return
	}
	var appErr *AppError
	errors.As(err, &appErr)
	c.JSON(status, ErrorResponse{Message: appErr.Message, Kind: appErr.Kind})
}

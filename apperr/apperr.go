// Package apperr carries the business error kinds raised by the shop core and
// their mapping onto HTTP responses.
package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Kind int

const (
	Internal Kind = iota
	NotFound
	InvalidArgument
	InvalidState
	InsufficientStock
	Forbidden
	SecurityViolation
	Conflict
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "NotFound"
	case InvalidArgument:
		return "InvalidArgument"
	case InvalidState:
		return "InvalidState"
	case InsufficientStock:
		return "InsufficientStock"
	case Forbidden:
		return "Forbidden"
	case SecurityViolation:
		return "SecurityViolation"
	case Conflict:
		return "Conflict"
	default:
		return "Internal"
	}
}

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Message == "" {
		return e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and client-facing message to a lower level error.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or Internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// Is reports whether err is of the given kind. InsufficientStock also
// satisfies InvalidState.
func Is(err error, kind Kind) bool {
	if err == nil {
		return false
	}
	got := KindOf(err)
	if got == kind {
		return true
	}
	return kind == InvalidState && got == InsufficientStock
}

func Status(err error) int {
	switch KindOf(err) {
	case NotFound:
		return http.StatusNotFound
	case InvalidArgument:
		return http.StatusBadRequest
	case InvalidState, InsufficientStock, Conflict:
		return http.StatusConflict
	case Forbidden, SecurityViolation:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// Respond writes the standard {"error": ...} envelope and aborts the chain.
// Internal errors are logged with their cause and masked for the client.
func Respond(c *gin.Context, err error) {
	status := Status(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		zap.L().Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		msg = "internal server error"
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

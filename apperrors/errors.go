// Package apperrors classifies failures so handlers can map them to HTTP
// statuses.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

type Kind string

const (
	KindValidation Kind = "validation"
	KindNotFound   Kind = "not_found"
	KindUpstream   Kind = "upstream"
	KindInternal   Kind = "internal"
)

// AppError carries a user-facing message and the underlying cause.
type AppError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func Validation(message string) error {
	return &AppError{Kind: KindValidation, Message: message}
}

func NotFound(message string) error {
	return &AppError{Kind: KindNotFound, Message: message}
}

func Upstream(message string, err error) error {
	return &AppError{Kind: KindUpstream, Message: message, Err: err}
}

func Internal(message string, err error) error {
	return &AppError{Kind: KindInternal, Message: message, Err: err}
}

// KindOf returns the kind of the first AppError in err's chain, or
// KindInternal for anything else.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// StatusCode maps an error kind to its HTTP status.
func StatusCode(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the user-facing message of err. Internal errors never
// leak their cause.
func Message(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "Internal server error"
}

// Fields is implemented by errors that carry per-field details, such as
// request validation failures.
type Fields interface {
	FieldErrors() map[string]string
}

// Respond writes err as a JSON error body with the matching status.
func Respond(c *gin.Context, err error) {
	body := gin.H{"error": Message(err)}
	var fields Fields
	if errors.As(err, &fields) {
		body["fields"] = fields.FieldErrors()
	}
	c.JSON(StatusCode(err), body)
}

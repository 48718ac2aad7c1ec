// Package errors renders failures as the JSON error body of the REST API.
//
// Handlers return *echo.HTTPError built here, so echo's error handler
// serializes the body and the access log records the cause.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	domerr "github.com/hubcluster/hubcluster/pkg/domain/errors"
	"github.com/labstack/echo/v4"
)

// ErrorMessage is the body of an error response.
type ErrorMessage struct {
	Reason string `json:"reason"`
	Advice string `json:"advice,omitempty"`
	Cause  error  `json:"-"`
}

func (e ErrorMessage) String() string {
	sb := new(strings.Builder)
	sb.WriteString(e.Reason)
	if e.Advice != "" {
		sb.WriteString("\n")
		sb.WriteString(e.Advice)
	}
	if e.Cause != nil {
		fmt.Fprintf(sb, "\ncaused by: %s", e.Cause.Error())
	}
	return sb.String()
}

func (e ErrorMessage) Error() string {
	return e.String()
}

func (e ErrorMessage) Unwrap() error {
	return e.Cause
}

type ErrorMessageOption func(*ErrorMessage)

func WithAdvice(advice string) ErrorMessageOption {
	return func(em *ErrorMessage) {
		if advice != "" {
			em.Advice = advice
		}
	}
}

func WithError(err error) ErrorMessageOption {
	return func(em *ErrorMessage) {
		if err != nil {
			em.Cause = err
		}
	}
}

// NewErrorMessage builds an *echo.HTTPError with an ErrorMessage body.
//
// The message is also set as the internal error, so the cause reaches
// the request log without being exposed in the response.
func NewErrorMessage(code int, reason string, opts ...ErrorMessageOption) *echo.HTTPError {
	msg := ErrorMessage{Reason: reason}
	for _, opt := range opts {
		opt(&msg)
	}

	return echo.NewHTTPError(code, msg).SetInternal(msg)
}

func NotFound() *echo.HTTPError {
	return NewErrorMessage(http.StatusNotFound, "not found")
}

func BadRequest(advice string, err error) *echo.HTTPError {
	return NewErrorMessage(
		http.StatusBadRequest,
		"bad request",
		WithAdvice(advice),
		WithError(err),
	)
}

func Unauthorized(advice string, err error) *echo.HTTPError {
	return NewErrorMessage(
		http.StatusUnauthorized,
		"unauthorized",
		WithAdvice(advice),
		WithError(err),
	)
}

func Forbidden(advice string) *echo.HTTPError {
	return NewErrorMessage(
		http.StatusForbidden,
		"forbidden",
		WithAdvice(advice),
	)
}

func Conflict(message string, options ...ErrorMessageOption) *echo.HTTPError {
	return NewErrorMessage(
		http.StatusConflict,
		message,
		options...,
	)
}

func InternalServerError(err error) *echo.HTTPError {
	return NewErrorMessage(
		http.StatusInternalServerError,
		"unexpected error",
		WithError(err),
	)
}

// FromError renders a domain error as the HTTP response it maps to.
//
// - missing records: 404
// - conflicts (duplicate hub or user): 409
// - validation failures: 400
// - failed preconditions (namespace must pre-exist): 409
// - deploy and teardown failures: 500, the reason names the failure
//
// Anything else is an unexpected 500.
func FromError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, domerr.ErrMissing):
		return NotFound()
	case domerr.AsConflict(err):
		return Conflict(err.Error(), WithError(err))
	case domerr.AsValidation(err):
		return BadRequest(err.Error(), err)
	case domerr.AsPreconditionFailed(err):
		return Conflict(err.Error(), WithError(err))
	case domerr.AsDeploymentFailed(err), domerr.AsTeardownFailed(err):
		return NewErrorMessage(
			http.StatusInternalServerError, err.Error(), WithError(err),
		)
	default:
		return InternalServerError(err)
	}
}

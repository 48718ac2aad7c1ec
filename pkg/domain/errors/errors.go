package errors

import (
	"errors"
	"fmt"

	xe "github.com/hubcluster/hubcluster/pkg/errors"
)

// requested record does not exist.
var ErrMissing = errors.New("missing")

// NewMissing reports a record that does not exist.
//
// The returned error unwraps to ErrMissing for errors.Is tests.
func NewMissing(message string) error {
	return xe.WrapAsOuter(fmt.Errorf("%s: %w", message, ErrMissing), 1)
}

type wrappingError struct {
	message  string
	causedBy error
}

func as[E error](err error) bool {
	if err == nil {
		return false
	}
	p := new(E)
	return errors.As(err, p)
}

func format(e struct {
	message  string
	causedBy error
}) string {
	if e.causedBy == nil {
		return e.message
	}
	if e.message == "" {
		return fmt.Sprintf("caused by: %+v", e.causedBy)
	}

	return fmt.Sprintf("%s / caused by: %+v", e.message, e.causedBy)
}

// Caller input is rejected by policy: invalid namespace name, namespace
// already in use, quota or prefix restriction violated.
//
// Raised synchronously before any persisted state is touched.
type ErrValidation wrappingError

var AsValidation = as[*ErrValidation]

func NewValidation(message string) error {
	return xe.WrapAsOuter(&ErrValidation{message: message}, 1)
}

func NewValidationCausedBy(message string, err error) error {
	return xe.WrapAsOuter(&ErrValidation{message: message, causedBy: err}, 1)
}

func (e *ErrValidation) Error() string {
	return format(*e)
}

func (e *ErrValidation) Unwrap() error {
	return e.causedBy
}

// A resource the operation depends on must exist beforehand and does not.
//
// The message carries what to provision out-of-band.
type ErrPreconditionFailed wrappingError

var AsPreconditionFailed = as[*ErrPreconditionFailed]

func NewPreconditionFailed(message string) error {
	return xe.WrapAsOuter(&ErrPreconditionFailed{message: message}, 1)
}

func NewPreconditionFailedCausedBy(message string, err error) error {
	return xe.WrapAsOuter(&ErrPreconditionFailed{message: message, causedBy: err}, 1)
}

func (e *ErrPreconditionFailed) Error() string {
	return format(*e)
}

func (e *ErrPreconditionFailed) Unwrap() error {
	return e.causedBy
}

// The deployment tool exited non-zero while installing or upgrading a
// release. The message carries the captured diagnostic output.
type ErrDeploymentFailed wrappingError

var AsDeploymentFailed = as[*ErrDeploymentFailed]

func NewDeploymentFailed(message string) error {
	return xe.WrapAsOuter(&ErrDeploymentFailed{message: message}, 1)
}

func NewDeploymentFailedCausedBy(message string, err error) error {
	return xe.WrapAsOuter(&ErrDeploymentFailed{message: message, causedBy: err}, 1)
}

func (e *ErrDeploymentFailed) Error() string {
	return format(*e)
}

func (e *ErrDeploymentFailed) Unwrap() error {
	return e.causedBy
}

// The deployment tool exited non-zero while uninstalling a release
// (for a reason other than "release not found").
type ErrTeardownFailed wrappingError

var AsTeardownFailed = as[*ErrTeardownFailed]

func NewTeardownFailed(message string) error {
	return xe.WrapAsOuter(&ErrTeardownFailed{message: message}, 1)
}

func NewTeardownFailedCausedBy(message string, err error) error {
	return xe.WrapAsOuter(&ErrTeardownFailed{message: message, causedBy: err}, 1)
}

func (e *ErrTeardownFailed) Error() string {
	return format(*e)
}

func (e *ErrTeardownFailed) Unwrap() error {
	return e.causedBy
}

// Creating a record which already exists.
type ErrConflict wrappingError

var AsConflict = as[*ErrConflict]

func NewConflict(message string) error {
	return xe.WrapAsOuter(&ErrConflict{message: message}, 1)
}

func NewConflictCausedBy(message string, err error) error {
	return xe.WrapAsOuter(&ErrConflict{message: message, causedBy: err}, 1)
}

func (e *ErrConflict) Error() string {
	return format(*e)
}

func (e *ErrConflict) Unwrap() error {
	return e.causedBy
}

package k8s

import (
	"errors"
	"fmt"

	xe "github.com/hubcluster/hubcluster/pkg/errors"
)

// Requested k8s resource does not exist.
type ErrMissing struct {
	message  string
	causedBy error
}

// AsMissingError reports whether err means a k8s resource which is not there.
func AsMissingError(err error) bool {
	if err == nil {
		return false
	}
	missing := new(*ErrMissing)
	return errors.As(err, missing)
}

func NewMissingCausedBy(message string, err error) error {
	return xe.WrapAsOuter(&ErrMissing{message: message, causedBy: err}, 1)
}

func (e *ErrMissing) Error() string {
	if e.message == "" {
		return fmt.Sprintf("caused by: %+v", e.causedBy)
	}
	return fmt.Sprintf("%s / caused by: %+v", e.message, e.causedBy)
}

func (e *ErrMissing) Unwrap() error {
	return e.causedBy
}

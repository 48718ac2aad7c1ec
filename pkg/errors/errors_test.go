package errors_test

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"testing"

	xe "github.com/hubcluster/hubcluster/pkg/errors"
)

type rootErr struct{}

func (rootErr) Error() string {
	return "error type for test"
}

func wrapHere(err error) error {
	return xe.Wrap(err)
}

func TestWrap(t *testing.T) {
	t.Run("its message names the wrapping function and file", func(t *testing.T) {
		testee := wrapHere(errors.New("fake error"))
		message := testee.Error()

		_, thisFile, _, _ := runtime.Caller(0)

		if !strings.Contains(message, "wrapHere") {
			t.Errorf("message lacks the function name: %s", message)
		}
		if !strings.Contains(message, thisFile) {
			t.Errorf("message lacks the file %s: %s", thisFile, message)
		}
	})

	t.Run("errors.Is finds the root through wrappings", func(t *testing.T) {
		root := rootErr{}

		testee := xe.Wrap(fmt.Errorf("%w", fmt.Errorf("%w", root)))

		if !errors.Is(testee, root) {
			t.Error("the root error is not reachable by unwrapping")
		}
	})
}

// a stand-in for an error constructor which should not appear in traces.
func constructorLike(err error) error {
	return xe.WrapAsOuter(err, 1)
}

func TestWrapAsOuter(t *testing.T) {
	t.Run("it records the caller of the constructor", func(t *testing.T) {
		testee := constructorLike(errors.New("fake error"))
		message := testee.Error()

		if strings.Contains(message, "constructorLike") {
			t.Errorf("it records the constructor itself: %s", message)
		}
		if !strings.Contains(message, "TestWrapAsOuter") {
			t.Errorf("it does not know the outer caller: %s", message)
		}
	})
}

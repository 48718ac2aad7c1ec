// Package errors wraps errors with the location they passed through.
//
// Wrap(err) returns an error which remembers the function, file and
// line where Wrap was called. Each wrapping prepends one location and
// the marker "<-", so the message of a much-wrapped error reads as a
// trace when split on that marker.
package errors

import (
	"fmt"
	"runtime"
)

type errWithCaller struct {
	file     string
	line     int
	funcname string
	err      error
}

func (e *errWithCaller) Error() string {
	return fmt.Sprintf("%s (%s:%d) <- %s", e.funcname, e.file, e.line, e.err.Error())
}

func (e *errWithCaller) Unwrap() error {
	return e.err
}

func Wrap(err error) error {
	return wrap(err, 1)
}

// WrapAsOuter records the caller `depth` frames above the Wrap call.
//
// Use it in error constructors so the recorded location is the
// constructor's caller, not the constructor itself.
func WrapAsOuter(err error, depth int) error {
	return wrap(err, depth+1)
}

func wrap(err error, depth int) error {
	e := &errWithCaller{
		file: "?", line: -1, funcname: "(unknown func)",
		err: err,
	}

	pc, file, line, ok := runtime.Caller(depth + 1)
	if !ok {
		return e
	}
	e.file = file
	e.line = line
	if fn := runtime.FuncForPC(pc); fn != nil {
		e.funcname = fn.Name()
	}
	return e
}

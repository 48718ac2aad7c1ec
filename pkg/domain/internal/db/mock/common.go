// Package mocks holds pieces shared by the db mock implementations.
package mocks

// CallLog records the argument of each call to a mocked method, in order.
type CallLog[T any] []T

// Times is the number of calls recorded so far.
func (l CallLog[T]) Times() int {
	return len(l)
}

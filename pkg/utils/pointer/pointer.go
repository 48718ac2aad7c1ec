package pointer

// Ref returns a pointer to t. Useful to point at a literal.
func Ref[T any](t T) *T {
	return &t
}

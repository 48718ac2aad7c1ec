package try

// something have method `Fatal`.
//
// For example in standard libraries: *testing.T, log.Logger
type Fataler interface {
	Fatal(...any)
}

// Either is a captured (T, error) pair.
type Either[T any] struct {
	value T
	err   error
}

func To[T any](ok T, ng error) Either[T] {
	return Either[T]{value: ok, err: ng}
}

// OrFatal returns the T value when the pair holds no error.
//
// Otherwise, it calls ftl.Fatal(err).
// If ftl has "Helper()" method (like *testing.T), that is called before Fatal.
func (e Either[T]) OrFatal(ftl Fataler) T {
	if e.err == nil {
		return e.value
	}

	if hlp, ok := ftl.(interface{ Helper() }); ok {
		hlp.Helper()
	}
	ftl.Fatal(e.err)

	return *new(T)
}

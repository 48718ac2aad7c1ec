package postgres

import (
	"fmt"

	domerr "github.com/hubcluster/hubcluster/pkg/domain/errors"
)

// Missing marks a lookup which matched no record.
//
// It unwraps to domerr.ErrMissing, so the REST layer renders it as 404.
type Missing struct {
	Table    string
	Identity string
}

var _ error = Missing{}

func (m Missing) Error() string {
	return fmt.Sprintf(`no record for %s in table "%s"`, m.Identity, m.Table)
}

func (m Missing) Unwrap() error {
	return domerr.ErrMissing
}

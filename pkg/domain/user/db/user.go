package db

import (
	"context"

	"github.com/hubcluster/hubcluster/pkg/domain"
)

// UserSpec carries a user's policy fields: admin, hub cap and namespace
// prefix restrictions.
type UserSpec struct {
	Name  string
	Admin bool

	// MaxHubs caps how many hubs the user may own. nil means no cap.
	MaxHubs *int

	// AllowedNamespacePrefixes restricts which namespaces the user's
	// hubs may map into. Empty means no restriction.
	AllowedNamespacePrefixes []string
}

type UserInterface interface {
	// create a new user record.
	//
	// Returns ErrConflict when a user with the same name exists.
	New(ctx context.Context, spec UserSpec) (domain.User, error)

	// retrieve users by name.
	//
	// Returns mapping name->User. Names of missing users are just
	// absent, not errors.
	Get(ctx context.Context, names []string) (map[string]domain.User, error)

	// find all user names, sorted by name.
	Find(ctx context.Context) ([]string, error)

	// replace the user's policy with spec and touch last_activity.
	//
	// Returns ErrMissing when no user has the name.
	Update(ctx context.Context, spec UserSpec) (domain.User, error)

	// delete the user record.
	//
	// Refused with ErrValidation while the user owns hubs.
	// Returns ErrMissing when no user has the name.
	Delete(ctx context.Context, name string) error
}

package db

import (
	"context"

	"github.com/hubcluster/hubcluster/pkg/domain"
)

// HubSpec is what a new hub record is created from.
//
// Namespace and ReleaseName are derived by the caller from Name,
// never taken from user input.
type HubSpec struct {
	Name         string
	Namespace    string
	Owner        string
	ReleaseName  string
	Chart        string
	ChartVersion string

	// Values must have passed the sanitizer already.
	Values map[string]any

	Description string
}

type HubInterface interface {
	// create a new hub record in status pending.
	//
	// Create policy is enforced in a single transaction, in this order:
	//
	// - no hub with the same name exists (ErrConflict),
	//
	// - the namespace name is valid (ErrValidation),
	//
	// - the namespace is bound to no other hub (ErrValidation),
	//
	// - the owner is under their hub cap, when their user record sets one
	//   (ErrValidation),
	//
	// - the namespace starts with one of the owner's allowed prefixes, when
	//   their user record restricts them (ErrValidation).
	//
	// Owners without a user record are not restricted.
	//
	// Args
	//
	// - context.Context
	//
	// - HubSpec: the record to be created.
	//
	// Returns
	//
	// - Hub: the created hub, status pending.
	//
	// - error
	New(ctx context.Context, spec HubSpec) (domain.Hub, error)

	// retrieve hubs by name.
	//
	// Args
	//
	// - context.Context
	//
	// - []string: hub names.
	//
	// Returns
	//
	// - map[string]Hub: mapping name->Hub. Names of missing hubs are
	// just absent, not errors.
	//
	// - error
	Get(ctx context.Context, names []string) (map[string]domain.Hub, error)

	// find hub names matching the query, sorted by name.
	Find(ctx context.Context, query domain.HubFindQuery) ([]string, error)

	// update hub status, clearing any recorded error message.
	//
	// To move a hub to status error, use SetError.
	//
	// Returns ErrMissing when no hub has the name.
	SetStatus(ctx context.Context, name string, status domain.HubStatus) error

	// mark the hub running at url, clearing any recorded error message
	// and touching last_activity.
	//
	// Returns ErrMissing when no hub has the name.
	SetRunning(ctx context.Context, name string, url string) error

	// mark the hub status error, recording message as its error message.
	//
	// Returns ErrMissing when no hub has the name.
	SetError(ctx context.Context, name string, message string) error

	// delete the hub record. Its events are removed along with it.
	//
	// Returns ErrMissing when no hub has the name.
	Delete(ctx context.Context, name string) error

	// append a lifecycle event for the hub.
	//
	// Events are append-only. They are removed only when their hub is.
	//
	// Returns ErrMissing when no hub has the name.
	NewEvent(ctx context.Context, hubName string, eventType domain.HubEventType, message string) error
}

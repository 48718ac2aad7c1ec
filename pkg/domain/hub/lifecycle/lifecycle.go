// Package lifecycle drives hubs through their states: create, start,
// stop, poll, delete.
//
// A hub record is mutated only here, as each operation's final step.
// Callers serialize operations per hub name; operations on different
// hubs run concurrently sharing only the store.
package lifecycle

import (
	"context"
	"fmt"
	"log"

	sconf "github.com/hubcluster/hubcluster/pkg/configs/server"
	"github.com/hubcluster/hubcluster/pkg/domain"
	domerr "github.com/hubcluster/hubcluster/pkg/domain/errors"
	hubdb "github.com/hubcluster/hubcluster/pkg/domain/hub/db"
	hubhelm "github.com/hubcluster/hubcluster/pkg/domain/hub/helm"
	hubk8s "github.com/hubcluster/hubcluster/pkg/domain/hub/k8s"
	"github.com/hubcluster/hubcluster/pkg/domain/hub/sanitize"
)

// release names are derived from the hub name so a later deploy lands
// on the same release.
const releasePrefix = "jupyterhub-"

type Interface interface {
	// Create records a new hub in status pending.
	//
	// The namespace and release name are derived from name, the chart
	// comes from configuration, and values are sanitized before they
	// are stored. Nothing is deployed yet.
	//
	// # Returns
	//
	// - domain.Hub: the recorded hub.
	//
	// - error: ErrConflict when the hub name is taken. ErrValidation
	// when the derived namespace is invalid, bound to another hub, or
	// refused by the owner's quota or prefix policy.
	Create(ctx context.Context, name string, owner string, values map[string]any, description string) (domain.Hub, error)

	// Start deploys the hub's release and awaits its entrypoint.
	//
	// Stored values are overridden per top-level key by overrides,
	// sanitized, and deployed over the configured default preset. The
	// merged tree is not persisted: stored values stay as recorded at
	// create, overrides live for this start only.
	//
	// # Returns
	//
	// - domain.Hub: the hub after the attempt, running on success.
	//
	// - error: ErrMissing when no hub has the name.
	// ErrPreconditionFailed when the namespace must pre-exist but does
	// not. ErrDeploymentFailed when helm fails; the failure is
	// recorded on the hub before it is returned.
	Start(ctx context.Context, name string, overrides map[string]any) (domain.Hub, error)

	// Stop tears the hub's release down.
	//
	// # Returns
	//
	// - domain.Hub: the hub after the attempt, stopped on success.
	//
	// - error: ErrMissing when no hub has the name. ErrTeardownFailed
	// when helm fails; the failure is recorded on the hub before it is
	// returned.
	Stop(ctx context.Context, name string) (domain.Hub, error)

	// Poll asks the cluster whether the hub workload is live.
	//
	// Read-only. Persisted status is not touched, and an unreachable
	// cluster reads as stopped rather than an error.
	//
	// # Returns
	//
	// - Liveness: what the cluster reports.
	//
	// - error: ErrMissing when no hub has the name.
	Poll(ctx context.Context, name string) (hubk8s.Liveness, error)

	// Delete removes the hub record, stopping the hub first when it is
	// running. Events go away with the record.
	//
	// # Returns
	//
	// - error: ErrMissing when no hub has the name, or the stop
	// attempt's error, in which case the record stays.
	Delete(ctx context.Context, name string) error
}

type impl struct {
	conf      *sconf.HubsConfig
	db        hubdb.HubInterface
	cluster   hubk8s.Interface
	helm      hubhelm.Interface
	sanitizer sanitize.Sanitizer
	logger    *log.Logger
}

type Option func(*impl) *impl

func WithLogger(l *log.Logger) Option {
	return func(i *impl) *impl {
		i.logger = l
		return i
	}
}

func New(
	conf *sconf.HubsConfig,
	db hubdb.HubInterface,
	cluster hubk8s.Interface,
	helm hubhelm.Interface,
	sanitizer sanitize.Sanitizer,
	options ...Option,
) Interface {
	i := &impl{
		conf:      conf,
		db:        db,
		cluster:   cluster,
		helm:      helm,
		sanitizer: sanitizer,
		logger:    log.Default(),
	}
	for _, option := range options {
		i = option(i)
	}
	return i
}

func (i *impl) get(ctx context.Context, name string) (domain.Hub, error) {
	hubs, err := i.db.Get(ctx, []string{name})
	if err != nil {
		return domain.Hub{}, err
	}
	hub, ok := hubs[name]
	if !ok {
		return domain.Hub{}, domerr.NewMissing(fmt.Sprintf("hub %s", name))
	}
	return hub, nil
}

// recordFailure moves the hub to error and appends an event.
//
// Neither write may mask the lifecycle error. Failures here are logged
// and dropped.
func (i *impl) recordFailure(ctx context.Context, name string, cause error) {
	message := cause.Error()
	if err := i.db.SetError(ctx, name, message); err != nil {
		i.logger.Printf("hub %s: recording failure: %+v", name, err)
	}
	if err := i.db.NewEvent(ctx, name, domain.EventError, message); err != nil {
		i.logger.Printf("hub %s: appending failure event: %+v", name, err)
	}
}

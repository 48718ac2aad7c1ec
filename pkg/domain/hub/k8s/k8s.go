// Package k8s is the cluster-facing half of hub lifecycle: namespace
// management, workload liveness, entrypoint discovery and cluster fact
// gathering.
package k8s

import (
	"context"
	"log"

	sconf "github.com/hubcluster/hubcluster/pkg/configs/server"
	"github.com/hubcluster/hubcluster/pkg/domain/hub/sanitize"
	"github.com/hubcluster/hubcluster/pkg/domain/hubcluster/k8s/cluster"
)

const (
	LabelManaged = "hubcluster.io/managed"
	LabelHub     = "hubcluster.io/hub"
	LabelOwner   = "hubcluster.io/owner"
)

// ManagedLabels are the labels hubclusterd stamps on namespaces it
// manages.
func ManagedLabels(hubName string, owner string) map[string]string {
	return map[string]string{
		LabelManaged: "true",
		LabelHub:     hubName,
		LabelOwner:   owner,
	}
}

type Interface interface {
	// EnsureNamespace makes sure the hub's namespace exists and
	// carries the managed labels.
	//
	// # Returns
	//
	// - error: ErrPreconditionFailed when the namespace does not exist
	// and creating namespaces is disabled by configuration.
	EnsureNamespace(ctx context.Context, namespace string, hubName string, owner string) error

	// Poll reports whether the hub workload is live in its namespace.
	//
	// It never errors: when the cluster cannot be asked, the hub is
	// reported stopped.
	Poll(ctx context.Context, namespace string) Liveness

	// AwaitReady polls until the hub's entrypoint is resolvable and
	// returns its URL.
	//
	// Not resolving within the configured timeout is not fatal: a
	// placeholder URL pointing at the release's service is returned.
	AwaitReady(ctx context.Context, namespace string, releaseName string) string

	// GatherFacts snapshots what the cluster offers, for the sanitizer
	// to verify values against.
	GatherFacts(ctx context.Context) sanitize.Facts
}

type impl struct {
	conf    *sconf.HubClusterConfig
	cluster cluster.Cluster
	logger  *log.Logger
}

type Option func(*impl) *impl

func WithLogger(l *log.Logger) Option {
	return func(i *impl) *impl {
		i.logger = l
		return i
	}
}

func New(conf *sconf.HubClusterConfig, c cluster.Cluster, options ...Option) Interface {
	i := &impl{conf: conf, cluster: c, logger: log.Default()}
	for _, option := range options {
		i = option(i)
	}
	return i
}

package hubcluster

import (
	"context"

	sconf "github.com/hubcluster/hubcluster/pkg/configs/server"
	connk8s "github.com/hubcluster/hubcluster/pkg/conn/k8s"
	"github.com/hubcluster/hubcluster/pkg/domain/hub"
	hubhelm "github.com/hubcluster/hubcluster/pkg/domain/hub/helm"
	"github.com/hubcluster/hubcluster/pkg/domain/hub/lifecycle"
	"github.com/hubcluster/hubcluster/pkg/domain/hub/sanitize"
	"github.com/hubcluster/hubcluster/pkg/domain/hubcluster/db"
	"github.com/hubcluster/hubcluster/pkg/domain/hubcluster/db/postgres"
	"github.com/hubcluster/hubcluster/pkg/domain/hubcluster/k8s"
	"github.com/hubcluster/hubcluster/pkg/domain/hubcluster/k8s/cluster"
	"github.com/hubcluster/hubcluster/pkg/domain/schema"
	"github.com/hubcluster/hubcluster/pkg/domain/user"
	"k8s.io/client-go/kubernetes"
)

// Hubcluster bundles the domain interfaces of a running hub cluster.
type Hubcluster interface {
	Config() *sconf.HubClusterConfig

	Hub() hub.Interface
	User() user.Interface
	Schema() schema.Interface

	Close() error
}

type hubcluster struct {
	config *sconf.HubClusterConfig
	db     db.HubClusterDatabase

	hub    hub.Interface
	user   user.Interface
	schema schema.Interface
}

type Option func(*_options)

type _options struct {
	pg []postgres.Option
}

func WithSchemaRepository(repository string) Option {
	return func(o *_options) {
		o.pg = append(o.pg, postgres.WithSchemaRepository(repository))
	}
}

// Default is New against the cluster found by the default kubeconfig search.
func Default(
	ctx context.Context,
	config *sconf.HubClusterConfig,
	options ...Option,
) (Hubcluster, error) {
	clientset, err := connk8s.Connect()
	if err != nil {
		return nil, err
	}
	return New(ctx, config, clientset, options...)
}

func New(
	ctx context.Context,
	config *sconf.HubClusterConfig,
	clientset *kubernetes.Clientset,
	options ...Option,
) (Hubcluster, error) {
	opt := &_options{}
	for _, o := range options {
		o(opt)
	}

	pg, err := postgres.New(ctx, config.Database(), opt.pg...)
	if err != nil {
		return nil, err
	}

	k8sclient := cluster.WrapK8sClient(clientset)
	cluster := cluster.AttachCluster(k8sclient, config.Domain())

	k8sifs := k8s.New(cluster, config)

	hubs := config.Hubs()
	releases := hubhelm.New(
		hubhelm.WithRunner(hubhelm.NewRunner(hubs.Helm().Bin())),
		hubhelm.WithDeployTimeout(hubs.Helm().DeployTimeout()),
		hubhelm.WithTeardownTimeout(hubs.Helm().TeardownTimeout()),
	)
	sanitizer := sanitize.New(
		sanitize.WithDefaultStorageClass(hubs.DefaultStorageClass()),
	)

	return &hubcluster{
		config: config,
		db:     pg,

		hub: hub.New(
			pg.Hub(), k8sifs.Hub(), releases,
			lifecycle.New(hubs, pg.Hub(), k8sifs.Hub(), releases, sanitizer),
		),
		user:   user.New(pg.User()),
		schema: schema.New(pg.Schema()),
	}, nil
}

func (h *hubcluster) Config() *sconf.HubClusterConfig {
	return h.config
}

func (h *hubcluster) Hub() hub.Interface {
	return h.hub
}

func (h *hubcluster) User() user.Interface {
	return h.user
}

func (h *hubcluster) Schema() schema.Interface {
	return h.schema
}

func (h *hubcluster) Close() error {
	return h.db.Close()
}

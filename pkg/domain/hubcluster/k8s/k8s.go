package k8s

import (
	sconf "github.com/hubcluster/hubcluster/pkg/configs/server"
	hub "github.com/hubcluster/hubcluster/pkg/domain/hub/k8s"
	"github.com/hubcluster/hubcluster/pkg/domain/hubcluster/k8s/cluster"
)

type KubernetesInterfaces interface {
	Hub() hub.Interface
}

type impl struct {
	hub hub.Interface
}

func New(
	cluster cluster.Cluster,
	config *sconf.HubClusterConfig,
) KubernetesInterfaces {
	return &impl{
		hub: hub.New(config, cluster),
	}
}

func (i *impl) Hub() hub.Interface {
	return i.hub
}

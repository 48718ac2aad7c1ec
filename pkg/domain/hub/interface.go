package hub

import (
	"github.com/hubcluster/hubcluster/pkg/domain/hub/db"
	"github.com/hubcluster/hubcluster/pkg/domain/hub/helm"
	"github.com/hubcluster/hubcluster/pkg/domain/hub/k8s"
	"github.com/hubcluster/hubcluster/pkg/domain/hub/lifecycle"
)

type Interface interface {
	Database() db.HubInterface
	K8s() k8s.Interface
	Helm() helm.Interface
	Lifecycle() lifecycle.Interface
}

type impl struct {
	database  db.HubInterface
	cluster   k8s.Interface
	releases  helm.Interface
	lifecycle lifecycle.Interface
}

func New(database db.HubInterface, cluster k8s.Interface, releases helm.Interface, lifecycle lifecycle.Interface) Interface {
	return &impl{
		database:  database,
		cluster:   cluster,
		releases:  releases,
		lifecycle: lifecycle,
	}
}

func (i *impl) Database() db.HubInterface {
	return i.database
}

func (i *impl) K8s() k8s.Interface {
	return i.cluster
}

func (i *impl) Helm() helm.Interface {
	return i.releases
}

func (i *impl) Lifecycle() lifecycle.Interface {
	return i.lifecycle
}

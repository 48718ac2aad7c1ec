package mock

import (
	"context"
	"errors"

	kubecore "k8s.io/api/core/v1"
	kubenet "k8s.io/api/networking/v1"
	kubestorage "k8s.io/api/storage/v1"
	kubeapimeta "k8s.io/apimachinery/pkg/apis/meta/v1"
	applyconfcore "k8s.io/client-go/applyconfigurations/core/v1"

	"github.com/hubcluster/hubcluster/pkg/domain/hubcluster/k8s/cluster"
)

// get mocked cluster.Cluster
//
// # returns
//
//   - cluster.Cluster : using *MockClient as base client
//   - *MockClient : mock object.
//     you can fake k8s behaviours or spy its usage.
func NewCluster() (cluster.Cluster, *MockClient) {
	client := NewMockClient()
	return cluster.AttachCluster(client, "fake.local"), client
}

type MockClient struct {
	Impl struct {
		GetNamespace    func(ctx context.Context, name string) (*kubecore.Namespace, error)
		CreateNamespace func(ctx context.Context, ns *kubecore.Namespace) (*kubecore.Namespace, error)
		DeleteNamespace func(ctx context.Context, name string) error
		UpsertNamespace func(ctx context.Context, spec *applyconfcore.NamespaceApplyConfiguration) (*kubecore.Namespace, error)

		FindPods func(ctx context.Context, namespace string, ls cluster.LabelSelector) ([]kubecore.Pod, error)

		GetService func(ctx context.Context, namespace string, svcname string) (*kubecore.Service, error)

		FindIngresses func(ctx context.Context, namespace string, ls cluster.LabelSelector) ([]kubenet.Ingress, error)

		ListStorageClasses func(ctx context.Context) ([]kubestorage.StorageClass, error)
		ListNodes          func(ctx context.Context) ([]kubecore.Node, error)

		ServerGroups func() ([]kubeapimeta.APIGroup, error)
	}
	Called struct {
		GetNamespace    uint64
		CreateNamespace uint64
		DeleteNamespace uint64
		UpsertNamespace uint64

		FindPods uint64

		GetService uint64

		FindIngresses uint64

		ListStorageClasses uint64
		ListNodes          uint64

		ServerGroups uint64
	}
}

func NewMockClient() *MockClient {
	return &MockClient{}
}

// MockClient implements cluster.K8sClient
var _ cluster.K8sClient = &MockClient{}

func (m *MockClient) GetNamespace(ctx context.Context, name string) (*kubecore.Namespace, error) {
	m.Called.GetNamespace += 1
	if m.Impl.GetNamespace == nil {
		return nil, errors.New("[MOCK] not implemented")
	}
	return m.Impl.GetNamespace(ctx, name)
}

func (m *MockClient) CreateNamespace(ctx context.Context, ns *kubecore.Namespace) (*kubecore.Namespace, error) {
	m.Called.CreateNamespace += 1
	if m.Impl.CreateNamespace == nil {
		return nil, errors.New("[MOCK] not implemented")
	}
	return m.Impl.CreateNamespace(ctx, ns)
}

func (m *MockClient) DeleteNamespace(ctx context.Context, name string) error {
	m.Called.DeleteNamespace += 1
	if m.Impl.DeleteNamespace == nil {
		return errors.New("[MOCK] not implemented")
	}
	return m.Impl.DeleteNamespace(ctx, name)
}

func (m *MockClient) UpsertNamespace(ctx context.Context, spec *applyconfcore.NamespaceApplyConfiguration) (*kubecore.Namespace, error) {
	m.Called.UpsertNamespace += 1
	if m.Impl.UpsertNamespace == nil {
		return nil, errors.New("[MOCK] not implemented")
	}
	return m.Impl.UpsertNamespace(ctx, spec)
}

func (m *MockClient) FindPods(ctx context.Context, namespace string, ls cluster.LabelSelector) ([]kubecore.Pod, error) {
	m.Called.FindPods += 1
	if m.Impl.FindPods == nil {
		return nil, errors.New("[MOCK] not implemented")
	}
	return m.Impl.FindPods(ctx, namespace, ls)
}

func (m *MockClient) GetService(ctx context.Context, namespace string, svcname string) (*kubecore.Service, error) {
	m.Called.GetService += 1
	if m.Impl.GetService == nil {
		return nil, errors.New("[MOCK] not implemented")
	}
	return m.Impl.GetService(ctx, namespace, svcname)
}

func (m *MockClient) FindIngresses(ctx context.Context, namespace string, ls cluster.LabelSelector) ([]kubenet.Ingress, error) {
	m.Called.FindIngresses += 1
	if m.Impl.FindIngresses == nil {
		return nil, errors.New("[MOCK] not implemented")
	}
	return m.Impl.FindIngresses(ctx, namespace, ls)
}

func (m *MockClient) ListStorageClasses(ctx context.Context) ([]kubestorage.StorageClass, error) {
	m.Called.ListStorageClasses += 1
	if m.Impl.ListStorageClasses == nil {
		return nil, errors.New("[MOCK] not implemented")
	}
	return m.Impl.ListStorageClasses(ctx)
}

func (m *MockClient) ListNodes(ctx context.Context) ([]kubecore.Node, error) {
	m.Called.ListNodes += 1
	if m.Impl.ListNodes == nil {
		return nil, errors.New("[MOCK] not implemented")
	}
	return m.Impl.ListNodes(ctx)
}

func (m *MockClient) ServerGroups() ([]kubeapimeta.APIGroup, error) {
	m.Called.ServerGroups += 1
	if m.Impl.ServerGroups == nil {
		return nil, errors.New("[MOCK] not implemented")
	}
	return m.Impl.ServerGroups()
}

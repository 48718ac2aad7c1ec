package mock

import (
	"context"
	"errors"

	"github.com/hubcluster/hubcluster/pkg/domain/hub/k8s"
	"github.com/hubcluster/hubcluster/pkg/domain/hub/sanitize"
)

// Mock implements k8s.Interface for tests.
type Mock struct {
	Impl struct {
		EnsureNamespace func(ctx context.Context, namespace string, hubName string, owner string) error
		Poll            func(ctx context.Context, namespace string) k8s.Liveness
		AwaitReady      func(ctx context.Context, namespace string, releaseName string) string
		GatherFacts     func(ctx context.Context) sanitize.Facts
	}
	Called struct {
		EnsureNamespace uint64
		Poll            uint64
		AwaitReady      uint64
		GatherFacts     uint64
	}
}

var _ k8s.Interface = &Mock{}

func New() *Mock {
	return &Mock{}
}

func (m *Mock) EnsureNamespace(ctx context.Context, namespace string, hubName string, owner string) error {
	m.Called.EnsureNamespace += 1
	if m.Impl.EnsureNamespace != nil {
		return m.Impl.EnsureNamespace(ctx, namespace, hubName, owner)
	}
	return errors.New("[MOCK] EnsureNamespace is not implemented")
}

func (m *Mock) Poll(ctx context.Context, namespace string) k8s.Liveness {
	m.Called.Poll += 1
	if m.Impl.Poll != nil {
		return m.Impl.Poll(ctx, namespace)
	}
	return k8s.LivenessStopped
}

func (m *Mock) AwaitReady(ctx context.Context, namespace string, releaseName string) string {
	m.Called.AwaitReady += 1
	if m.Impl.AwaitReady != nil {
		return m.Impl.AwaitReady(ctx, namespace, releaseName)
	}
	return ""
}

func (m *Mock) GatherFacts(ctx context.Context) sanitize.Facts {
	m.Called.GatherFacts += 1
	if m.Impl.GatherFacts != nil {
		return m.Impl.GatherFacts(ctx)
	}
	return sanitize.Facts{}
}

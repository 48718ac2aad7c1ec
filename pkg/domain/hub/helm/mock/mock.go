package mock

import (
	"context"
	"errors"

	"github.com/hubcluster/hubcluster/pkg/domain/hub/helm"
)

// Mock implements helm.Interface for tests.
//
// Methods delegate to Impl and count calls in Called. Methods without
// an Impl return an error.
type Mock struct {
	Impl struct {
		Deploy   func(ctx context.Context, namespace string, releaseName string, chart helm.Chart, values map[string]any) error
		Teardown func(ctx context.Context, namespace string, releaseName string) error
	}
	Called struct {
		Deploy   uint64
		Teardown uint64
	}
}

var _ helm.Interface = &Mock{}

func New() *Mock {
	return &Mock{}
}

func (m *Mock) Deploy(
	ctx context.Context, namespace string, releaseName string,
	chart helm.Chart, values map[string]any,
) error {
	m.Called.Deploy += 1
	if m.Impl.Deploy != nil {
		return m.Impl.Deploy(ctx, namespace, releaseName, chart, values)
	}
	return errors.New("[MOCK] Deploy is not implemented")
}

func (m *Mock) Teardown(ctx context.Context, namespace string, releaseName string) error {
	m.Called.Teardown += 1
	if m.Impl.Teardown != nil {
		return m.Impl.Teardown(ctx, namespace, releaseName)
	}
	return errors.New("[MOCK] Teardown is not implemented")
}

package mock

import (
	"context"
	"errors"

	"github.com/hubcluster/hubcluster/pkg/domain/auth"
)

// Mock implements auth.Authenticator for tests.
type Mock struct {
	Impl struct {
		Authenticate func(ctx context.Context, token string) (auth.Identity, error)
	}
	Called struct {
		Authenticate uint64
	}
}

var _ auth.Authenticator = &Mock{}

func New() *Mock {
	return &Mock{}
}

func (m *Mock) Authenticate(ctx context.Context, token string) (auth.Identity, error) {
	m.Called.Authenticate += 1
	if m.Impl.Authenticate != nil {
		return m.Impl.Authenticate(ctx, token)
	}
	return auth.Identity{}, errors.New("[MOCK] Authenticate is not implemented")
}

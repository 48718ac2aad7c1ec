package mock

import (
	"context"
	"errors"

	"github.com/hubcluster/hubcluster/pkg/domain"
	hubk8s "github.com/hubcluster/hubcluster/pkg/domain/hub/k8s"
	"github.com/hubcluster/hubcluster/pkg/domain/hub/lifecycle"
	dbmock "github.com/hubcluster/hubcluster/pkg/domain/internal/db/mock"
)

type Interface struct {
	Impl struct {
		Create func(ctx context.Context, name string, owner string, values map[string]any, description string) (domain.Hub, error)
		Start  func(ctx context.Context, name string, overrides map[string]any) (domain.Hub, error)
		Stop   func(ctx context.Context, name string) (domain.Hub, error)
		Poll   func(ctx context.Context, name string) (hubk8s.Liveness, error)
		Delete func(ctx context.Context, name string) error
	}

	Calls struct {
		Create dbmock.CallLog[struct {
			Name        string
			Owner       string
			Values      map[string]any
			Description string
		}]
		Start dbmock.CallLog[struct {
			Name      string
			Overrides map[string]any
		}]
		Stop   dbmock.CallLog[string]
		Poll   dbmock.CallLog[string]
		Delete dbmock.CallLog[string]
	}
}

func New() *Interface {
	return &Interface{}
}

var _ lifecycle.Interface = &Interface{}

func (m *Interface) Create(ctx context.Context, name string, owner string, values map[string]any, description string) (domain.Hub, error) {
	m.Calls.Create = append(m.Calls.Create, struct {
		Name        string
		Owner       string
		Values      map[string]any
		Description string
	}{Name: name, Owner: owner, Values: values, Description: description})
	if m.Impl.Create != nil {
		return m.Impl.Create(ctx, name, owner, values, description)
	}

	panic(errors.New("it should not be called"))
}

func (m *Interface) Start(ctx context.Context, name string, overrides map[string]any) (domain.Hub, error) {
	m.Calls.Start = append(m.Calls.Start, struct {
		Name      string
		Overrides map[string]any
	}{Name: name, Overrides: overrides})
	if m.Impl.Start != nil {
		return m.Impl.Start(ctx, name, overrides)
	}

	panic(errors.New("it should not be called"))
}

func (m *Interface) Stop(ctx context.Context, name string) (domain.Hub, error) {
	m.Calls.Stop = append(m.Calls.Stop, name)
	if m.Impl.Stop != nil {
		return m.Impl.Stop(ctx, name)
	}

	panic(errors.New("it should not be called"))
}

func (m *Interface) Poll(ctx context.Context, name string) (hubk8s.Liveness, error) {
	m.Calls.Poll = append(m.Calls.Poll, name)
	if m.Impl.Poll != nil {
		return m.Impl.Poll(ctx, name)
	}

	panic(errors.New("it should not be called"))
}

func (m *Interface) Delete(ctx context.Context, name string) error {
	m.Calls.Delete = append(m.Calls.Delete, name)
	if m.Impl.Delete != nil {
		return m.Impl.Delete(ctx, name)
	}

	panic(errors.New("it should not be called"))
}

package mock

import (
	"context"
	"errors"

	"github.com/hubcluster/hubcluster/pkg/domain"
	dbmock "github.com/hubcluster/hubcluster/pkg/domain/internal/db/mock"
	userdb "github.com/hubcluster/hubcluster/pkg/domain/user/db"
)

type UserInterface struct {
	Impl struct {
		New    func(ctx context.Context, spec userdb.UserSpec) (domain.User, error)
		Get    func(ctx context.Context, names []string) (map[string]domain.User, error)
		Find   func(ctx context.Context) ([]string, error)
		Update func(ctx context.Context, spec userdb.UserSpec) (domain.User, error)
		Delete func(ctx context.Context, name string) error
	}

	Calls struct {
		New    dbmock.CallLog[userdb.UserSpec]
		Get    dbmock.CallLog[[]string]
		Find   dbmock.CallLog[struct{}]
		Update dbmock.CallLog[userdb.UserSpec]
		Delete dbmock.CallLog[string]
	}
}

func NewUserInterface() *UserInterface {
	return &UserInterface{}
}

var _ userdb.UserInterface = &UserInterface{}

func (m *UserInterface) New(ctx context.Context, spec userdb.UserSpec) (domain.User, error) {
	m.Calls.New = append(m.Calls.New, spec)
	if m.Impl.New != nil {
		return m.Impl.New(ctx, spec)
	}

	panic(errors.New("it should not be called"))
}

func (m *UserInterface) Get(ctx context.Context, names []string) (map[string]domain.User, error) {
	m.Calls.Get = append(m.Calls.Get, names)
	if m.Impl.Get != nil {
		return m.Impl.Get(ctx, names)
	}

	panic(errors.New("it should not be called"))
}

func (m *UserInterface) Find(ctx context.Context) ([]string, error) {
	m.Calls.Find = append(m.Calls.Find, struct{}{})
	if m.Impl.Find != nil {
		return m.Impl.Find(ctx)
	}

	panic(errors.New("it should not be called"))
}

func (m *UserInterface) Update(ctx context.Context, spec userdb.UserSpec) (domain.User, error) {
	m.Calls.Update = append(m.Calls.Update, spec)
	if m.Impl.Update != nil {
		return m.Impl.Update(ctx, spec)
	}

	panic(errors.New("it should not be called"))
}

func (m *UserInterface) Delete(ctx context.Context, name string) error {
	m.Calls.Delete = append(m.Calls.Delete, name)
	if m.Impl.Delete != nil {
		return m.Impl.Delete(ctx, name)
	}

	panic(errors.New("it should not be called"))
}

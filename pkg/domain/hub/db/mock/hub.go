package mock

import (
	"context"
	"errors"

	"github.com/hubcluster/hubcluster/pkg/domain"
	hubdb "github.com/hubcluster/hubcluster/pkg/domain/hub/db"
	dbmock "github.com/hubcluster/hubcluster/pkg/domain/internal/db/mock"
)

type HubInterface struct {
	Impl struct {
		New        func(ctx context.Context, spec hubdb.HubSpec) (domain.Hub, error)
		Get        func(ctx context.Context, names []string) (map[string]domain.Hub, error)
		Find       func(ctx context.Context, query domain.HubFindQuery) ([]string, error)
		SetStatus  func(ctx context.Context, name string, status domain.HubStatus) error
		SetRunning func(ctx context.Context, name string, url string) error
		SetError   func(ctx context.Context, name string, message string) error
		Delete     func(ctx context.Context, name string) error
		NewEvent   func(ctx context.Context, hubName string, eventType domain.HubEventType, message string) error
	}

	Calls struct {
		New       dbmock.CallLog[hubdb.HubSpec]
		Get       dbmock.CallLog[[]string]
		Find      dbmock.CallLog[domain.HubFindQuery]
		SetStatus dbmock.CallLog[struct {
			Name   string
			Status domain.HubStatus
		}]
		SetRunning dbmock.CallLog[struct {
			Name string
			URL  string
		}]
		SetError dbmock.CallLog[struct {
			Name    string
			Message string
		}]
		Delete   dbmock.CallLog[string]
		NewEvent dbmock.CallLog[struct {
			HubName   string
			EventType domain.HubEventType
			Message   string
		}]
	}
}

func NewHubInterface() *HubInterface {
	return &HubInterface{}
}

var _ hubdb.HubInterface = &HubInterface{}

func (m *HubInterface) New(ctx context.Context, spec hubdb.HubSpec) (domain.Hub, error) {
	m.Calls.New = append(m.Calls.New, spec)
	if m.Impl.New != nil {
		return m.Impl.New(ctx, spec)
	}

	panic(errors.New("it should not be called"))
}

func (m *HubInterface) Get(ctx context.Context, names []string) (map[string]domain.Hub, error) {
	m.Calls.Get = append(m.Calls.Get, names)
	if m.Impl.Get != nil {
		return m.Impl.Get(ctx, names)
	}

	panic(errors.New("it should not be called"))
}

func (m *HubInterface) Find(ctx context.Context, query domain.HubFindQuery) ([]string, error) {
	m.Calls.Find = append(m.Calls.Find, query)
	if m.Impl.Find != nil {
		return m.Impl.Find(ctx, query)
	}

	panic(errors.New("it should not be called"))
}

func (m *HubInterface) SetStatus(ctx context.Context, name string, status domain.HubStatus) error {
	m.Calls.SetStatus = append(m.Calls.SetStatus, struct {
		Name   string
		Status domain.HubStatus
	}{Name: name, Status: status})
	if m.Impl.SetStatus != nil {
		return m.Impl.SetStatus(ctx, name, status)
	}

	panic(errors.New("it should not be called"))
}

func (m *HubInterface) SetRunning(ctx context.Context, name string, url string) error {
	m.Calls.SetRunning = append(m.Calls.SetRunning, struct {
		Name string
		URL  string
	}{Name: name, URL: url})
	if m.Impl.SetRunning != nil {
		return m.Impl.SetRunning(ctx, name, url)
	}

	panic(errors.New("it should not be called"))
}

func (m *HubInterface) SetError(ctx context.Context, name string, message string) error {
	m.Calls.SetError = append(m.Calls.SetError, struct {
		Name    string
		Message string
	}{Name: name, Message: message})
	if m.Impl.SetError != nil {
		return m.Impl.SetError(ctx, name, message)
	}

	panic(errors.New("it should not be called"))
}

func (m *HubInterface) Delete(ctx context.Context, name string) error {
	m.Calls.Delete = append(m.Calls.Delete, name)
	if m.Impl.Delete != nil {
		return m.Impl.Delete(ctx, name)
	}

	panic(errors.New("it should not be called"))
}

func (m *HubInterface) NewEvent(ctx context.Context, hubName string, eventType domain.HubEventType, message string) error {
	m.Calls.NewEvent = append(m.Calls.NewEvent, struct {
		HubName   string
		EventType domain.HubEventType
		Message   string
	}{HubName: hubName, EventType: eventType, Message: message})
	if m.Impl.NewEvent != nil {
		return m.Impl.NewEvent(ctx, hubName, eventType, message)
	}

	panic(errors.New("it should not be called"))
}

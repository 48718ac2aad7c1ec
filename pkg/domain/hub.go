package domain

import (
	"fmt"
	"reflect"
	"time"
)

type HubStatus string

const (
	// This Hub is recorded, but no deployment has succeeded yet.
	Pending HubStatus = "pending"

	// This Hub's release is deployed and its workload is reachable.
	Running HubStatus = "running"

	// This Hub's release has been torn down.
	Stopped HubStatus = "stopped"

	// The last start or stop attempt on this Hub failed.
	//
	// Not terminal. A later start or stop attempt can leave this status.
	Error HubStatus = "error"
)

func (hs HubStatus) String() string {
	return string(hs)
}

func AsHubStatus(status string) (HubStatus, error) {
	switch status {
	case string(Pending):
		return Pending, nil
	case string(Running):
		return Running, nil
	case string(Stopped):
		return Stopped, nil
	case string(Error):
		return Error, nil
	default:
		return "", fmt.Errorf("'%s' is not HubStatus", status)
	}
}

// HubBody is the caller-settable part of a Hub record.
type HubBody struct {
	// Name is the hub's identity, unique across the cluster.
	Name string

	// Owner is the tenant the hub belongs to.
	Owner string

	// Values is the sanitized configuration tree for the hub's release.
	//
	// Values at rest have always passed the sanitizer.
	Values map[string]any

	Description string
}

func (b HubBody) Equal(o HubBody) bool {
	return b.Name == o.Name &&
		b.Owner == o.Owner &&
		b.Description == o.Description &&
		reflect.DeepEqual(b.Values, o.Values)
}

// Hub is one tenant workload instance, one per namespace.
type Hub struct {
	HubBody

	// Namespace holding the hub's release. Derived from Name, never caller input.
	Namespace string

	// ReleaseName identifies the hub's release. Derived from Name.
	ReleaseName string

	// Chart reference the release is deployed from.
	Chart string

	// ChartVersion pins the chart. Empty means latest.
	ChartVersion string

	Status HubStatus

	// URL is the reachable endpoint, set when the hub went running.
	URL string

	// ErrorMessage holds the last failure detail, set when Status is Error.
	ErrorMessage string

	Created      time.Time
	LastActivity time.Time
}

func (h Hub) Equal(o Hub) bool {
	return h.HubBody.Equal(o.HubBody) &&
		h.Namespace == o.Namespace &&
		h.ReleaseName == o.ReleaseName &&
		h.Chart == o.Chart &&
		h.ChartVersion == o.ChartVersion &&
		h.Status == o.Status &&
		h.URL == o.URL &&
		h.ErrorMessage == o.ErrorMessage &&
		h.Created.Equal(o.Created) &&
		h.LastActivity.Equal(o.LastActivity)
}

// ValidNamespace checks name is usable as a kubernetes namespace name:
// at most 63 characters, first and last alphanumeric, all characters
// alphanumeric or '-'.
func ValidNamespace(name string) bool {
	if len(name) == 0 || 63 < len(name) {
		return false
	}
	if !isAlnum(name[0]) || !isAlnum(name[len(name)-1]) {
		return false
	}
	for i := 0; i < len(name); i++ {
		if !isAlnum(name[i]) && name[i] != '-' {
			return false
		}
	}
	return true
}

func isAlnum(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}

// HubFindQuery narrows Find results. The zero value matches every hub.
type HubFindQuery struct {
	// Owner, when non-nil, limits results to hubs owned by it.
	Owner *string
}

type HubEventType string

const (
	// A lifecycle operation on the hub failed.
	EventError HubEventType = "error"
)

// HubEvent is an append-only record of a lifecycle operation outcome.
//
// Written only on failure, removed only by cascade with the owning Hub.
type HubEvent struct {
	Id        int
	HubName   string
	EventType HubEventType
	Message   string
	Timestamp time.Time
}

func (e HubEvent) Equal(o HubEvent) bool {
	return e.Id == o.Id &&
		e.HubName == o.HubName &&
		e.EventType == o.EventType &&
		e.Message == o.Message &&
		e.Timestamp.Equal(o.Timestamp)
}

package hubs

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/hubcluster/hubcluster/pkg/domain"
	"github.com/hubcluster/hubcluster/pkg/utils/rfctime"
	"gopkg.in/yaml.v3"
)

// Detail is a hub as the API renders it.
type Detail struct {
	Name         string          `json:"name"`
	Namespace    string          `json:"namespace"`
	Owner        string          `json:"owner"`
	ReleaseName  string          `json:"releaseName"`
	Chart        string          `json:"chart"`
	ChartVersion string          `json:"chartVersion,omitempty"`
	Status       string          `json:"status"`
	URL          string          `json:"url,omitempty"`
	Description  string          `json:"description,omitempty"`
	ErrorMessage string          `json:"errorMessage,omitempty"`
	Created      rfctime.RFC3339 `json:"created"`
	LastActivity rfctime.RFC3339 `json:"lastActivity"`
}

func ComposeDetail(h domain.Hub) Detail {
	return Detail{
		Name:         h.Name,
		Namespace:    h.Namespace,
		Owner:        h.Owner,
		ReleaseName:  h.ReleaseName,
		Chart:        h.Chart,
		ChartVersion: h.ChartVersion,
		Status:       h.Status.String(),
		URL:          h.URL,
		Description:  h.Description,
		ErrorMessage: h.ErrorMessage,
		Created:      rfctime.RFC3339(h.Created),
		LastActivity: rfctime.RFC3339(h.LastActivity),
	}
}

func (d *Detail) Equal(o *Detail) bool {
	if d == nil || o == nil {
		return (d == nil) && (o == nil)
	}
	return d.Name == o.Name &&
		d.Namespace == o.Namespace &&
		d.Owner == o.Owner &&
		d.ReleaseName == o.ReleaseName &&
		d.Chart == o.Chart &&
		d.ChartVersion == o.ChartVersion &&
		d.Status == o.Status &&
		d.URL == o.URL &&
		d.Description == o.Description &&
		d.ErrorMessage == o.ErrorMessage &&
		d.Created.Equal(&o.Created) &&
		d.LastActivity.Equal(&o.LastActivity)
}

// List is the response of "GET /api/hubs".
type List struct {
	Hubs []Detail `json:"hubs"`
}

// ChangeResult is the response of start and stop actions.
type ChangeResult struct {
	Status string `json:"status"`
	Hub    Detail `json:"hub"`
}

// LiveStatus is the response of "GET /api/hubs/:name/status".
//
// Liveness reports what the cluster says right now, which can lag
// behind the recorded status.
type LiveStatus struct {
	Name     string `json:"name"`
	Liveness string `json:"liveness"`
}

// Values is a helm values tree in a request body.
//
// It accepts either a JSON object or a string holding YAML (or JSON;
// YAML is a superset) to be parsed.
type Values map[string]any

func (v *Values) UnmarshalJSON(b []byte) error {
	var asText string
	if err := json.Unmarshal(b, &asText); err == nil {
		parsed, err := ParseValues([]byte(asText))
		if err != nil {
			return err
		}
		*v = parsed
		return nil
	}

	var asTree map[string]any
	if err := json.Unmarshal(b, &asTree); err != nil {
		return err
	}
	*v = asTree
	return nil
}

func (v Values) Equal(o Values) bool {
	return reflect.DeepEqual(map[string]any(v), map[string]any(o))
}

// ParseValues parses a values document. YAML and JSON are accepted.
//
// An empty document parses to an empty tree.
func ParseValues(text []byte) (map[string]any, error) {
	values := map[string]any{}
	if err := yaml.Unmarshal(text, &values); err != nil {
		return nil, fmt.Errorf("values do not parse: %w", err)
	}
	return values, nil
}

// CreateRequest is the body of "POST /api/hubs/:name".
type CreateRequest struct {
	Values      Values `json:"values,omitempty"`
	Description string `json:"description,omitempty"`
}

// StartRequest is the body of "POST /api/hubs/:name/start".
//
// Values override the stored configuration for this start only.
type StartRequest struct {
	Values Values `json:"values,omitempty"`
}

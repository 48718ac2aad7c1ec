package users

import (
	"github.com/hubcluster/hubcluster/pkg/domain"
	"github.com/hubcluster/hubcluster/pkg/utils/cmp"
	"github.com/hubcluster/hubcluster/pkg/utils/rfctime"
)

// Detail is a user as the API renders it.
type Detail struct {
	Name  string `json:"name"`
	Admin bool   `json:"admin"`

	// MaxHubs caps the hubs the user may own. null means no cap.
	MaxHubs *int `json:"maxHubs"`

	AllowedNamespacePrefixes []string        `json:"allowedNamespacePrefixes"`
	Created                  rfctime.RFC3339 `json:"created"`
	LastActivity             rfctime.RFC3339 `json:"lastActivity"`
}

func ComposeDetail(u domain.User) Detail {
	prefixes := u.AllowedNamespacePrefixes
	if prefixes == nil {
		prefixes = []string{}
	}
	return Detail{
		Name:                     u.Name,
		Admin:                    u.Admin,
		MaxHubs:                  u.MaxHubs,
		AllowedNamespacePrefixes: prefixes,
		Created:                  rfctime.RFC3339(u.Created),
		LastActivity:             rfctime.RFC3339(u.LastActivity),
	}
}

func (d *Detail) Equal(o *Detail) bool {
	if d == nil || o == nil {
		return (d == nil) && (o == nil)
	}
	if (d.MaxHubs == nil) != (o.MaxHubs == nil) {
		return false
	}
	if d.MaxHubs != nil && *d.MaxHubs != *o.MaxHubs {
		return false
	}
	return d.Name == o.Name &&
		d.Admin == o.Admin &&
		cmp.SliceEq(d.AllowedNamespacePrefixes, o.AllowedNamespacePrefixes) &&
		d.Created.Equal(&o.Created) &&
		d.LastActivity.Equal(&o.LastActivity)
}

// List is the response of "GET /api/users".
type List struct {
	Users []Detail `json:"users"`
}

// Spec is the body of user create and update requests.
//
// It names the user's whole desired state. Fields left out fall back
// to their zero meaning: not admin, no hub cap, no prefix restriction.
type Spec struct {
	Admin                    bool     `json:"admin,omitempty"`
	MaxHubs                  *int     `json:"maxHubs,omitempty"`
	AllowedNamespacePrefixes []string `json:"allowedNamespacePrefixes,omitempty"`
}

package domain

import (
	"time"

	"github.com/hubcluster/hubcluster/pkg/utils/cmp"
)

// User is a tenant record.
//
// Read during hub creation to enforce quota and namespace-prefix policy.
type User struct {
	// Name is the tenant identity, unique.
	Name string

	Admin bool

	// MaxHubs caps how many hubs the user may own. nil means no cap.
	MaxHubs *int

	// AllowedNamespacePrefixes restricts which namespaces the user's hubs
	// may map into. Empty means no restriction.
	AllowedNamespacePrefixes []string

	Created      time.Time
	LastActivity time.Time
}

func (u User) Equal(o User) bool {
	if (u.MaxHubs == nil) != (o.MaxHubs == nil) {
		return false
	}
	if u.MaxHubs != nil && *u.MaxHubs != *o.MaxHubs {
		return false
	}
	return u.Name == o.Name &&
		u.Admin == o.Admin &&
		cmp.SliceEq(u.AllowedNamespacePrefixes, o.AllowedNamespacePrefixes) &&
		u.Created.Equal(o.Created) &&
		u.LastActivity.Equal(o.LastActivity)
}

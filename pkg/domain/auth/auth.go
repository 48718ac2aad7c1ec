// Package auth resolves bearer tokens into request identities.
//
// Authenticators form a closed set selected by configuration: a static
// token store, or JWT bearer tokens signed with a shared HS256 secret.
// Tokens only name who is calling. The admin flag always comes from
// the user record, and callers without a record act as plain users.
package auth

import (
	"context"
	"errors"

	sconf "github.com/hubcluster/hubcluster/pkg/configs/server"
	userdb "github.com/hubcluster/hubcluster/pkg/domain/user/db"
)

// token is not acceptable: unknown, malformed, badly signed or expired.
var ErrUnauthorized = errors.New("unauthorized")

// Identity is who a request acts as.
type Identity struct {
	Name  string
	Admin bool
}

type Authenticator interface {
	// Authenticate resolves a bearer token into an identity.
	//
	// # Returns
	//
	// - Identity: who the token belongs to.
	//
	// - error: ErrUnauthorized when the token is not acceptable, or
	// the user store's error when the admin lookup fails.
	Authenticate(ctx context.Context, token string) (Identity, error)
}

// New picks the authenticator the configuration names.
func New(conf *sconf.AuthConfig, users userdb.UserInterface) Authenticator {
	if static := conf.Static(); static != nil {
		return NewStatic(static, users)
	}
	return NewJWT(conf.JWT(), users)
}

func identify(ctx context.Context, users userdb.UserInterface, name string) (Identity, error) {
	records, err := users.Get(ctx, []string{name})
	if err != nil {
		return Identity{}, err
	}

	identity := Identity{Name: name}
	if user, ok := records[name]; ok {
		identity.Admin = user.Admin
	}
	return identity, nil
}

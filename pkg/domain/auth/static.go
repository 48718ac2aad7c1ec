package auth

import (
	"context"
	"fmt"

	sconf "github.com/hubcluster/hubcluster/pkg/configs/server"
	userdb "github.com/hubcluster/hubcluster/pkg/domain/user/db"
)

type static struct {
	conf  *sconf.StaticAuthConfig
	users userdb.UserInterface
}

// NewStatic authenticates against the fixed token table in the
// configuration file.
func NewStatic(conf *sconf.StaticAuthConfig, users userdb.UserInterface) Authenticator {
	return &static{conf: conf, users: users}
}

func (a *static) Authenticate(ctx context.Context, token string) (Identity, error) {
	name, ok := a.conf.Resolve(token)
	if !ok {
		return Identity{}, fmt.Errorf("%w: unknown token", ErrUnauthorized)
	}
	return identify(ctx, a.users, name)
}

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	sconf "github.com/hubcluster/hubcluster/pkg/configs/server"
	userdb "github.com/hubcluster/hubcluster/pkg/domain/user/db"
)

type jwtAuthenticator struct {
	conf  *sconf.JWTAuthConfig
	users userdb.UserInterface
}

// NewJWT authenticates bearer tokens as JWTs signed with the
// configured HS256 secret. The token's subject names the user.
func NewJWT(conf *sconf.JWTAuthConfig, users userdb.UserInterface) Authenticator {
	return &jwtAuthenticator{conf: conf, users: users}
}

func (a *jwtAuthenticator) Authenticate(ctx context.Context, token string) (Identity, error) {
	claims := &jwt.RegisteredClaims{}
	if _, err := jwt.ParseWithClaims(
		token, claims,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %s", t.Method.Alg())
			}
			return []byte(a.conf.Secret()), nil
		},
		jwt.WithIssuer(a.conf.Issuer()),
	); err != nil {
		return Identity{}, errors.Join(ErrUnauthorized, err)
	}

	if claims.Subject == "" {
		return Identity{}, fmt.Errorf("%w: token names no subject", ErrUnauthorized)
	}
	return identify(ctx, a.users, claims.Subject)
}

// NewToken signs a bearer token for name, accepted until ttl passes.
func NewToken(conf *sconf.JWTAuthConfig, name string, ttl time.Duration) (string, error) {
	now := time.Now()
	return jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   name,
		Issuer:    conf.Issuer(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}).SignedString([]byte(conf.Secret()))
}

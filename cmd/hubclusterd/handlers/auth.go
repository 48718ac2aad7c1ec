package handlers

import (
	"errors"
	"strings"

	apierr "github.com/hubcluster/hubcluster/pkg/api/types/errors"
	"github.com/hubcluster/hubcluster/pkg/domain/auth"
	"github.com/labstack/echo/v4"
)

// key under which BearerAuth stores the caller on the echo context.
const callerKey = "hubcluster/caller"

// BearerAuth resolves the Authorization header to an identity and
// stores it on the context. Requests without an acceptable bearer
// token never reach the wrapped handler.
func BearerAuth(authenticator auth.Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := bearerToken(c.Request().Header.Get("Authorization"))
			if !ok {
				return apierr.Unauthorized(`send "Authorization: Bearer <token>"`, nil)
			}

			identity, err := authenticator.Authenticate(c.Request().Context(), token)
			if err != nil {
				if errors.Is(err, auth.ErrUnauthorized) {
					return apierr.Unauthorized("token is not acceptable", err)
				}
				return apierr.InternalServerError(err)
			}

			c.Set(callerKey, identity)
			return next(c)
		}
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// Caller returns the identity BearerAuth stored for this request.
func Caller(c echo.Context) (auth.Identity, bool) {
	identity, ok := c.Get(callerKey).(auth.Identity)
	return identity, ok
}

// caller, or 401 when the route is reached without BearerAuth.
func requireCaller(c echo.Context) (auth.Identity, error) {
	caller, ok := Caller(c)
	if !ok {
		return auth.Identity{}, apierr.Unauthorized("authentication required", nil)
	}
	return caller, nil
}

func requireAdmin(c echo.Context) (auth.Identity, error) {
	caller, err := requireCaller(c)
	if err != nil {
		return auth.Identity{}, err
	}
	if !caller.Admin {
		return auth.Identity{}, apierr.Forbidden("admin access required")
	}
	return caller, nil
}

// owners see their own hubs, admins see everyone's.
func requireOwnerOrAdmin(c echo.Context, owner string) (auth.Identity, error) {
	caller, err := requireCaller(c)
	if err != nil {
		return auth.Identity{}, err
	}
	if !caller.Admin && caller.Name != owner {
		return auth.Identity{}, apierr.Forbidden("not your hub")
	}
	return caller, nil
}

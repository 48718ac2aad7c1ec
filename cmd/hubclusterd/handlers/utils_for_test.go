package handlers_test

import (
	"context"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/hubcluster/hubcluster/cmd/hubclusterd/handlers"
	"github.com/hubcluster/hubcluster/pkg/domain/auth"
	authmock "github.com/hubcluster/hubcluster/pkg/domain/auth/mock"
)

// asCaller wraps handler with the bearer-auth middleware resolving any
// token to identity. Requests still need an Authorization header.
func asCaller(t *testing.T, identity auth.Identity, handler echo.HandlerFunc) echo.HandlerFunc {
	t.Helper()

	am := authmock.New()
	am.Impl.Authenticate = func(context.Context, string) (auth.Identity, error) {
		return identity, nil
	}
	return handlers.BearerAuth(am)(handler)
}

const authorized = "Bearer test-token"

package main

import (
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/hubcluster/hubcluster/cmd/hubclusterd/handlers"
	"github.com/hubcluster/hubcluster/pkg/domain/auth"
	"github.com/hubcluster/hubcluster/pkg/domain/hubcluster"
	"github.com/hubcluster/hubcluster/pkg/utils/echoutil"
)

var API_ROOT = "/api"

func api(subpath string) string {
	if !strings.HasSuffix(subpath, "/") {
		subpath += "/"
	}
	return fmt.Sprintf("%s/%s", API_ROOT, subpath)
}

func BuildServer(cluster hubcluster.Hubcluster, authenticator auth.Authenticator, loglevel string) *echo.Echo {

	e := echo.New()

	echoutil.SetLevel(e, loglevel)
	e.HTTPErrorHandler = func(err error, ctx echo.Context) {
		e.DefaultHTTPErrorHandler(err, ctx)
		e.Logger.Error(err)
	}

	e.Pre(middleware.AddTrailingSlash())
	e.Use(echoutil.LogHandlerFunc)

	authn := handlers.BearerAuth(authenticator)

	dbHub := cluster.Hub().Database()
	lc := cluster.Hub().Lifecycle()
	dbUser := cluster.User().Database()

	e.GET(api("health"), handlers.HealthHandler())

	{
		hubName := "hubName"
		e.GET(api("hubs"), handlers.ListHubsHandler(dbHub), authn)
		e.GET(api("hubs/:hubName"), handlers.GetHubHandler(dbHub, hubName), authn)
		e.POST(api("hubs/:hubName"), handlers.CreateHubHandler(lc, hubName), authn)
		e.DELETE(api("hubs/:hubName"), handlers.DeleteHubHandler(dbHub, lc, hubName), authn)

		e.POST(api("hubs/:hubName/start"), handlers.StartHubHandler(dbHub, lc, hubName), authn)
		e.POST(api("hubs/:hubName/stop"), handlers.StopHubHandler(dbHub, lc, hubName), authn)
		e.GET(api("hubs/:hubName/status"), handlers.HubStatusHandler(dbHub, lc, hubName), authn)
	}

	{
		userName := "userName"
		e.GET(api("users"), handlers.ListUsersHandler(dbUser), authn)
		e.GET(api("users/:userName"), handlers.GetUserHandler(dbUser, userName), authn)
		e.POST(api("users/:userName"), handlers.CreateUserHandler(dbUser, userName), authn)
		e.PUT(api("users/:userName"), handlers.UpdateUserHandler(dbUser, userName), authn)
		e.DELETE(api("users/:userName"), handlers.DeleteUserHandler(dbUser, userName), authn)
	}

	return e
}

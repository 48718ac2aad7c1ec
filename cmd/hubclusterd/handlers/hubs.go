package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	apierr "github.com/hubcluster/hubcluster/pkg/api/types/errors"
	apihubs "github.com/hubcluster/hubcluster/pkg/api/types/hubs"
	"github.com/hubcluster/hubcluster/pkg/domain"
	hubdb "github.com/hubcluster/hubcluster/pkg/domain/hub/db"
	"github.com/hubcluster/hubcluster/pkg/domain/hub/lifecycle"
	"github.com/labstack/echo/v4"
)

func ListHubsHandler(dbHub hubdb.HubInterface) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Add("Content-Type", "application/json")
		caller, err := requireCaller(c)
		if err != nil {
			return err
		}
		ctx := c.Request().Context()

		query := domain.HubFindQuery{}
		if !caller.Admin {
			query.Owner = &caller.Name
		}

		names, err := dbHub.Find(ctx, query)
		if err != nil {
			return apierr.InternalServerError(err)
		}
		hubs, err := dbHub.Get(ctx, names)
		if err != nil {
			return apierr.InternalServerError(err)
		}

		resp := apihubs.List{Hubs: make([]apihubs.Detail, 0, len(names))}
		for _, name := range names {
			if h, ok := hubs[name]; ok {
				resp.Hubs = append(resp.Hubs, apihubs.ComposeDetail(h))
			}
		}

		return c.JSON(http.StatusOK, resp)
	}
}

func GetHubHandler(dbHub hubdb.HubInterface, paramHubName string) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Add("Content-Type", "application/json")
		name := c.Param(paramHubName)

		hub, err := getHub(c, dbHub, name)
		if err != nil {
			return err
		}

		return c.JSON(http.StatusOK, apihubs.ComposeDetail(hub))
	}
}

func CreateHubHandler(lc lifecycle.Interface, paramHubName string) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Add("Content-Type", "application/json")
		name := c.Param(paramHubName)
		caller, err := requireCaller(c)
		if err != nil {
			return err
		}

		req := apihubs.CreateRequest{}
		if err := decodeBody(c, &req); err != nil {
			return err
		}

		hub, err := lc.Create(
			c.Request().Context(), name, caller.Name, req.Values, req.Description,
		)
		if err != nil {
			return apierr.FromError(err)
		}

		return c.JSON(http.StatusCreated, apihubs.ComposeDetail(hub))
	}
}

func DeleteHubHandler(dbHub hubdb.HubInterface, lc lifecycle.Interface, paramHubName string) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Add("Content-Type", "application/json")
		name := c.Param(paramHubName)

		if _, err := getHub(c, dbHub, name); err != nil {
			return err
		}

		if err := lc.Delete(c.Request().Context(), name); err != nil {
			return apierr.FromError(err)
		}

		return c.NoContent(http.StatusNoContent)
	}
}

func StartHubHandler(dbHub hubdb.HubInterface, lc lifecycle.Interface, paramHubName string) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Add("Content-Type", "application/json")
		name := c.Param(paramHubName)

		if _, err := getHub(c, dbHub, name); err != nil {
			return err
		}

		req := apihubs.StartRequest{}
		if err := decodeBody(c, &req); err != nil {
			return err
		}

		hub, err := lc.Start(c.Request().Context(), name, req.Values)
		if err != nil {
			return apierr.FromError(err)
		}

		return c.JSON(http.StatusOK, apihubs.ChangeResult{
			Status: "started", Hub: apihubs.ComposeDetail(hub),
		})
	}
}

func StopHubHandler(dbHub hubdb.HubInterface, lc lifecycle.Interface, paramHubName string) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Add("Content-Type", "application/json")
		name := c.Param(paramHubName)

		if _, err := getHub(c, dbHub, name); err != nil {
			return err
		}

		hub, err := lc.Stop(c.Request().Context(), name)
		if err != nil {
			return apierr.FromError(err)
		}

		return c.JSON(http.StatusOK, apihubs.ChangeResult{
			Status: "stopped", Hub: apihubs.ComposeDetail(hub),
		})
	}
}

func HubStatusHandler(dbHub hubdb.HubInterface, lc lifecycle.Interface, paramHubName string) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Add("Content-Type", "application/json")
		name := c.Param(paramHubName)

		if _, err := getHub(c, dbHub, name); err != nil {
			return err
		}

		liveness, err := lc.Poll(c.Request().Context(), name)
		if err != nil {
			return apierr.FromError(err)
		}

		return c.JSON(http.StatusOK, apihubs.LiveStatus{
			Name: name, Liveness: string(liveness),
		})
	}
}

// getHub loads the named hub and checks the caller may act on it.
//
// Missing hubs are 404 for everyone. Existing hubs of other owners
// are 403 unless the caller is an admin.
func getHub(c echo.Context, dbHub hubdb.HubInterface, name string) (domain.Hub, error) {
	hubs, err := dbHub.Get(c.Request().Context(), []string{name})
	if err != nil {
		return domain.Hub{}, apierr.InternalServerError(err)
	}
	hub, ok := hubs[name]
	if !ok {
		return domain.Hub{}, apierr.NotFound()
	}
	if _, err := requireOwnerOrAdmin(c, hub.Owner); err != nil {
		return domain.Hub{}, err
	}
	return hub, nil
}

// decodeBody reads a JSON request body. A missing body decodes to the
// zero request.
func decodeBody(c echo.Context, into any) error {
	decoder := json.NewDecoder(c.Request().Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(into); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return apierr.NewErrorMessage(
			http.StatusBadRequest,
			"format error",
			apierr.WithAdvice(err.Error()),
			apierr.WithError(err),
		)
	}
	return nil
}

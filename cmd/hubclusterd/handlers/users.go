package handlers

import (
	"net/http"

	apierr "github.com/hubcluster/hubcluster/pkg/api/types/errors"
	apiusers "github.com/hubcluster/hubcluster/pkg/api/types/users"
	userdb "github.com/hubcluster/hubcluster/pkg/domain/user/db"
	"github.com/labstack/echo/v4"
)

func ListUsersHandler(dbUser userdb.UserInterface) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Add("Content-Type", "application/json")
		if _, err := requireAdmin(c); err != nil {
			return err
		}
		ctx := c.Request().Context()

		names, err := dbUser.Find(ctx)
		if err != nil {
			return apierr.InternalServerError(err)
		}
		users, err := dbUser.Get(ctx, names)
		if err != nil {
			return apierr.InternalServerError(err)
		}

		resp := apiusers.List{Users: make([]apiusers.Detail, 0, len(names))}
		for _, name := range names {
			if u, ok := users[name]; ok {
				resp.Users = append(resp.Users, apiusers.ComposeDetail(u))
			}
		}

		return c.JSON(http.StatusOK, resp)
	}
}

func GetUserHandler(dbUser userdb.UserInterface, paramUserName string) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Add("Content-Type", "application/json")
		if _, err := requireAdmin(c); err != nil {
			return err
		}
		name := c.Param(paramUserName)

		users, err := dbUser.Get(c.Request().Context(), []string{name})
		if err != nil {
			return apierr.InternalServerError(err)
		}
		user, ok := users[name]
		if !ok {
			return apierr.NotFound()
		}

		return c.JSON(http.StatusOK, apiusers.ComposeDetail(user))
	}
}

func CreateUserHandler(dbUser userdb.UserInterface, paramUserName string) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Add("Content-Type", "application/json")
		if _, err := requireAdmin(c); err != nil {
			return err
		}
		name := c.Param(paramUserName)

		req := apiusers.Spec{}
		if err := decodeBody(c, &req); err != nil {
			return err
		}

		user, err := dbUser.New(c.Request().Context(), userdb.UserSpec{
			Name:                     name,
			Admin:                    req.Admin,
			MaxHubs:                  req.MaxHubs,
			AllowedNamespacePrefixes: req.AllowedNamespacePrefixes,
		})
		if err != nil {
			return apierr.FromError(err)
		}

		return c.JSON(http.StatusCreated, apiusers.ComposeDetail(user))
	}
}

func UpdateUserHandler(dbUser userdb.UserInterface, paramUserName string) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Add("Content-Type", "application/json")
		if _, err := requireAdmin(c); err != nil {
			return err
		}
		name := c.Param(paramUserName)

		req := apiusers.Spec{}
		if err := decodeBody(c, &req); err != nil {
			return err
		}

		user, err := dbUser.Update(c.Request().Context(), userdb.UserSpec{
			Name:                     name,
			Admin:                    req.Admin,
			MaxHubs:                  req.MaxHubs,
			AllowedNamespacePrefixes: req.AllowedNamespacePrefixes,
		})
		if err != nil {
			return apierr.FromError(err)
		}

		return c.JSON(http.StatusOK, apiusers.ComposeDetail(user))
	}
}

func DeleteUserHandler(dbUser userdb.UserInterface, paramUserName string) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Add("Content-Type", "application/json")
		if _, err := requireAdmin(c); err != nil {
			return err
		}
		name := c.Param(paramUserName)

		if err := dbUser.Delete(c.Request().Context(), name); err != nil {
			return apierr.FromError(err)
		}

		return c.NoContent(http.StatusNoContent)
	}
}

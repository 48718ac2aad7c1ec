package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hubcluster/hubcluster/cmd/hubclusterd/handlers"
	httptestutil "github.com/hubcluster/hubcluster/internal/testutils/http"
	apihubs "github.com/hubcluster/hubcluster/pkg/api/types/hubs"
	"github.com/hubcluster/hubcluster/pkg/domain"
	"github.com/hubcluster/hubcluster/pkg/domain/auth"
	authmock "github.com/hubcluster/hubcluster/pkg/domain/auth/mock"
	domerr "github.com/hubcluster/hubcluster/pkg/domain/errors"
	dbmock "github.com/hubcluster/hubcluster/pkg/domain/hub/db/mock"
	hubk8s "github.com/hubcluster/hubcluster/pkg/domain/hub/k8s"
	lcmock "github.com/hubcluster/hubcluster/pkg/domain/hub/lifecycle/mock"
	"github.com/hubcluster/hubcluster/pkg/utils/cmp"
)

func sampleHub(name string, owner string, status domain.HubStatus) domain.Hub {
	return domain.Hub{
		HubBody: domain.HubBody{
			Name:  name,
			Owner: owner,
			Values: map[string]any{
				"hub": map[string]any{"baseUrl": "/" + name},
			},
			Description: "hub " + name,
		},
		Namespace:    "jupyterhub-" + name,
		ReleaseName:  "jupyterhub-" + name,
		Chart:        "jupyterhub/jupyterhub",
		ChartVersion: "3.2.1",
		Status:       status,
		Created:      time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		LastActivity: time.Date(2024, 3, 2, 9, 30, 0, 0, time.UTC),
	}
}

func TestListHubsHandler(t *testing.T) {

	t.Run("a plain user lists only their own hubs", func(t *testing.T) {
		alpha := sampleHub("alpha", "alice", domain.Running)
		beta := sampleHub("beta", "alice", domain.Stopped)

		dbm := dbmock.NewHubInterface()
		dbm.Impl.Find = func(context.Context, domain.HubFindQuery) ([]string, error) {
			return []string{"alpha", "beta"}, nil
		}
		dbm.Impl.Get = func(context.Context, []string) (map[string]domain.Hub, error) {
			return map[string]domain.Hub{"alpha": alpha, "beta": beta}, nil
		}

		e := echo.New()
		c, respRec := httptestutil.Get(
			e, "/api/hubs/",
			httptestutil.WithHeader("Authorization", authorized),
		)

		testee := asCaller(t, auth.Identity{Name: "alice"}, handlers.ListHubsHandler(dbm))
		if err := testee(c); err != nil {
			t.Fatalf("unexpected error: %+v", err)
		}

		if respRec.Result().StatusCode != http.StatusOK {
			t.Errorf("status code %d != %d", respRec.Result().StatusCode, http.StatusOK)
		}

		if dbm.Calls.Find.Times() != 1 {
			t.Fatalf("Find is called %d times, not once", dbm.Calls.Find.Times())
		}
		if query := dbm.Calls.Find[0]; query.Owner == nil || *query.Owner != "alice" {
			t.Errorf("hubs are not filtered by the caller: %+v", query)
		}

		actual := apihubs.List{}
		if err := json.Unmarshal(respRec.Body.Bytes(), &actual); err != nil {
			t.Fatalf("response is not valid json: %v", err)
		}
		expected := []apihubs.Detail{
			apihubs.ComposeDetail(alpha), apihubs.ComposeDetail(beta),
		}
		if !cmp.SliceEqWith(actual.Hubs, expected, func(a, b apihubs.Detail) bool { return a.Equal(&b) }) {
			t.Errorf("hubs do not match:\n%+v\n%+v", actual.Hubs, expected)
		}
	})

	t.Run("an admin lists every hub", func(t *testing.T) {
		alpha := sampleHub("alpha", "alice", domain.Running)
		gamma := sampleHub("gamma", "bob", domain.Pending)

		dbm := dbmock.NewHubInterface()
		dbm.Impl.Find = func(context.Context, domain.HubFindQuery) ([]string, error) {
			return []string{"alpha", "gamma"}, nil
		}
		dbm.Impl.Get = func(context.Context, []string) (map[string]domain.Hub, error) {
			return map[string]domain.Hub{"alpha": alpha, "gamma": gamma}, nil
		}

		e := echo.New()
		c, respRec := httptestutil.Get(
			e, "/api/hubs/",
			httptestutil.WithHeader("Authorization", authorized),
		)

		testee := asCaller(t, auth.Identity{Name: "root", Admin: true}, handlers.ListHubsHandler(dbm))
		if err := testee(c); err != nil {
			t.Fatalf("unexpected error: %+v", err)
		}

		if query := dbm.Calls.Find[0]; query.Owner != nil {
			t.Errorf("admin listing should not filter by owner: %+v", query)
		}

		actual := apihubs.List{}
		if err := json.Unmarshal(respRec.Body.Bytes(), &actual); err != nil {
			t.Fatalf("response is not valid json: %v", err)
		}
		if len(actual.Hubs) != 2 {
			t.Errorf("admin should see 2 hubs, got %d", len(actual.Hubs))
		}
	})

	t.Run("rejects requests without a token", func(t *testing.T) {
		dbm := dbmock.NewHubInterface()
		am := authmock.New()

		e := echo.New()
		c, _ := httptestutil.Get(e, "/api/hubs/")

		testee := handlers.BearerAuth(am)(handlers.ListHubsHandler(dbm))
		err := testee(c)

		var echoErr *echo.HTTPError
		if !errors.As(err, &echoErr) {
			t.Fatalf("error is not echo.HTTPError. actual = %#v", err)
		}
		if echoErr.Code != http.StatusUnauthorized {
			t.Errorf("unmatch error code:%d, expected:%d", echoErr.Code, http.StatusUnauthorized)
		}
		if am.Called.Authenticate != 0 {
			t.Errorf("authenticator should not see a request without a token")
		}
		if dbm.Calls.Find.Times() != 0 {
			t.Errorf("store should not be queried without a caller")
		}
	})

	t.Run("when the store fails, status code should be 500", func(t *testing.T) {
		dbm := dbmock.NewHubInterface()
		dbm.Impl.Find = func(context.Context, domain.HubFindQuery) ([]string, error) {
			return nil, errors.New("fake db error")
		}

		e := echo.New()
		c, _ := httptestutil.Get(
			e, "/api/hubs/",
			httptestutil.WithHeader("Authorization", authorized),
		)

		testee := asCaller(t, auth.Identity{Name: "alice"}, handlers.ListHubsHandler(dbm))
		err := testee(c)

		var echoErr *echo.HTTPError
		if !errors.As(err, &echoErr) {
			t.Fatalf("error is not echo.HTTPError. actual = %#v", err)
		}
		if echoErr.Code != http.StatusInternalServerError {
			t.Errorf("unmatch error code:%d, expected:%d", echoErr.Code, http.StatusInternalServerError)
		}
	})
}

func TestGetHubHandler(t *testing.T) {

	type when struct {
		caller auth.Identity
	}
	type then struct {
		statusCode int
	}

	theory := func(testcase struct {
		when when
		then then
	}) func(*testing.T) {
		return func(t *testing.T) {
			alpha := sampleHub("alpha", "alice", domain.Running)

			dbm := dbmock.NewHubInterface()
			dbm.Impl.Get = func(context.Context, []string) (map[string]domain.Hub, error) {
				return map[string]domain.Hub{"alpha": alpha}, nil
			}

			e := echo.New()
			c, respRec := httptestutil.Get(
				e, "/api/hubs/alpha/",
				httptestutil.WithHeader("Authorization", authorized),
			)
			c.SetPath("/api/hubs/:hubName/")
			c.SetParamNames("hubName")
			c.SetParamValues("alpha")

			testee := asCaller(t, testcase.when.caller, handlers.GetHubHandler(dbm, "hubName"))
			err := testee(c)

			if testcase.then.statusCode == http.StatusOK {
				if err != nil {
					t.Fatalf("unexpected error: %+v", err)
				}
				actual := apihubs.Detail{}
				if err := json.Unmarshal(respRec.Body.Bytes(), &actual); err != nil {
					t.Fatalf("response is not valid json: %v", err)
				}
				expected := apihubs.ComposeDetail(alpha)
				if !actual.Equal(&expected) {
					t.Errorf("hub does not match:\n%+v\n%+v", actual, expected)
				}
				return
			}

			var echoErr *echo.HTTPError
			if !errors.As(err, &echoErr) {
				t.Fatalf("error is not echo.HTTPError. actual = %#v", err)
			}
			if echoErr.Code != testcase.then.statusCode {
				t.Errorf("unmatch error code:%d, expected:%d", echoErr.Code, testcase.then.statusCode)
			}
		}
	}

	t.Run("the owner reads their hub", theory(struct {
		when when
		then then
	}{
		when: when{caller: auth.Identity{Name: "alice"}},
		then: then{statusCode: http.StatusOK},
	}))

	t.Run("an admin reads anyone's hub", theory(struct {
		when when
		then then
	}{
		when: when{caller: auth.Identity{Name: "root", Admin: true}},
		then: then{statusCode: http.StatusOK},
	}))

	t.Run("another user is refused", theory(struct {
		when when
		then then
	}{
		when: when{caller: auth.Identity{Name: "mallory"}},
		then: then{statusCode: http.StatusForbidden},
	}))

	t.Run("when no hub has the name, status code should be 404", func(t *testing.T) {
		dbm := dbmock.NewHubInterface()
		dbm.Impl.Get = func(context.Context, []string) (map[string]domain.Hub, error) {
			return map[string]domain.Hub{}, nil
		}

		e := echo.New()
		c, _ := httptestutil.Get(
			e, "/api/hubs/nosuch/",
			httptestutil.WithHeader("Authorization", authorized),
		)
		c.SetPath("/api/hubs/:hubName/")
		c.SetParamNames("hubName")
		c.SetParamValues("nosuch")

		testee := asCaller(t, auth.Identity{Name: "alice"}, handlers.GetHubHandler(dbm, "hubName"))
		err := testee(c)

		var echoErr *echo.HTTPError
		if !errors.As(err, &echoErr) {
			t.Fatalf("error is not echo.HTTPError. actual = %#v", err)
		}
		if echoErr.Code != http.StatusNotFound {
			t.Errorf("unmatch error code:%d, expected:%d", echoErr.Code, http.StatusNotFound)
		}
	})
}

func TestCreateHubHandler(t *testing.T) {

	t.Run("creates a hub owned by the caller", func(t *testing.T) {
		created := sampleHub("alpha", "alice", domain.Pending)

		lcm := lcmock.New()
		lcm.Impl.Create = func(context.Context, string, string, map[string]any, string) (domain.Hub, error) {
			return created, nil
		}

		body := `{"values": {"hub": {"baseUrl": "/alpha"}}, "description": "hub alpha"}`

		e := echo.New()
		c, respRec := httptestutil.Post(
			e, "/api/hubs/alpha/", strings.NewReader(body),
			httptestutil.WithHeader("Authorization", authorized),
			httptestutil.ContentType("application/json"),
		)
		c.SetPath("/api/hubs/:hubName/")
		c.SetParamNames("hubName")
		c.SetParamValues("alpha")

		testee := asCaller(t, auth.Identity{Name: "alice"}, handlers.CreateHubHandler(lcm, "hubName"))
		if err := testee(c); err != nil {
			t.Fatalf("unexpected error: %+v", err)
		}

		if respRec.Result().StatusCode != http.StatusCreated {
			t.Errorf("status code %d != %d", respRec.Result().StatusCode, http.StatusCreated)
		}

		if lcm.Calls.Create.Times() != 1 {
			t.Fatalf("Create is called %d times, not once", lcm.Calls.Create.Times())
		}
		call := lcm.Calls.Create[0]
		if call.Name != "alpha" || call.Owner != "alice" || call.Description != "hub alpha" {
			t.Errorf("unexpected create call: %+v", call)
		}
		if !cmp.MapEqWith(
			call.Values, map[string]any{"hub": map[string]any{"baseUrl": "/alpha"}},
			func(a, b any) bool {
				ma, aok := a.(map[string]any)
				mb, bok := b.(map[string]any)
				if aok && bok {
					return cmp.MapEqWith(ma, mb, func(x, y any) bool { return x == y })
				}
				return a == b
			},
		) {
			t.Errorf("unexpected values: %+v", call.Values)
		}

		actual := apihubs.Detail{}
		if err := json.Unmarshal(respRec.Body.Bytes(), &actual); err != nil {
			t.Fatalf("response is not valid json: %v", err)
		}
		expected := apihubs.ComposeDetail(created)
		if !actual.Equal(&expected) {
			t.Errorf("hub does not match:\n%+v\n%+v", actual, expected)
		}
	})

	t.Run("accepts values as a YAML document", func(t *testing.T) {
		lcm := lcmock.New()
		lcm.Impl.Create = func(context.Context, string, string, map[string]any, string) (domain.Hub, error) {
			return sampleHub("alpha", "alice", domain.Pending), nil
		}

		body := `{"values": "hub:\n  baseUrl: /alpha\n"}`

		e := echo.New()
		c, _ := httptestutil.Post(
			e, "/api/hubs/alpha/", strings.NewReader(body),
			httptestutil.WithHeader("Authorization", authorized),
			httptestutil.ContentType("application/json"),
		)
		c.SetPath("/api/hubs/:hubName/")
		c.SetParamNames("hubName")
		c.SetParamValues("alpha")

		testee := asCaller(t, auth.Identity{Name: "alice"}, handlers.CreateHubHandler(lcm, "hubName"))
		if err := testee(c); err != nil {
			t.Fatalf("unexpected error: %+v", err)
		}

		call := lcm.Calls.Create[0]
		hub, ok := call.Values["hub"].(map[string]any)
		if !ok || hub["baseUrl"] != "/alpha" {
			t.Errorf("YAML values are not parsed: %+v", call.Values)
		}
	})

	t.Run("when the name is taken, status code should be 409", func(t *testing.T) {
		lcm := lcmock.New()
		lcm.Impl.Create = func(context.Context, string, string, map[string]any, string) (domain.Hub, error) {
			return domain.Hub{}, domerr.NewConflict("hub alpha already exists")
		}

		e := echo.New()
		c, _ := httptestutil.Post(
			e, "/api/hubs/alpha/", strings.NewReader(`{}`),
			httptestutil.WithHeader("Authorization", authorized),
			httptestutil.ContentType("application/json"),
		)
		c.SetPath("/api/hubs/:hubName/")
		c.SetParamNames("hubName")
		c.SetParamValues("alpha")

		testee := asCaller(t, auth.Identity{Name: "alice"}, handlers.CreateHubHandler(lcm, "hubName"))
		err := testee(c)

		var echoErr *echo.HTTPError
		if !errors.As(err, &echoErr) {
			t.Fatalf("error is not echo.HTTPError. actual = %#v", err)
		}
		if echoErr.Code != http.StatusConflict {
			t.Errorf("unmatch error code:%d, expected:%d", echoErr.Code, http.StatusConflict)
		}
	})

	t.Run("when the body does not parse, status code should be 400", func(t *testing.T) {
		lcm := lcmock.New()

		e := echo.New()
		c, _ := httptestutil.Post(
			e, "/api/hubs/alpha/", strings.NewReader(`{"values": `),
			httptestutil.WithHeader("Authorization", authorized),
			httptestutil.ContentType("application/json"),
		)
		c.SetPath("/api/hubs/:hubName/")
		c.SetParamNames("hubName")
		c.SetParamValues("alpha")

		testee := asCaller(t, auth.Identity{Name: "alice"}, handlers.CreateHubHandler(lcm, "hubName"))
		err := testee(c)

		var echoErr *echo.HTTPError
		if !errors.As(err, &echoErr) {
			t.Fatalf("error is not echo.HTTPError. actual = %#v", err)
		}
		if echoErr.Code != http.StatusBadRequest {
			t.Errorf("unmatch error code:%d, expected:%d", echoErr.Code, http.StatusBadRequest)
		}
		if lcm.Calls.Create.Times() != 0 {
			t.Errorf("nothing should be created from a malformed body")
		}
	})
}

func TestStartHubHandler(t *testing.T) {

	t.Run("starts the hub with override values", func(t *testing.T) {
		stored := sampleHub("alpha", "alice", domain.Stopped)
		started := sampleHub("alpha", "alice", domain.Running)
		started.URL = "http://proxy-public.jupyterhub-alpha.svc.cluster.local"

		dbm := dbmock.NewHubInterface()
		dbm.Impl.Get = func(context.Context, []string) (map[string]domain.Hub, error) {
			return map[string]domain.Hub{"alpha": stored}, nil
		}
		lcm := lcmock.New()
		lcm.Impl.Start = func(context.Context, string, map[string]any) (domain.Hub, error) {
			return started, nil
		}

		body := `{"values": {"cull": {"enabled": false}}}`

		e := echo.New()
		c, respRec := httptestutil.Post(
			e, "/api/hubs/alpha/start/", strings.NewReader(body),
			httptestutil.WithHeader("Authorization", authorized),
			httptestutil.ContentType("application/json"),
		)
		c.SetPath("/api/hubs/:hubName/start/")
		c.SetParamNames("hubName")
		c.SetParamValues("alpha")

		testee := asCaller(t, auth.Identity{Name: "alice"}, handlers.StartHubHandler(dbm, lcm, "hubName"))
		if err := testee(c); err != nil {
			t.Fatalf("unexpected error: %+v", err)
		}

		if respRec.Result().StatusCode != http.StatusOK {
			t.Errorf("status code %d != %d", respRec.Result().StatusCode, http.StatusOK)
		}

		if lcm.Calls.Start.Times() != 1 {
			t.Fatalf("Start is called %d times, not once", lcm.Calls.Start.Times())
		}
		call := lcm.Calls.Start[0]
		if call.Name != "alpha" {
			t.Errorf("unexpected start call: %+v", call)
		}
		cull, ok := call.Overrides["cull"].(map[string]any)
		if !ok || cull["enabled"] != false {
			t.Errorf("overrides are not passed: %+v", call.Overrides)
		}

		actual := apihubs.ChangeResult{}
		if err := json.Unmarshal(respRec.Body.Bytes(), &actual); err != nil {
			t.Fatalf("response is not valid json: %v", err)
		}
		if actual.Status != "started" {
			t.Errorf(`status %q != "started"`, actual.Status)
		}
		expected := apihubs.ComposeDetail(started)
		if !actual.Hub.Equal(&expected) {
			t.Errorf("hub does not match:\n%+v\n%+v", actual.Hub, expected)
		}
	})

	t.Run("starts with stored values when the body is empty", func(t *testing.T) {
		stored := sampleHub("alpha", "alice", domain.Stopped)

		dbm := dbmock.NewHubInterface()
		dbm.Impl.Get = func(context.Context, []string) (map[string]domain.Hub, error) {
			return map[string]domain.Hub{"alpha": stored}, nil
		}
		lcm := lcmock.New()
		lcm.Impl.Start = func(context.Context, string, map[string]any) (domain.Hub, error) {
			return sampleHub("alpha", "alice", domain.Running), nil
		}

		e := echo.New()
		c, _ := httptestutil.Post(
			e, "/api/hubs/alpha/start/", bytes.NewReader(nil),
			httptestutil.WithHeader("Authorization", authorized),
		)
		c.SetPath("/api/hubs/:hubName/start/")
		c.SetParamNames("hubName")
		c.SetParamValues("alpha")

		testee := asCaller(t, auth.Identity{Name: "alice"}, handlers.StartHubHandler(dbm, lcm, "hubName"))
		if err := testee(c); err != nil {
			t.Fatalf("unexpected error: %+v", err)
		}

		if len(lcm.Calls.Start[0].Overrides) != 0 {
			t.Errorf("an empty body should carry no overrides: %+v", lcm.Calls.Start[0].Overrides)
		}
	})

	t.Run("when the deployment fails, status code should be 500", func(t *testing.T) {
		stored := sampleHub("alpha", "alice", domain.Stopped)

		dbm := dbmock.NewHubInterface()
		dbm.Impl.Get = func(context.Context, []string) (map[string]domain.Hub, error) {
			return map[string]domain.Hub{"alpha": stored}, nil
		}
		lcm := lcmock.New()
		lcm.Impl.Start = func(context.Context, string, map[string]any) (domain.Hub, error) {
			return domain.Hub{}, domerr.NewDeploymentFailed("deployment of hub alpha failed: helm exited 1")
		}

		e := echo.New()
		c, _ := httptestutil.Post(
			e, "/api/hubs/alpha/start/", bytes.NewReader(nil),
			httptestutil.WithHeader("Authorization", authorized),
		)
		c.SetPath("/api/hubs/:hubName/start/")
		c.SetParamNames("hubName")
		c.SetParamValues("alpha")

		testee := asCaller(t, auth.Identity{Name: "alice"}, handlers.StartHubHandler(dbm, lcm, "hubName"))
		err := testee(c)

		var echoErr *echo.HTTPError
		if !errors.As(err, &echoErr) {
			t.Fatalf("error is not echo.HTTPError. actual = %#v", err)
		}
		if echoErr.Code != http.StatusInternalServerError {
			t.Errorf("unmatch error code:%d, expected:%d", echoErr.Code, http.StatusInternalServerError)
		}
	})

	t.Run("when the namespace must pre-exist but does not, status code should be 409", func(t *testing.T) {
		stored := sampleHub("alpha", "alice", domain.Pending)

		dbm := dbmock.NewHubInterface()
		dbm.Impl.Get = func(context.Context, []string) (map[string]domain.Hub, error) {
			return map[string]domain.Hub{"alpha": stored}, nil
		}
		lcm := lcmock.New()
		lcm.Impl.Start = func(context.Context, string, map[string]any) (domain.Hub, error) {
			return domain.Hub{}, domerr.NewPreconditionFailed("namespace jupyterhub-alpha does not exist")
		}

		e := echo.New()
		c, _ := httptestutil.Post(
			e, "/api/hubs/alpha/start/", bytes.NewReader(nil),
			httptestutil.WithHeader("Authorization", authorized),
		)
		c.SetPath("/api/hubs/:hubName/start/")
		c.SetParamNames("hubName")
		c.SetParamValues("alpha")

		testee := asCaller(t, auth.Identity{Name: "alice"}, handlers.StartHubHandler(dbm, lcm, "hubName"))
		err := testee(c)

		var echoErr *echo.HTTPError
		if !errors.As(err, &echoErr) {
			t.Fatalf("error is not echo.HTTPError. actual = %#v", err)
		}
		if echoErr.Code != http.StatusConflict {
			t.Errorf("unmatch error code:%d, expected:%d", echoErr.Code, http.StatusConflict)
		}
	})

	t.Run("another user may not start the hub", func(t *testing.T) {
		stored := sampleHub("alpha", "alice", domain.Stopped)

		dbm := dbmock.NewHubInterface()
		dbm.Impl.Get = func(context.Context, []string) (map[string]domain.Hub, error) {
			return map[string]domain.Hub{"alpha": stored}, nil
		}
		lcm := lcmock.New()

		e := echo.New()
		c, _ := httptestutil.Post(
			e, "/api/hubs/alpha/start/", bytes.NewReader(nil),
			httptestutil.WithHeader("Authorization", authorized),
		)
		c.SetPath("/api/hubs/:hubName/start/")
		c.SetParamNames("hubName")
		c.SetParamValues("alpha")

		testee := asCaller(t, auth.Identity{Name: "mallory"}, handlers.StartHubHandler(dbm, lcm, "hubName"))
		err := testee(c)

		var echoErr *echo.HTTPError
		if !errors.As(err, &echoErr) {
			t.Fatalf("error is not echo.HTTPError. actual = %#v", err)
		}
		if echoErr.Code != http.StatusForbidden {
			t.Errorf("unmatch error code:%d, expected:%d", echoErr.Code, http.StatusForbidden)
		}
		if lcm.Calls.Start.Times() != 0 {
			t.Errorf("the hub should not be started")
		}
	})
}

func TestStopHubHandler(t *testing.T) {

	t.Run("stops the hub", func(t *testing.T) {
		stored := sampleHub("alpha", "alice", domain.Running)
		stopped := sampleHub("alpha", "alice", domain.Stopped)

		dbm := dbmock.NewHubInterface()
		dbm.Impl.Get = func(context.Context, []string) (map[string]domain.Hub, error) {
			return map[string]domain.Hub{"alpha": stored}, nil
		}
		lcm := lcmock.New()
		lcm.Impl.Stop = func(context.Context, string) (domain.Hub, error) {
			return stopped, nil
		}

		e := echo.New()
		c, respRec := httptestutil.Post(
			e, "/api/hubs/alpha/stop/", bytes.NewReader(nil),
			httptestutil.WithHeader("Authorization", authorized),
		)
		c.SetPath("/api/hubs/:hubName/stop/")
		c.SetParamNames("hubName")
		c.SetParamValues("alpha")

		testee := asCaller(t, auth.Identity{Name: "alice"}, handlers.StopHubHandler(dbm, lcm, "hubName"))
		if err := testee(c); err != nil {
			t.Fatalf("unexpected error: %+v", err)
		}

		if lcm.Calls.Stop.Times() != 1 || lcm.Calls.Stop[0] != "alpha" {
			t.Errorf("unexpected stop calls: %+v", lcm.Calls.Stop)
		}

		actual := apihubs.ChangeResult{}
		if err := json.Unmarshal(respRec.Body.Bytes(), &actual); err != nil {
			t.Fatalf("response is not valid json: %v", err)
		}
		if actual.Status != "stopped" {
			t.Errorf(`status %q != "stopped"`, actual.Status)
		}
	})

	t.Run("when the teardown fails, status code should be 500", func(t *testing.T) {
		stored := sampleHub("alpha", "alice", domain.Running)

		dbm := dbmock.NewHubInterface()
		dbm.Impl.Get = func(context.Context, []string) (map[string]domain.Hub, error) {
			return map[string]domain.Hub{"alpha": stored}, nil
		}
		lcm := lcmock.New()
		lcm.Impl.Stop = func(context.Context, string) (domain.Hub, error) {
			return domain.Hub{}, domerr.NewTeardownFailed("teardown of hub alpha failed: helm exited 1")
		}

		e := echo.New()
		c, _ := httptestutil.Post(
			e, "/api/hubs/alpha/stop/", bytes.NewReader(nil),
			httptestutil.WithHeader("Authorization", authorized),
		)
		c.SetPath("/api/hubs/:hubName/stop/")
		c.SetParamNames("hubName")
		c.SetParamValues("alpha")

		testee := asCaller(t, auth.Identity{Name: "alice"}, handlers.StopHubHandler(dbm, lcm, "hubName"))
		err := testee(c)

		var echoErr *echo.HTTPError
		if !errors.As(err, &echoErr) {
			t.Fatalf("error is not echo.HTTPError. actual = %#v", err)
		}
		if echoErr.Code != http.StatusInternalServerError {
			t.Errorf("unmatch error code:%d, expected:%d", echoErr.Code, http.StatusInternalServerError)
		}
	})
}

func TestDeleteHubHandler(t *testing.T) {

	t.Run("deletes the hub", func(t *testing.T) {
		stored := sampleHub("alpha", "alice", domain.Stopped)

		dbm := dbmock.NewHubInterface()
		dbm.Impl.Get = func(context.Context, []string) (map[string]domain.Hub, error) {
			return map[string]domain.Hub{"alpha": stored}, nil
		}
		lcm := lcmock.New()
		lcm.Impl.Delete = func(context.Context, string) error {
			return nil
		}

		e := echo.New()
		c, respRec := httptestutil.Delete(
			e, "/api/hubs/alpha/",
			httptestutil.WithHeader("Authorization", authorized),
		)
		c.SetPath("/api/hubs/:hubName/")
		c.SetParamNames("hubName")
		c.SetParamValues("alpha")

		testee := asCaller(t, auth.Identity{Name: "alice"}, handlers.DeleteHubHandler(dbm, lcm, "hubName"))
		if err := testee(c); err != nil {
			t.Fatalf("unexpected error: %+v", err)
		}

		if respRec.Result().StatusCode != http.StatusNoContent {
			t.Errorf("status code %d != %d", respRec.Result().StatusCode, http.StatusNoContent)
		}
		if lcm.Calls.Delete.Times() != 1 || lcm.Calls.Delete[0] != "alpha" {
			t.Errorf("unexpected delete calls: %+v", lcm.Calls.Delete)
		}
	})

	t.Run("keeps the record when stopping for delete fails", func(t *testing.T) {
		stored := sampleHub("alpha", "alice", domain.Running)

		dbm := dbmock.NewHubInterface()
		dbm.Impl.Get = func(context.Context, []string) (map[string]domain.Hub, error) {
			return map[string]domain.Hub{"alpha": stored}, nil
		}
		lcm := lcmock.New()
		lcm.Impl.Delete = func(context.Context, string) error {
			return domerr.NewTeardownFailed("teardown of hub alpha failed: helm exited 1")
		}

		e := echo.New()
		c, _ := httptestutil.Delete(
			e, "/api/hubs/alpha/",
			httptestutil.WithHeader("Authorization", authorized),
		)
		c.SetPath("/api/hubs/:hubName/")
		c.SetParamNames("hubName")
		c.SetParamValues("alpha")

		testee := asCaller(t, auth.Identity{Name: "alice"}, handlers.DeleteHubHandler(dbm, lcm, "hubName"))
		err := testee(c)

		var echoErr *echo.HTTPError
		if !errors.As(err, &echoErr) {
			t.Fatalf("error is not echo.HTTPError. actual = %#v", err)
		}
		if echoErr.Code != http.StatusInternalServerError {
			t.Errorf("unmatch error code:%d, expected:%d", echoErr.Code, http.StatusInternalServerError)
		}
	})

	t.Run("when no hub has the name, status code should be 404", func(t *testing.T) {
		dbm := dbmock.NewHubInterface()
		dbm.Impl.Get = func(context.Context, []string) (map[string]domain.Hub, error) {
			return map[string]domain.Hub{}, nil
		}
		lcm := lcmock.New()

		e := echo.New()
		c, _ := httptestutil.Delete(
			e, "/api/hubs/nosuch/",
			httptestutil.WithHeader("Authorization", authorized),
		)
		c.SetPath("/api/hubs/:hubName/")
		c.SetParamNames("hubName")
		c.SetParamValues("nosuch")

		testee := asCaller(t, auth.Identity{Name: "alice"}, handlers.DeleteHubHandler(dbm, lcm, "hubName"))
		err := testee(c)

		var echoErr *echo.HTTPError
		if !errors.As(err, &echoErr) {
			t.Fatalf("error is not echo.HTTPError. actual = %#v", err)
		}
		if echoErr.Code != http.StatusNotFound {
			t.Errorf("unmatch error code:%d, expected:%d", echoErr.Code, http.StatusNotFound)
		}
		if lcm.Calls.Delete.Times() != 0 {
			t.Errorf("nothing should be deleted")
		}
	})
}

func TestHubStatusHandler(t *testing.T) {

	t.Run("reports what the cluster says, not the recorded status", func(t *testing.T) {
		stored := sampleHub("alpha", "alice", domain.Stopped)

		dbm := dbmock.NewHubInterface()
		dbm.Impl.Get = func(context.Context, []string) (map[string]domain.Hub, error) {
			return map[string]domain.Hub{"alpha": stored}, nil
		}
		lcm := lcmock.New()
		lcm.Impl.Poll = func(context.Context, string) (hubk8s.Liveness, error) {
			return hubk8s.LivenessRunning, nil
		}

		e := echo.New()
		c, respRec := httptestutil.Get(
			e, "/api/hubs/alpha/status/",
			httptestutil.WithHeader("Authorization", authorized),
		)
		c.SetPath("/api/hubs/:hubName/status/")
		c.SetParamNames("hubName")
		c.SetParamValues("alpha")

		testee := asCaller(t, auth.Identity{Name: "alice"}, handlers.HubStatusHandler(dbm, lcm, "hubName"))
		if err := testee(c); err != nil {
			t.Fatalf("unexpected error: %+v", err)
		}

		if lcm.Calls.Poll.Times() != 1 || lcm.Calls.Poll[0] != "alpha" {
			t.Errorf("unexpected poll calls: %+v", lcm.Calls.Poll)
		}

		actual := apihubs.LiveStatus{}
		if err := json.Unmarshal(respRec.Body.Bytes(), &actual); err != nil {
			t.Fatalf("response is not valid json: %v", err)
		}
		expected := apihubs.LiveStatus{Name: "alpha", Liveness: "running"}
		if actual != expected {
			t.Errorf("status does not match: %+v != %+v", actual, expected)
		}
	})

	t.Run("another user may not poll the hub", func(t *testing.T) {
		stored := sampleHub("alpha", "alice", domain.Running)

		dbm := dbmock.NewHubInterface()
		dbm.Impl.Get = func(context.Context, []string) (map[string]domain.Hub, error) {
			return map[string]domain.Hub{"alpha": stored}, nil
		}
		lcm := lcmock.New()

		e := echo.New()
		c, _ := httptestutil.Get(
			e, "/api/hubs/alpha/status/",
			httptestutil.WithHeader("Authorization", authorized),
		)
		c.SetPath("/api/hubs/:hubName/status/")
		c.SetParamNames("hubName")
		c.SetParamValues("alpha")

		testee := asCaller(t, auth.Identity{Name: "mallory"}, handlers.HubStatusHandler(dbm, lcm, "hubName"))
		err := testee(c)

		var echoErr *echo.HTTPError
		if !errors.As(err, &echoErr) {
			t.Fatalf("error is not echo.HTTPError. actual = %#v", err)
		}
		if echoErr.Code != http.StatusForbidden {
			t.Errorf("unmatch error code:%d, expected:%d", echoErr.Code, http.StatusForbidden)
		}
		if lcm.Calls.Poll.Times() != 0 {
			t.Errorf("the hub should not be polled")
		}
	})
}

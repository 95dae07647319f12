package echoapi

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/session"
	"github.com/trezcool/darasa/httpclient"
)

type resourceApi struct {
	store *session.Store
	api   *httpclient.Client
}

func registerAppAPI(g *echo.Group, opts *Options) {
	api := &resourceApi{
		store: opts.Store,
		api:   opts.API,
	}

	// the guard redirects the bare protected root to the default landing
	// before this handler can run; it only answers direct dispatches
	g.GET("", api.landing)

	g.GET("/home", api.home)
	g.GET("/me", api.me)

	g.GET("/groups", api.proxy("/groups"))
	g.GET("/subjects", api.proxy("/subjects"))
	g.GET("/activities", api.proxy("/activities"))
}

func (api *resourceApi) landing(ctx echo.Context) error {
	return ctx.Redirect(http.StatusSeeOther, core.Conf.GetString("defaultLanding"))
}

func (api *resourceApi) home(ctx echo.Context) error {
	var usr session.User
	if state := api.store.GetState(); state.User != nil {
		usr = *state.User
	}
	return ctx.JSON(http.StatusOK, echo.Map{
		"welcome":    usr.Username,
		"groups":     "/app/groups",
		"subjects":   "/app/subjects",
		"activities": "/app/activities",
	})
}

// me serves the session identity without an upstream round-trip.
func (api *resourceApi) me(ctx echo.Context) error {
	state := api.store.GetState()
	if state.User == nil {
		// the guard let us in, so the session died between checks
		return hardRedirect(ctx, core.Conf.GetString("publicRoot"))
	}
	return ctx.JSON(http.StatusOK, state.User)
}

// proxy passes an academic resource through the authorized client. When the
// upstream rejects the credential the authorizer has already torn the session
// down; the handler completes the hard redirect back to the public root.
func (api *resourceApi) proxy(path string) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		var payload json.RawMessage
		if err := api.api.GetJSON(ctx.Request().Context(), path, &payload); err != nil {
			var apiErr *httpclient.APIError
			if errors.As(err, &apiErr) {
				if apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden {
					return hardRedirect(ctx, core.Conf.GetString("publicRoot"))
				}
				return echo.NewHTTPError(apiErr.StatusCode, string(apiErr.Body))
			}
			return errors.Wrapf(err, "proxying %s", path)
		}
		return ctx.JSONBlob(http.StatusOK, payload)
	}
}

package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/darasa/core/nav"
)

// guardMiddleware evaluates the route guard on every request entering the
// protected subtree and turns a redirect decision into an actual redirect.
func guardMiddleware(guard *nav.Guard) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			uri := ctx.Request().URL.Path
			if q := ctx.Request().URL.RawQuery; q != "" {
				uri += "?" + q
			}
			decision := guard.Check(ctx.Request().Context(), uri)
			if !decision.Allow {
				return ctx.Redirect(http.StatusSeeOther, decision.URL())
			}
			return next(ctx)
		}
	}
}

// hardRedirect answers with a full top-level redirect. Unlike an in-app route
// change it instructs the client to discard everything it holds in memory.
func hardRedirect(ctx echo.Context, target string) error {
	ctx.Response().Header().Set("Clear-Site-Data", `"storage"`)
	return ctx.Redirect(http.StatusSeeOther, target)
}

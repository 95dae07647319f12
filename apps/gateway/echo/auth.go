package echoapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/session"
	"github.com/trezcool/darasa/httpclient"
)

type authApi struct {
	store *session.Store
	api   *httpclient.Client
}

func registerAuthAPI(g *echo.Group, opts *Options) {
	api := &authApi{
		store: opts.Store,
		api:   opts.API,
	}

	g.POST("/login", api.login)
	g.POST("/logout", api.logout)
}

type (
	LoginRequest struct {
		Username string `json:"username" validate:"required,alphanum_"`
		Password string `json:"password" validate:"required"`
		Redirect string `json:"redirect"`
	}

	LoginResponse struct {
		Token    string       `json:"token"`
		User     session.User `json:"user"`
		Redirect string       `json:"redirect"`
	}

	// upstreamLogin is the academic API's login exchange.
	upstreamLogin struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	upstreamToken struct {
		Token string       `json:"token"`
		User  session.User `json:"user"`
	}
)

func (lr *LoginRequest) Validate() error {
	lr.Username = core.CleanString(lr.Username, true /* lower */)
	return core.Validate.Struct(lr)
}

// login authenticates against the academic API and opens the session. The
// response echoes back where the client should land next: the destination it
// was originally denied, or the default landing page.
func (api *authApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	var tok upstreamToken
	creds := upstreamLogin{Username: data.Username, Password: data.Password}
	if err := api.api.PostJSON(ctx.Request().Context(), "/auth/login", creds, &tok); err != nil {
		var apiErr *httpclient.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode < http.StatusInternalServerError {
			return core.NewValidationError(errors.New("invalid credentials"))
		}
		return errors.Wrap(errUpstreamUnavailable, err.Error())
	}

	if err := api.store.Login(ctx.Request().Context(), tok.Token, tok.User); err != nil {
		return errors.Wrap(err, "opening session")
	}

	return ctx.JSON(http.StatusOK, LoginResponse{
		Token:    tok.Token,
		User:     tok.User,
		Redirect: safeRedirect(data.Redirect),
	})
}

func (api *authApi) logout(ctx echo.Context) error {
	if err := api.store.Logout(ctx.Request().Context()); err != nil {
		return errors.Wrap(err, "closing session")
	}
	return hardRedirect(ctx, core.Conf.GetString("publicRoot"))
}

// safeRedirect only honors resume targets inside the protected subtree;
// anything else falls back to the default landing page.
func safeRedirect(target string) string {
	prefix := core.Conf.GetString("protectedPrefix")
	if strings.HasPrefix(target, prefix+"/") || target == prefix {
		return target
	}
	return core.Conf.GetString("defaultLanding")
}

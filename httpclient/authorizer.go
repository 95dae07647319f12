package httpclient

import (
	"context"
	"net/http"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/session"
)

// RedirectFunc forces a hard top-level navigation to `target`, discarding all
// in-flight client state. How that happens is up to the caller (the gateway
// answers the current request with a full redirect).
type RedirectFunc func(target string)

// Authorizer wires session credentials into a shared Client: every outgoing
// request carries the stored token, and a 401 or 403 response tears the
// session down and forces a redirect to the public root. The original error
// is always re-raised so callers still observe the failure.
type Authorizer struct {
	store      *session.Store
	logger     core.Logger
	publicRoot string
	redirect   RedirectFunc
}

func NewAuthorizer(store *session.Store, logger core.Logger, publicRoot string, redirect RedirectFunc) *Authorizer {
	if publicRoot == "" {
		publicRoot = core.Conf.GetString("publicRoot")
	}
	if logger == nil {
		logger = core.NewStdLogger(nil)
	}
	return &Authorizer{
		store:      store,
		logger:     logger,
		publicRoot: publicRoot,
		redirect:   redirect,
	}
}

// Register attaches the authorizer's hooks to the client.
func (a *Authorizer) Register(c *Client) {
	c.OnRequest(a.authorize)
	c.OnResponse(nil, a.onError)
}

// authorize attaches the current credential, if any. Requests without a
// token go out unmodified; the backend decides their fate.
func (a *Authorizer) authorize(req *http.Request) error {
	if state := a.store.GetState(); state.Token != "" {
		req.Header.Set("Authorization", "Bearer "+state.Token)
	}
	return nil
}

// onError collapses 401/403 into logout-and-redirect. No retries: a single
// unauthorized response invalidates the whole session, whatever the root
// cause (expired, revoked, malformed).
func (a *Authorizer) onError(resp *http.Response, err error) error {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return err
	}
	if apiErr.StatusCode != http.StatusUnauthorized && apiErr.StatusCode != http.StatusForbidden {
		return err
	}

	ctx := context.Background()
	if resp != nil && resp.Request != nil {
		ctx = resp.Request.Context()
	}
	if lErr := a.store.Logout(ctx); lErr != nil {
		a.logger.Error("logging out after unauthorized response", lErr)
	}
	if a.redirect != nil {
		a.redirect(a.publicRoot)
	}
	return err
}

package nav

import (
	"context"
	"net/url"
	"strings"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/session"
)

// Decision is the outcome of a guard check: either the navigation proceeds
// unmodified, or it is aborted in favor of Target (with optional Query).
type Decision struct {
	Allow  bool
	Target string
	Query  url.Values
}

func Allow() Decision {
	return Decision{Allow: true}
}

func Redirect(target string, query url.Values) Decision {
	return Decision{Target: target, Query: query}
}

// URL renders the redirect target with its query string.
func (d Decision) URL() string {
	if len(d.Query) == 0 {
		return d.Target
	}
	return d.Target + "?" + d.Query.Encode()
}

type (
	Options struct {
		Store     *session.Store
		Validator session.TokenValidator
		Logger    core.Logger

		ProtectedPrefix string // default: conf protectedPrefix
		DefaultLanding  string // default: conf defaultLanding
		PublicRoot      string // default: conf publicRoot
	}

	// Guard gates entry into the protected navigation subtree. It is a
	// per-navigation predicate: Check must run on every navigation into the
	// subtree, not only the first.
	Guard struct {
		store     *session.Store
		validator session.TokenValidator
		logger    core.Logger

		protectedPrefix string
		defaultLanding  string
		publicRoot      string
	}
)

func NewGuard(opts Options) *Guard {
	if opts.ProtectedPrefix == "" {
		opts.ProtectedPrefix = core.Conf.GetString("protectedPrefix")
	}
	if opts.DefaultLanding == "" {
		opts.DefaultLanding = core.Conf.GetString("defaultLanding")
	}
	if opts.PublicRoot == "" {
		opts.PublicRoot = core.Conf.GetString("publicRoot")
	}
	if opts.Logger == nil {
		opts.Logger = core.NewStdLogger(nil)
	}
	return &Guard{
		store:           opts.Store,
		validator:       opts.Validator,
		logger:          opts.Logger,
		protectedPrefix: opts.ProtectedPrefix,
		defaultLanding:  opts.DefaultLanding,
		publicRoot:      opts.PublicRoot,
	}
}

// Check evaluates a navigation into the protected subtree. `path` is the
// full requested URI (path plus query) so an aborted navigation can be
// resumed exactly where it was headed. The synchronous
// local check always completes and short-circuits before the validation
// collaborator is consulted, so a missing credential never costs a network
// call. A failed or errored validation logs the session out (fail-closed)
// before redirecting.
func (g *Guard) Check(ctx context.Context, path string) Decision {
	state := g.store.GetState()
	if !state.IsAuthenticated || state.Token == "" {
		return g.toPublicRoot(path)
	}

	var usr session.User
	if state.User != nil {
		usr = *state.User
	}
	ok, err := g.validator.ValidateToken(ctx, state.Token, usr)
	if err != nil {
		g.logger.Warn("guard validation errored; treating session as invalid", err)
		ok = false
	}
	if !ok {
		if lErr := g.store.Logout(ctx); lErr != nil {
			g.logger.Error("logging out after failed validation", lErr)
		}
		return g.toPublicRoot(path)
	}

	if g.isProtectedRoot(path) {
		return Redirect(g.defaultLanding, nil)
	}
	return Allow()
}

// toPublicRoot aborts the navigation, preserving the intended destination so
// it can be resumed after a fresh login.
func (g *Guard) toPublicRoot(path string) Decision {
	query := url.Values{}
	query.Set("redirect", path)
	return Redirect(g.publicRoot, query)
}

func (g *Guard) isProtectedRoot(path string) bool {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	return strings.TrimRight(path, "/") == g.protectedPrefix
}

package nav_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/darasa/core/nav"
	"github.com/trezcool/darasa/core/session"
	inmemstore "github.com/trezcool/darasa/storage/kvstore/inmem"
	testutil "github.com/trezcool/darasa/tests"
)

var bob = session.User{ID: "u2", Username: "bob", Email: "bob@school.cd"}

func newGuard(t *testing.T, loggedIn bool, validator session.TokenValidator) (*nav.Guard, *session.Store) {
	t.Helper()
	store := session.NewStore(session.Options{
		Storage:   inmemstore.New(),
		Validator: validator,
		Logger:    testutil.NewLogger(),
	})
	if loggedIn {
		if err := store.Login(context.Background(), "abc", bob); err != nil {
			t.Fatalf("Login() failed: %v", err)
		}
	}
	guard := nav.NewGuard(nav.Options{
		Store:           store,
		Validator:       validator,
		Logger:          testutil.NewLogger(),
		ProtectedPrefix: "/app",
		DefaultLanding:  "/app/home",
		PublicRoot:      "/",
	})
	return guard, store
}

func TestGuard_Check(t *testing.T) {
	tests := []struct {
		name       string
		loggedIn   bool
		ok         bool
		err        error
		path       string
		wantURL    string // empty -> Allow
		wantCalls  int
		wantLogout bool
	}{
		{
			name:    "unauthenticated navigation is redirected with its destination preserved",
			path:    "/app/home",
			wantURL: "/?redirect=%2Fapp%2Fhome",
		},
		{
			name:      "valid session proceeds unmodified",
			loggedIn:  true,
			ok:        true,
			path:      "/app/groups",
			wantCalls: 1,
		},
		{
			name:      "valid session at the protected root lands on the default page",
			loggedIn:  true,
			ok:        true,
			path:      "/app",
			wantURL:   "/app/home",
			wantCalls: 1,
		},
		{
			name:       "failed validation logs out and redirects",
			loggedIn:   true,
			ok:         false,
			path:       "/app/groups",
			wantURL:    "/?redirect=%2Fapp%2Fgroups",
			wantCalls:  1,
			wantLogout: true,
		},
		{
			name:    "query string is preserved in the redirect target",
			path:    "/app/grupos?page=2",
			wantURL: "/?redirect=%2Fapp%2Fgrupos%3Fpage%3D2",
		},
		{
			name:      "protected root with a query still lands on the default page",
			loggedIn:  true,
			ok:        true,
			path:      "/app?x=1",
			wantURL:   "/app/home",
			wantCalls: 1,
		},
		{
			name:       "validation error is fail-closed",
			loggedIn:   true,
			err:        errors.New("network down"),
			path:       "/app/subjects",
			wantURL:    "/?redirect=%2Fapp%2Fsubjects",
			wantCalls:  1,
			wantLogout: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			validator := testutil.NewStubValidator(tt.ok, tt.err)
			guard, store := newGuard(t, tt.loggedIn, validator)

			decision := guard.Check(context.Background(), tt.path)

			if tt.wantURL == "" {
				assert.True(t, decision.Allow)
			} else {
				assert.False(t, decision.Allow)
				assert.Equal(t, tt.wantURL, decision.URL())
			}
			assert.Equal(t, tt.wantCalls, validator.Calls())
			if tt.wantLogout {
				state := store.GetState()
				assert.False(t, state.IsAuthenticated)
				assert.Empty(t, state.Token)
				assert.Nil(t, state.User)
			}
		})
	}
}

// The local session check must short-circuit before the validator is ever
// consulted: a missing credential costs no network call.
func TestGuard_Check_localCheckFirst(t *testing.T) {
	validator := testutil.NewStubValidator(true, nil)
	guard, _ := newGuard(t, false, validator)

	decision := guard.Check(context.Background(), "/app/activities")

	assert.False(t, decision.Allow)
	assert.Zero(t, validator.Calls())
}

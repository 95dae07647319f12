package validationsvc

import (
	"context"
	"net/http"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/session"
	"github.com/trezcool/darasa/httpclient"
)

// RemoteValidator asks the academic API whether the token is still usable by
// fetching the identity it maps to. It uses its own bare client (no
// authorizer hooks) so a rejected probe cannot feed back into the session.
type RemoteValidator struct {
	client *httpclient.Client
	mePath string
}

var _ session.TokenValidator = (*RemoteValidator)(nil)

func NewRemoteValidator(client *httpclient.Client) *RemoteValidator {
	return &RemoteValidator{client: client, mePath: "/auth/me"}
}

// ValidateToken resolves true on 2xx and false on 401/403. Transport failures
// and unexpected statuses are errors: no verdict was reached, and callers
// treat that as invalid.
func (v *RemoteValidator) ValidateToken(ctx context.Context, token string, usr session.User) (bool, error) {
	req, err := v.client.NewRequest(ctx, http.MethodGet, v.mePath, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := v.client.Do(req)
	if err != nil {
		var apiErr *httpclient.APIError
		if errors.As(err, &apiErr) {
			if apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden {
				return false, nil
			}
			return false, errors.Wrapf(err, "unexpected status %d", apiErr.StatusCode)
		}
		return false, errors.Wrap(err, "reaching identity endpoint")
	}
	resp.Body.Close()
	return true, nil
}

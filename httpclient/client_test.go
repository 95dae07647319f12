package httpclient_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/darasa/httpclient"
)

func newClient(srv *httptest.Server) *httpclient.Client {
	return httpclient.New(srv.URL, 5*time.Second)
}

func TestClient_hooks(t *testing.T) {
	var gotHeader string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Get("X-Test")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	client := newClient(srv)
	client.OnRequest(func(req *http.Request) error {
		req.Header.Set("X-Test", "hooked")
		return nil
	})
	var respHookRan bool
	client.OnResponse(func(resp *http.Response) error {
		respHookRan = true
		return nil
	}, nil)

	var out map[string]bool
	if err := client.GetJSON(context.Background(), "/ping", &out); err != nil {
		t.Fatalf("GetJSON() failed: %v", err)
	}
	assert.Equal(t, "hooked", gotHeader)
	assert.True(t, respHookRan)
	assert.True(t, out["ok"])
}

func TestClient_apiError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer srv.Close()

	client := newClient(srv)
	var errHookErr error
	client.OnResponse(nil, func(resp *http.Response, err error) error {
		errHookErr = err
		return err
	})

	err := client.GetJSON(context.Background(), "/missing", nil)

	var apiErr *httpclient.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("GetJSON() = %v; want *APIError", err)
	}
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, err, errHookErr) // re-raised unmodified
}

func TestClient_requestHookAborts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("request should never have been dispatched")
	}))
	defer srv.Close()

	client := newClient(srv)
	client.OnRequest(func(req *http.Request) error {
		return errors.New("abort")
	})

	err := client.GetJSON(context.Background(), "/ping", nil)
	assert.Error(t, err)
}

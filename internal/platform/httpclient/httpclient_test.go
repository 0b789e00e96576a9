package httpclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoJSON_SendsHeadersAndDecodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("X-Api-Key"))
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "/v1/echo", r.URL.Path)

		var in map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		_ = json.NewEncoder(w).Encode(map[string]string{"got": in["name"]})
	}))
	defer srv.Close()

	c, err := New(srv.URL+"/", WithHeader("X-Api-Key", "secret"))
	require.NoError(t, err)

	var out map[string]string
	err = c.DoJSON(context.Background(), http.MethodPost, "v1/echo",
		map[string]string{"Authorization": "Bearer tok"}, map[string]string{"name": "zebra"}, &out)
	require.NoError(t, err)
	require.Equal(t, "zebra", out["got"])
}

func TestDoJSON_RetriesOnlyIdempotentRequests(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c, err := New(srv.URL, WithRetries(2, time.Millisecond))
	require.NoError(t, err)

	require.NoError(t, c.DoJSON(context.Background(), http.MethodGet, "/x", nil, nil, nil))
	require.Equal(t, int32(3), calls.Load())

	calls.Store(0)
	err = c.DoJSON(context.Background(), http.MethodPost, "/x", nil, nil, nil)
	require.True(t, StatusIs(err, http.StatusServiceUnavailable))
	require.Equal(t, int32(1), calls.Load())
}

func TestDoJSON_ClientErrorsAreNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c, err := New(srv.URL, WithRetries(3, time.Millisecond))
	require.NoError(t, err)

	err = c.DoJSON(context.Background(), http.MethodGet, "/x", nil, nil, nil)
	require.True(t, StatusIs(err, http.StatusUnauthorized, http.StatusForbidden))
	require.Equal(t, int32(1), calls.Load())

	var he *HTTPError
	require.ErrorAs(t, err, &he)
	require.Equal(t, "nope", he.Body)
}

func TestNew_Validation(t *testing.T) {
	_, err := New("not a url")
	require.Error(t, err)

	c, err := New("")
	require.NoError(t, err)
	require.Empty(t, c.BaseURL())
	require.Error(t, c.DoJSON(context.Background(), http.MethodGet, "/x", nil, nil, nil))

	var nilClient *Client
	require.ErrorIs(t, nilClient.DoJSON(context.Background(), http.MethodGet, "/x", nil, nil, nil), ErrNilClient)
}

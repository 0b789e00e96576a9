package middleware

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"zoo-keeper/internal/platform/logger"
	"zoo-keeper/internal/ports/auth"
	"zoo-keeper/internal/ports/capabilities"

	"github.com/stretchr/testify/require"
)

type stubVerifier struct {
	claims auth.Claims
	err    error
}

func (v stubVerifier) Verify(ctx context.Context, token string) (auth.Claims, error) {
	if token != "good" {
		return auth.Claims{}, errors.New("bad token")
	}
	return v.claims, v.err
}

type stubCaps map[string]bool

func (c stubCaps) HasFeature(ctx context.Context, in capabilities.CapabilityCheck) (bool, error) {
	return c[in.UserID+"|"+in.Feature], nil
}

func captureClaims(t *testing.T, mw func(http.Handler) http.Handler, req *http.Request) (auth.Claims, bool) {
	t.Helper()
	var got auth.Claims
	var ok bool
	h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok = GetClaims(r.Context())
	}))
	h.ServeHTTP(httptest.NewRecorder(), req)
	return got, ok
}

func TestAuthContext_DevHeaders(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Debug-User-ID", "keeper")
	req.Header.Set("X-Debug-Staff", "TRUE")

	c, ok := captureClaims(t, AuthContext(nil, nil), req)
	require.True(t, ok)
	require.Equal(t, auth.Claims{UserID: "keeper", IsStaff: true}, c)

	_, ok = captureClaims(t, AuthContext(nil, nil), httptest.NewRequest(http.MethodGet, "/", nil))
	require.False(t, ok)
}

func TestAuthContext_BearerAndCapabilityPromotion(t *testing.T) {
	v := stubVerifier{claims: auth.Claims{UserID: "u1"}}
	caps := stubCaps{"u1|" + capabilities.FeatureStaff: true}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good")
	c, ok := captureClaims(t, AuthContext(v, caps), req)
	require.True(t, ok)
	require.True(t, c.IsStaff)

	// Con verifier, los headers de debug se ignoran.
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Debug-User-ID", "intruder")
	_, ok = captureClaims(t, AuthContext(v, caps), req)
	require.False(t, ok)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer bad")
	_, ok = captureClaims(t, AuthContext(v, caps), req)
	require.False(t, ok)
}

func TestBearerToken(t *testing.T) {
	require.Equal(t, "abc", bearerToken("Bearer abc"))
	require.Equal(t, "abc", bearerToken("bearer  abc "))
	require.Empty(t, bearerToken("Basic abc"))
	require.Empty(t, bearerToken("abc"))
}

func TestAccessLog_WritesOneLinePerRequest(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Options{Level: logger.Info, Output: &buf})

	h := AccessLog(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusConflict)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/animals", nil))

	line := strings.TrimSpace(buf.String())
	require.Equal(t, 1, strings.Count(line, "\n")+1)
	require.Contains(t, line, "level=warn")
	require.Contains(t, line, "method=POST")
	require.Contains(t, line, "path=/animals")
	require.Contains(t, line, "status=409")
}

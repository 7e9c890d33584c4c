package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticAuthenticator map[string]*Principal

func (a staticAuthenticator) Authenticate(token string) (*Principal, error) {
	if p, ok := a[token]; ok {
		return p, nil
	}
	return nil, errors.New("unknown token")
}

var testTokens = staticAuthenticator{
	"operator-token": {Subject: "admin", Scopes: []string{"exclusions:write"}},
	"reader-token":   {Subject: "viewer"},
}

func serve(h http.Handler, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPut, "/junk-exclusions", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func errorBody(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body["error"]
}

func TestBearer_StoresPrincipal(t *testing.T) {
	var got *Principal
	h := Bearer(testTokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = PrincipalFrom(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	w := serve(h, "Bearer operator-token")
	assert.Equal(t, http.StatusNoContent, w.Code)
	require.NotNil(t, got)
	assert.Equal(t, "admin", got.Subject)

	// Scheme is case-insensitive.
	w = serve(h, "bearer reader-token")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "viewer", got.Subject)
}

func TestBearer_Rejects(t *testing.T) {
	h := Bearer(testTokens)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Fatal("handler must not run")
	}))

	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"no header", "", "missing bearer token"},
		{"basic scheme", "Basic dXNlcjpwYXNz", "missing bearer token"},
		{"scheme only", "Bearer", "missing bearer token"},
		{"extra fields", "Bearer operator-token extra", "missing bearer token"},
		{"unknown token", "Bearer forged", "invalid or expired token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(h, tt.header)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			assert.Contains(t, w.Header().Get("WWW-Authenticate"), "Bearer")
			assert.Equal(t, tt.want, errorBody(t, w))
		})
	}
}

func TestRequireScope(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	h := Bearer(testTokens)(RequireScope("exclusions:write")(ok))

	assert.Equal(t, http.StatusOK, serve(h, "Bearer operator-token").Code)

	w := serve(h, "Bearer reader-token")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, w.Header().Get("WWW-Authenticate"))
	assert.Equal(t, "token lacks scope exclusions:write", errorBody(t, w))

	// Without Bearer in front there is no principal.
	assert.Equal(t, http.StatusUnauthorized, serve(RequireScope("exclusions:write")(ok), "Bearer operator-token").Code)
}

func TestPrincipalFrom(t *testing.T) {
	_, ok := PrincipalFrom(context.Background())
	assert.False(t, ok)

	_, ok = PrincipalFrom(WithPrincipal(context.Background(), nil))
	assert.False(t, ok)

	p := &Principal{Subject: "admin", Scopes: []string{"a"}}
	got, ok := PrincipalFrom(WithPrincipal(context.Background(), p))
	require.True(t, ok)
	assert.Same(t, p, got)
	assert.True(t, got.HasScope("a"))
	assert.False(t, got.HasScope("b"))

	var missing *Principal
	assert.False(t, missing.HasScope("a"))
}

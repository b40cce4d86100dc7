package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"worklog/internal/domain/auth"
	"worklog/internal/requestctx"
)

func TestAuthAttachesPrincipal(t *testing.T) {
	token, err := auth.GenerateToken("secret", auth.Claims{UserID: "u1", Email: "admin", Role: auth.RoleAdmin}, time.Hour, time.Now())
	require.NoError(t, err)

	var got requestctx.Principal
	var ok bool
	h := Auth("secret")(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got, ok = requestctx.GetPrincipal(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	h.ServeHTTP(httptest.NewRecorder(), req)
	require.True(t, ok)
	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, auth.RoleAdmin, got.Role)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	ok = false
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.False(t, ok)
}

func TestRequireAuth(t *testing.T) {
	h := RequireAuth(true)(noContent())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	h = RequireAuth(false)(noContent())
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestPolicyRequire(t *testing.T) {
	enforcer, err := auth.NewEnforcer()
	require.NoError(t, err)
	policy := Policy{Enforcer: enforcer, Enforced: true}
	h := policy.Require(auth.ResSettings, auth.ActWrite)(noContent())

	serve := func(role string) int {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		if role != "" {
			req = req.WithContext(requestctx.WithPrincipal(req.Context(), requestctx.Principal{UserID: "u", Role: role}))
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusUnauthorized, serve(""))
	assert.Equal(t, http.StatusForbidden, serve(auth.RoleUser))
	assert.Equal(t, http.StatusNoContent, serve(auth.RoleAdmin))

	open := Policy{Enforcer: enforcer}.Require(auth.ResSettings, auth.ActWrite)(noContent())
	rec := httptest.NewRecorder()
	open.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRecovererReturns500(t *testing.T) {
	h := RequestID(Recoverer(zapNop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
}

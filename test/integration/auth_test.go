//go:build integration

package integration

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegisterLoginMe(t *testing.T) {
	e := newEnv(t)

	registerResp := doJSON(t, http.MethodPost, e.public.URL+"/api/v1/users", map[string]string{
		"username": "alice",
		"password": "secret123",
	}, "")
	require.Equal(t, http.StatusCreated, registerResp.StatusCode)

	token := mustLogin(t, e.public.URL, "/api/v1/auth/login", "alice", "secret123")

	meResp := doJSON(t, http.MethodGet, e.public.URL+"/api/v1/auth/me", nil, token)
	require.Equal(t, http.StatusOK, meResp.StatusCode)

	var parsed struct {
		Data struct {
			Username string `json:"username"`
			IsAdmin  bool   `json:"is_admin"`
		} `json:"data"`
	}
	decodeBody(t, meResp, &parsed)
	require.Equal(t, "alice", parsed.Data.Username)
	require.False(t, parsed.Data.IsAdmin)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	e := newEnv(t)

	registerResp := doJSON(t, http.MethodPost, e.public.URL+"/api/v1/users", map[string]string{
		"username": "bob",
		"password": "secret123",
	}, "")
	require.Equal(t, http.StatusCreated, registerResp.StatusCode)

	wrongPassword := loginRaw(t, e.public.URL, "bob", "wrong-password")
	unknownUser := loginRaw(t, e.public.URL, "nobody", "wrong-password")

	require.Equal(t, http.StatusUnauthorized, wrongPassword.status)
	require.Equal(t, http.StatusUnauthorized, unknownUser.status)

	// The body must not reveal whether the account exists.
	require.Equal(t, wrongPassword.body, unknownUser.body)
}

func TestMissingAndBadTokens(t *testing.T) {
	e := newEnv(t)

	noToken := doJSON(t, http.MethodGet, e.public.URL+"/api/v1/auth/me", nil, "")
	require.Equal(t, http.StatusUnauthorized, noToken.StatusCode)
	require.Equal(t, "MISSING_CREDENTIALS", errorCode(t, noToken))

	badToken := doJSON(t, http.MethodGet, e.public.URL+"/api/v1/auth/me", nil, "not-a-jwt")
	require.Equal(t, http.StatusUnauthorized, badToken.StatusCode)
	require.Equal(t, "UNAUTHORIZED", errorCode(t, badToken))
}

func TestAdminGate(t *testing.T) {
	e := newEnv(t)

	registerResp := doJSON(t, http.MethodPost, e.public.URL+"/api/v1/users", map[string]string{
		"username": "carol",
		"password": "secret123",
	}, "")
	require.Equal(t, http.StatusCreated, registerResp.StatusCode)

	userToken := mustLogin(t, e.public.URL, "/api/v1/auth/login", "carol", "secret123")
	adminToken := mustLogin(t, e.admin.URL, "/admin/api/v1/auth/login", "admin", "admin-secret-1")

	// A regular user is rejected by admin-gated routes on both services.
	forbidden := doJSON(t, http.MethodGet, e.public.URL+"/api/v1/users", nil, userToken)
	require.Equal(t, http.StatusForbidden, forbidden.StatusCode)
	require.Equal(t, "FORBIDDEN", errorCode(t, forbidden))

	forbiddenAdmin := doJSON(t, http.MethodGet, e.admin.URL+"/admin/api/v1/users", nil, userToken)
	require.Equal(t, http.StatusForbidden, forbiddenAdmin.StatusCode)

	allowed := doJSON(t, http.MethodGet, e.admin.URL+"/admin/api/v1/users", nil, adminToken)
	require.Equal(t, http.StatusOK, allowed.StatusCode)
}

func TestTokenRejectedAfterAccountDeletion(t *testing.T) {
	e := newEnv(t)

	registerResp := doJSON(t, http.MethodPost, e.public.URL+"/api/v1/users", map[string]string{
		"username": "dave",
		"password": "secret123",
	}, "")
	require.Equal(t, http.StatusCreated, registerResp.StatusCode)

	var created struct {
		Data struct {
			ID int64 `json:"id"`
		} `json:"data"`
	}
	decodeBody(t, registerResp, &created)

	userToken := mustLogin(t, e.public.URL, "/api/v1/auth/login", "dave", "secret123")
	adminToken := mustLogin(t, e.admin.URL, "/admin/api/v1/auth/login", "admin", "admin-secret-1")

	deleteResp := doJSON(t, http.MethodDelete, e.admin.URL+"/admin/api/v1/users/"+itoa(created.Data.ID), nil, adminToken)
	require.Equal(t, http.StatusOK, deleteResp.StatusCode)

	meResp := doJSON(t, http.MethodGet, e.public.URL+"/api/v1/auth/me", nil, userToken)
	require.Equal(t, http.StatusUnauthorized, meResp.StatusCode)
}

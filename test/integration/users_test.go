//go:build integration

package integration

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAdminUserLifecycle(t *testing.T) {
	e := newEnv(t)
	adminToken := mustLogin(t, e.admin.URL, "/admin/api/v1/auth/login", "admin", "admin-secret-1")

	createResp := doJSON(t, http.MethodPost, e.admin.URL+"/admin/api/v1/users", map[string]any{
		"username": "worker",
		"password": "secret123",
		"is_admin": false,
	}, adminToken)
	require.Equal(t, http.StatusCreated, createResp.StatusCode)

	var created struct {
		Data struct {
			ID       int64  `json:"id"`
			Username string `json:"username"`
			IsAdmin  bool   `json:"is_admin"`
		} `json:"data"`
	}
	decodeBody(t, createResp, &created)
	require.Equal(t, "worker", created.Data.Username)
	require.False(t, created.Data.IsAdmin)

	dupResp := doJSON(t, http.MethodPost, e.admin.URL+"/admin/api/v1/users", map[string]any{
		"username": "worker",
		"password": "secret123",
	}, adminToken)
	require.Equal(t, http.StatusConflict, dupResp.StatusCode)
	require.Equal(t, "ALREADY_EXISTS", errorCode(t, dupResp))

	renameResp := doJSON(t, http.MethodPut, e.admin.URL+"/admin/api/v1/users/"+itoa(created.Data.ID), map[string]string{
		"username": "worker2",
	}, adminToken)
	require.Equal(t, http.StatusOK, renameResp.StatusCode)

	promoteResp := doJSON(t, http.MethodPut, e.admin.URL+"/admin/api/v1/users/"+itoa(created.Data.ID)+"/role", map[string]bool{
		"is_admin": true,
	}, adminToken)
	require.Equal(t, http.StatusOK, promoteResp.StatusCode)

	var promoted struct {
		Data struct {
			IsAdmin bool `json:"is_admin"`
		} `json:"data"`
	}
	decodeBody(t, promoteResp, &promoted)
	require.True(t, promoted.Data.IsAdmin)

	deleteResp := doJSON(t, http.MethodDelete, e.admin.URL+"/admin/api/v1/users/"+itoa(created.Data.ID), nil, adminToken)
	require.Equal(t, http.StatusOK, deleteResp.StatusCode)

	getResp := doJSON(t, http.MethodGet, e.admin.URL+"/admin/api/v1/users/"+itoa(created.Data.ID), nil, adminToken)
	require.Equal(t, http.StatusNotFound, getResp.StatusCode)
}

func TestSelfOrAdminBoundaries(t *testing.T) {
	e := newEnv(t)

	for _, name := range []string{"erin", "frank"} {
		resp := doJSON(t, http.MethodPost, e.public.URL+"/api/v1/users", map[string]string{
			"username": name,
			"password": "secret123",
		}, "")
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	erinToken := mustLogin(t, e.public.URL, "/api/v1/auth/login", "erin", "secret123")

	var erin struct {
		Data struct {
			ID int64 `json:"id"`
		} `json:"data"`
	}
	meResp := doJSON(t, http.MethodGet, e.public.URL+"/api/v1/auth/me", nil, erinToken)
	require.Equal(t, http.StatusOK, meResp.StatusCode)
	decodeBody(t, meResp, &erin)

	// Erin can read and update her own record but not anyone else's.
	selfResp := doJSON(t, http.MethodGet, e.public.URL+"/api/v1/users/"+itoa(erin.Data.ID), nil, erinToken)
	require.Equal(t, http.StatusOK, selfResp.StatusCode)

	otherResp := doJSON(t, http.MethodGet, e.public.URL+"/api/v1/users/"+itoa(erin.Data.ID+1), nil, erinToken)
	require.Equal(t, http.StatusForbidden, otherResp.StatusCode)

	passwordResp := doJSON(t, http.MethodPut, e.public.URL+"/api/v1/users/"+itoa(erin.Data.ID)+"/password", map[string]string{
		"password": "next-secret-9",
	}, erinToken)
	require.Equal(t, http.StatusOK, passwordResp.StatusCode)

	mustLogin(t, e.public.URL, "/api/v1/auth/login", "erin", "next-secret-9")
}

func TestAdminCannotDemoteOrDeleteSelf(t *testing.T) {
	e := newEnv(t)
	adminToken := mustLogin(t, e.admin.URL, "/admin/api/v1/auth/login", "admin", "admin-secret-1")

	var admin struct {
		Data struct {
			ID int64 `json:"id"`
		} `json:"data"`
	}
	meResp := doJSON(t, http.MethodGet, e.admin.URL+"/admin/api/v1/auth/me", nil, adminToken)
	require.Equal(t, http.StatusOK, meResp.StatusCode)
	decodeBody(t, meResp, &admin)

	demoteResp := doJSON(t, http.MethodPut, e.admin.URL+"/admin/api/v1/users/"+itoa(admin.Data.ID)+"/role", map[string]bool{
		"is_admin": false,
	}, adminToken)
	require.Equal(t, http.StatusForbidden, demoteResp.StatusCode)

	deleteResp := doJSON(t, http.MethodDelete, e.admin.URL+"/admin/api/v1/users/"+itoa(admin.Data.ID), nil, adminToken)
	require.Equal(t, http.StatusForbidden, deleteResp.StatusCode)
}

//go:build integration

package integration

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBulkImportCSV(t *testing.T) {
	e := newEnv(t)
	adminToken := mustLogin(t, e.admin.URL, "/admin/api/v1/auth/login", "admin", "admin-secret-1")

	csv := "username,password,is_admin\n" +
		"ivan,secret123,false\n" +
		"judy,secret123,true\n" +
		"ivan,other-secret,false\n" +
		"x,short\n"

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "users.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(csv))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req, err := http.NewRequest(http.MethodPost, e.admin.URL+"/admin/api/v1/users/import", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+adminToken)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var parsed struct {
		Data struct {
			Created int `json:"created"`
			Skipped int `json:"skipped"`
			Failed  []struct {
				Line   int    `json:"line"`
				Reason string `json:"reason"`
			} `json:"failed"`
		} `json:"data"`
	}
	decodeBody(t, resp, &parsed)

	require.Equal(t, 2, parsed.Data.Created)
	require.Equal(t, 1, parsed.Data.Skipped)
	require.Len(t, parsed.Data.Failed, 1)

	// Imported accounts can log in straight away.
	mustLogin(t, e.public.URL, "/api/v1/auth/login", "ivan", "secret123")
	judyToken := mustLogin(t, e.public.URL, "/api/v1/auth/login", "judy", "secret123")

	adminList := doJSON(t, http.MethodGet, e.public.URL+"/api/v1/users", nil, judyToken)
	require.Equal(t, http.StatusOK, adminList.StatusCode)
}

//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"go-user-admin/internal/auth"
	"go-user-admin/internal/config"
	"go-user-admin/internal/handler"
	"go-user-admin/internal/lockout"
	"go-user-admin/internal/middleware"
	"go-user-admin/internal/repository"
	"go-user-admin/internal/router"
	"go-user-admin/internal/service"
)

type env struct {
	public *httptest.Server
	admin  *httptest.Server
	users  *repository.MemoryUserRepository
}

// newEnv starts both services against shared in-memory stores, seeded with
// one admin account (admin / admin-secret-1).
func newEnv(t *testing.T) *env {
	t.Helper()

	userRepo := repository.NewMemoryUserRepository()
	groupRepo := repository.NewMemoryGroupRepository(userRepo)

	hasher, err := auth.NewHasher(bcrypt.MinCost)
	require.NoError(t, err)
	codec := auth.NewCodec("test-secret", 30*time.Minute)
	locks := lockout.NewMemoryStore(5, 15*time.Minute, 15*time.Minute)

	authService := service.NewAuthService(userRepo, hasher, codec, locks)
	userService := service.NewUserService(userRepo, hasher)
	groupService := service.NewGroupService(groupRepo, userRepo)

	require.NoError(t, userService.EnsureInitialAdmin(context.Background(), "admin", "admin-secret-1"))

	cfg := &config.Config{
		RequestTimeout:   30 * time.Second,
		CORSOrigins:      []string{"*"},
		RateLimitRPM:     0,
		AuthRateLimitRPM: 0,
	}

	authMiddleware := middleware.NewAuthMiddleware(authService)
	handlers := router.Handlers{
		Auth:   handler.NewAuthHandler(authService),
		User:   handler.NewUserHandler(userService),
		Group:  handler.NewGroupHandler(groupService),
		Import: handler.NewImportHandler(userService),
	}

	e := &env{
		public: httptest.NewServer(router.NewPublic(cfg, authMiddleware, handlers)),
		admin:  httptest.NewServer(router.NewAdmin(cfg, authMiddleware, handlers)),
		users:  userRepo,
	}
	t.Cleanup(e.public.Close)
	t.Cleanup(e.admin.Close)

	return e
}

func login(t *testing.T, serverURL string, loginPath string, username string, password string) (string, int) {
	t.Helper()

	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	resp, err := http.Post(serverURL+loginPath, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", resp.StatusCode
	}

	var parsed struct {
		Success bool `json:"success"`
		Data    struct {
			AccessToken string `json:"access_token"`
			TokenType   string `json:"token_type"`
			ExpiresIn   int64  `json:"expires_in"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	require.True(t, parsed.Success)
	require.NotEmpty(t, parsed.Data.AccessToken)
	require.Equal(t, "bearer", parsed.Data.TokenType)

	return parsed.Data.AccessToken, resp.StatusCode
}

func mustLogin(t *testing.T, serverURL string, loginPath string, username string, password string) string {
	t.Helper()

	token, status := login(t, serverURL, loginPath, username, password)
	require.Equal(t, http.StatusOK, status)
	return token
}

type rawResponse struct {
	status int
	body   string
}

// loginRaw captures the exact failure body so tests can assert that
// different failure causes are byte-identical on the wire.
func loginRaw(t *testing.T, serverURL string, username string, password string) rawResponse {
	t.Helper()

	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	resp, err := http.Post(serverURL+"/api/v1/auth/login", "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return rawResponse{status: resp.StatusCode, body: string(body)}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

func doJSON(t *testing.T, method string, url string, body any, accessToken string) *http.Response {
	t.Helper()

	var reader *bytes.Reader
	if body == nil {
		reader = bytes.NewReader([]byte{})
	} else {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func errorCode(t *testing.T, resp *http.Response) string {
	t.Helper()

	var parsed struct {
		Success bool `json:"success"`
		Error   *struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	decodeBody(t, resp, &parsed)
	require.False(t, parsed.Success)
	require.NotNil(t, parsed.Error)

	return parsed.Error.Code
}

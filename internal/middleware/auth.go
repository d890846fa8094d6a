package middleware

import (
	"context"
	"net/http"
	"strings"

	"go-user-admin/internal/model"
	"go-user-admin/pkg/apierror"
)

// identityResolver is what the guard needs from the auth service.
type identityResolver interface {
	Resolve(ctx context.Context, token string) (model.User, error)
}

type contextKey string

const currentUserContextKey contextKey = "current_user"

// AuthMiddleware is the access guard shared by the public and admin services.
// The admin gate is the same guard with requireAdmin set: one authentication
// path, two capability levels.
type AuthMiddleware struct {
	resolver identityResolver
}

func NewAuthMiddleware(resolver identityResolver) *AuthMiddleware {
	return &AuthMiddleware{resolver: resolver}
}

// RequireAuth admits any caller presenting a valid token for a live account.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return m.guard(next, false)
}

// RequireAdmin additionally demands the admin flag; failing that is a 403,
// not a 401, because the identity itself was fine.
func (m *AuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return m.guard(next, true)
}

func (m *AuthMiddleware) guard(next http.Handler, requireAdmin bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			writeGuardError(w, http.StatusUnauthorized, "MISSING_CREDENTIALS", "missing bearer token")
			return
		}

		user, err := m.resolver.Resolve(r.Context(), token)
		if err != nil {
			// A store outage is the one retryable failure; it must not be
			// reported as a credential problem.
			if apiErr, ok := apierror.From(err); ok && apiErr.HTTPStatus == http.StatusServiceUnavailable {
				writeGuardError(w, apiErr.HTTPStatus, apiErr.Code, apiErr.Message)
				return
			}

			// Malformed, tampered, expired and deleted-account all collapse
			// to one response so the caller learns nothing but "re-login".
			writeGuardError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid or expired token")
			return
		}

		if requireAdmin && !user.IsAdmin {
			writeGuardError(w, http.StatusForbidden, "FORBIDDEN", "admin privileges required")
			return
		}

		ctx := context.WithValue(r.Context(), currentUserContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return "", false
	}

	token := strings.TrimSpace(header[7:])
	if token == "" {
		return "", false
	}

	return token, true
}

// CurrentUser returns the resolved caller placed in the context by the guard.
func CurrentUser(ctx context.Context) (model.User, bool) {
	user, ok := ctx.Value(currentUserContextKey).(model.User)
	return user, ok
}

func writeGuardError(w http.ResponseWriter, status int, code string, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = jsonEncode(w, model.APIResponse{
		Success: false,
		Error: &model.APIError{
			Code:    code,
			Message: message,
		},
	})
}

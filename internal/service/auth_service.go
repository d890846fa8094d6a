package service

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"go-user-admin/internal/auth"
	"go-user-admin/internal/lockout"
	"go-user-admin/internal/model"
	"go-user-admin/internal/repository"
	"go-user-admin/pkg/apierror"
)

// PasswordHasher is what the services need from internal/auth's Hasher.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext string, hash string) bool
	VerifyDummy(plaintext string)
}

// AuthService orchestrates credential verification and token issuance. It
// holds no mutable state of its own: every request is an independent
// computation over the request inputs, the signing secret and the store.
type AuthService struct {
	users  repository.UserRepository
	hasher PasswordHasher
	codec  *auth.Codec
	locks  lockout.Store
	now    func() time.Time
}

func NewAuthService(users repository.UserRepository, hasher PasswordHasher, codec *auth.Codec, locks lockout.Store) *AuthService {
	return &AuthService{
		users:  users,
		hasher: hasher,
		codec:  codec,
		locks:  locks,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func invalidCredentials() *apierror.APIError {
	// One merged error for absent-user and wrong-password so responses cannot
	// be used to enumerate accounts.
	return apierror.New("INVALID_CREDENTIALS", "invalid username or password", "", http.StatusUnauthorized)
}

func accountLocked() *apierror.APIError {
	return apierror.New("LOCKED", "account temporarily locked", "", http.StatusLocked)
}

// Login verifies the credentials and issues an access token. The absent-user
// path still burns a full hash comparison so its latency matches the
// wrong-password path.
func (s *AuthService) Login(ctx context.Context, username string, password string) (model.Token, model.User, error) {
	if locked, err := s.locks.Locked(ctx, username); err != nil {
		slog.Warn("lockout store unavailable; continuing without lockout", "error", err)
	} else if locked {
		return model.Token{}, model.User{}, accountLocked()
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if apiErr, ok := apierror.From(err); ok && apiErr.HTTPStatus == http.StatusNotFound {
			s.hasher.VerifyDummy(password)
			s.recordFailure(ctx, username)
			return model.Token{}, model.User{}, invalidCredentials()
		}
		return model.Token{}, model.User{}, s.storeError("login lookup", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		s.recordFailure(ctx, username)
		return model.Token{}, model.User{}, invalidCredentials()
	}

	if err := s.locks.Clear(ctx, username); err != nil {
		slog.Warn("lockout store unavailable; strikes not cleared", "error", err)
	}

	tokenString, err := s.codec.Issue(user.Username, s.now())
	if err != nil {
		return model.Token{}, model.User{}, err
	}

	token := model.Token{
		AccessToken: tokenString,
		TokenType:   "bearer",
		ExpiresIn:   int64(s.codec.TTL().Seconds()),
	}
	return token, user, nil
}

// Resolve maps a bearer token back to the current user record. Token errors
// from the codec propagate unchanged; a verified token whose subject no
// longer exists yields the store's not-found error, which is a distinct,
// reauthenticate-and-retry condition rather than a signature failure.
func (s *AuthService) Resolve(ctx context.Context, tokenString string) (model.User, error) {
	claims, err := s.codec.Verify(tokenString, s.now())
	if err != nil {
		return model.User{}, err
	}

	user, err := s.users.FindByUsername(ctx, claims.Subject)
	if err != nil {
		if apiErr, ok := apierror.From(err); ok && apiErr.HTTPStatus == http.StatusNotFound {
			return model.User{}, apiErr
		}
		return model.User{}, s.storeError("resolve lookup", err)
	}

	return user, nil
}

func (s *AuthService) recordFailure(ctx context.Context, username string) {
	locked, err := s.locks.Strike(ctx, username)
	if err != nil {
		slog.Warn("lockout store unavailable; strike not recorded", "error", err)
		return
	}
	if locked {
		slog.Warn("account locked after repeated failed logins", "username", username)
	}
}

// storeError collapses unexpected store failures into the retryable
// STORE_UNAVAILABLE kind; the underlying cause goes to the log, not the
// client.
func (s *AuthService) storeError(op string, err error) error {
	slog.Error("credential store failure", "op", op, "error", err)
	return apierror.Unavailable("credential store unavailable")
}

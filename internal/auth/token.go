package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"go-user-admin/internal/model"
)

// Token verification failures. Tampering and wrong-key both surface as
// ErrSignatureInvalid so callers cannot tell which one failed.
var (
	ErrTokenMalformed   = errors.New("token malformed")
	ErrSignatureInvalid = errors.New("token signature invalid")
	ErrTokenExpired     = errors.New("token expired")
)

// Codec issues and verifies HS256-signed access tokens. The secret and TTL
// are fixed at construction: rotating the secret means building a new Codec,
// which invalidates every outstanding token at once.
type Codec struct {
	secret []byte
	ttl    time.Duration
}

func NewCodec(secret string, ttl time.Duration) *Codec {
	return &Codec{secret: []byte(secret), ttl: ttl}
}

func (c *Codec) TTL() time.Duration {
	return c.ttl
}

// Issue builds a token asserting subject, valid from now until now+TTL.
func (c *Codec) Issue(subject string, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		ID:        uuid.NewString(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", err
	}

	return signed, nil
}

// Verify checks structure, signature and expiry against now. It needs no I/O:
// the result is a pure function of (token, now, secret).
func (c *Codec) Verify(tokenString string, now time.Time) (model.TokenClaims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)

	claims := &jwt.RegisteredClaims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return c.secret, nil
	})

	switch {
	case err == nil && token.Valid:
		// fall through to claims checks below
	case errors.Is(err, jwt.ErrTokenMalformed):
		return model.TokenClaims{}, ErrTokenMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return model.TokenClaims{}, ErrSignatureInvalid
	case errors.Is(err, jwt.ErrTokenExpired):
		return model.TokenClaims{}, ErrTokenExpired
	default:
		return model.TokenClaims{}, ErrTokenMalformed
	}

	if claims.Subject == "" || claims.ExpiresAt == nil {
		return model.TokenClaims{}, ErrTokenMalformed
	}

	out := model.TokenClaims{
		Subject:   claims.Subject,
		ExpiresAt: claims.ExpiresAt.Time,
		TokenID:   claims.ID,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}

	return out, nil
}

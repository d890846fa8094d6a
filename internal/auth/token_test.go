package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCodecIssueAndVerify(t *testing.T) {
	t.Parallel()

	codec := NewCodec("unit-test-secret", 30*time.Minute)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tokenString, err := codec.Issue("alice", now)
	require.NoError(t, err)
	require.Len(t, strings.Split(tokenString, "."), 3)

	claims, err := codec.Verify(tokenString, now.Add(time.Minute))
	require.NoError(t, err)
	require.Equal(t, "alice", claims.Subject)
	require.Equal(t, now.Unix(), claims.IssuedAt.Unix())
	require.Equal(t, now.Add(30*time.Minute).Unix(), claims.ExpiresAt.Unix())
	require.NotEmpty(t, claims.TokenID)
}

func TestCodecVerifyExpiry(t *testing.T) {
	t.Parallel()

	codec := NewCodec("unit-test-secret", 30*time.Minute)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tokenString, err := codec.Issue("alice", now)
	require.NoError(t, err)

	t.Run("valid strictly before expiry", func(t *testing.T) {
		_, err := codec.Verify(tokenString, now.Add(30*time.Minute-time.Second))
		require.NoError(t, err)
	})

	t.Run("expired exactly at expiry", func(t *testing.T) {
		_, err := codec.Verify(tokenString, now.Add(30*time.Minute))
		require.ErrorIs(t, err, ErrTokenExpired)
	})

	t.Run("expired well after expiry", func(t *testing.T) {
		_, err := codec.Verify(tokenString, now.Add(24*time.Hour))
		require.ErrorIs(t, err, ErrTokenExpired)
	})
}

func TestCodecVerifyRejectsTampering(t *testing.T) {
	t.Parallel()

	codec := NewCodec("unit-test-secret", 30*time.Minute)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tokenString, err := codec.Issue("alice", now)
	require.NoError(t, err)

	t.Run("mutated signature segment", func(t *testing.T) {
		flipped := tokenString[:len(tokenString)-1]
		if strings.HasSuffix(tokenString, "A") {
			flipped += "B"
		} else {
			flipped += "A"
		}

		_, err := codec.Verify(flipped, now)
		require.ErrorIs(t, err, ErrSignatureInvalid)
	})

	t.Run("mutated claims segment", func(t *testing.T) {
		parts := strings.Split(tokenString, ".")
		parts[1] = "eyJzdWIiOiJtYWxsb3J5In0"

		_, err := codec.Verify(strings.Join(parts, "."), now)
		require.ErrorIs(t, err, ErrSignatureInvalid)
	})

	t.Run("wrong signing secret", func(t *testing.T) {
		other := NewCodec("a-different-secret", 30*time.Minute)

		_, err := other.Verify(tokenString, now)
		require.ErrorIs(t, err, ErrSignatureInvalid)
	})

	t.Run("unsigned alg none token", func(t *testing.T) {
		// {"alg":"none","typ":"JWT"}.{"sub":"alice"}.
		unsigned := "eyJhbGciOiJub25lIiwidHlwIjoiSldUIn0.eyJzdWIiOiJhbGljZSJ9."

		_, err := codec.Verify(unsigned, now)
		require.ErrorIs(t, err, ErrSignatureInvalid)
	})
}

func TestCodecVerifyRejectsGarbage(t *testing.T) {
	t.Parallel()

	codec := NewCodec("unit-test-secret", 30*time.Minute)
	now := time.Now().UTC()

	for _, input := range []string{"", "garbage", "a.b", "a.b.c.d", "....."} {
		_, err := codec.Verify(input, now)
		require.ErrorIs(t, err, ErrTokenMalformed, "input %q", input)
	}
}

func TestCodecSecretRotation(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	old := NewCodec("secret-v1", 30*time.Minute)
	rotated := NewCodec("secret-v2", 30*time.Minute)

	tokenString, err := old.Issue("alice", now)
	require.NoError(t, err)

	// Rotating the secret invalidates every outstanding token at once.
	_, err = rotated.Verify(tokenString, now)
	require.ErrorIs(t, err, ErrSignatureInvalid)
}

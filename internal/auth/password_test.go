package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHasherHashAndVerify(t *testing.T) {
	t.Parallel()

	hasher, err := NewHasher(bcrypt.MinCost)
	require.NoError(t, err)

	hash, err := hasher.Hash("secret123")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	require.NotContains(t, hash, "secret123")

	require.True(t, hasher.Verify("secret123", hash))
	require.False(t, hasher.Verify("secret124", hash))
	require.False(t, hasher.Verify("", hash))
}

func TestHasherSaltsEveryHash(t *testing.T) {
	t.Parallel()

	hasher, err := NewHasher(bcrypt.MinCost)
	require.NoError(t, err)

	first, err := hasher.Hash("secret123")
	require.NoError(t, err)
	second, err := hasher.Hash("secret123")
	require.NoError(t, err)

	require.NotEqual(t, first, second)
	require.True(t, hasher.Verify("secret123", first))
	require.True(t, hasher.Verify("secret123", second))
}

func TestHasherVerifyMalformedHash(t *testing.T) {
	t.Parallel()

	hasher, err := NewHasher(bcrypt.MinCost)
	require.NoError(t, err)

	// Corrupt or foreign hash formats are a plain false, never an error.
	require.False(t, hasher.Verify("secret123", ""))
	require.False(t, hasher.Verify("secret123", "not-a-bcrypt-hash"))
	require.False(t, hasher.Verify("secret123", "$2a$xx$broken"))
}

func TestHasherClampsCost(t *testing.T) {
	t.Parallel()

	hasher, err := NewHasher(99)
	require.NoError(t, err)

	hash, err := hasher.Hash("secret123")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	require.Equal(t, bcrypt.DefaultCost, cost)
}

func TestHasherVerifyDummy(t *testing.T) {
	t.Parallel()

	hasher, err := NewHasher(bcrypt.MinCost)
	require.NoError(t, err)

	// Must never match and never panic; it exists only to equalize timing.
	hasher.VerifyDummy("anything")
	hasher.VerifyDummy("")
}

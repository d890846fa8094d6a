package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"go-user-admin/internal/auth"
	"go-user-admin/internal/repository"
)

func newUserService(t *testing.T) (*UserService, *repository.MemoryUserRepository) {
	t.Helper()

	hasher, err := auth.NewHasher(bcrypt.MinCost)
	require.NoError(t, err)

	users := repository.NewMemoryUserRepository()
	return NewUserService(users, hasher), users
}

func TestRegisterNeverCreatesAdmins(t *testing.T) {
	t.Parallel()

	svc, _ := newUserService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice", "secret123")
	require.NoError(t, err)
	require.False(t, user.IsAdmin)
	require.NotZero(t, user.ID)
	require.NotEmpty(t, user.PasswordHash)
	require.NotEqual(t, "secret123", user.PasswordHash)
}

func TestRegisterValidation(t *testing.T) {
	t.Parallel()

	svc, _ := newUserService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "al", "secret123")
	requireErrorCode(t, err, "BAD_REQUEST")

	_, err = svc.Register(ctx, "alice", "short")
	requireErrorCode(t, err, "BAD_REQUEST")
}

func TestRegisterDuplicateUsername(t *testing.T) {
	t.Parallel()

	svc, _ := newUserService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "secret123")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "alice", "different123")
	requireErrorCode(t, err, "ALREADY_EXISTS")
}

func TestSetRolePromotesAndDemotes(t *testing.T) {
	t.Parallel()

	svc, _ := newUserService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice", "secret123")
	require.NoError(t, err)

	promoted, err := svc.SetRole(ctx, user.ID, true)
	require.NoError(t, err)
	require.True(t, promoted.IsAdmin)

	demoted, err := svc.SetRole(ctx, user.ID, false)
	require.NoError(t, err)
	require.False(t, demoted.IsAdmin)
}

func TestChangePasswordRehashes(t *testing.T) {
	t.Parallel()

	svc, users := newUserService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice", "secret123")
	require.NoError(t, err)
	before := user.PasswordHash

	require.NoError(t, svc.ChangePassword(ctx, user.ID, "newsecret456"))

	after, err := users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotEqual(t, before, after.PasswordHash)
	require.NotContains(t, after.PasswordHash, "newsecret456")
}

func TestEnsureInitialAdmin(t *testing.T) {
	t.Parallel()

	svc, users := newUserService(t)
	ctx := context.Background()

	require.NoError(t, svc.EnsureInitialAdmin(ctx, "admin", "admin-password"))

	admin, err := users.FindByUsername(ctx, "admin")
	require.NoError(t, err)
	require.True(t, admin.IsAdmin)

	// Second start is a no-op, not a conflict.
	require.NoError(t, svc.EnsureInitialAdmin(ctx, "admin", "admin-password"))

	// Unconfigured credentials skip seeding entirely.
	require.NoError(t, svc.EnsureInitialAdmin(ctx, "", ""))
}

func TestImportCSV(t *testing.T) {
	t.Parallel()

	svc, users := newUserService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "existing", "secret123")
	require.NoError(t, err)

	input := strings.Join([]string{
		"username,password,is_admin",
		"alice,password123,false",
		"bob,password456,true",
		"existing,password789",
		"al,tooshortname123",
		"carol",
		"dave,pw",
		"erin,password999",
	}, "\n")

	result, err := svc.ImportCSV(ctx, strings.NewReader(input))
	require.NoError(t, err)

	require.Equal(t, 3, result.Created)
	require.Equal(t, 1, result.Skipped)
	require.Len(t, result.Failed, 3)

	bob, err := users.FindByUsername(ctx, "bob")
	require.NoError(t, err)
	require.True(t, bob.IsAdmin)

	alice, err := users.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	require.False(t, alice.IsAdmin)
}

func TestImportCSVWithoutHeader(t *testing.T) {
	t.Parallel()

	svc, _ := newUserService(t)
	ctx := context.Background()

	result, err := svc.ImportCSV(ctx, strings.NewReader("alice,password123\nbob,password456\n"))
	require.NoError(t, err)
	require.Equal(t, 2, result.Created)
	require.Zero(t, result.Skipped)
	require.Empty(t, result.Failed)
}

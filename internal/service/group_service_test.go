package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"go-user-admin/internal/auth"
	"go-user-admin/internal/repository"
)

func newGroupService(t *testing.T) (*GroupService, *UserService) {
	t.Helper()

	hasher, err := auth.NewHasher(bcrypt.MinCost)
	require.NoError(t, err)

	users := repository.NewMemoryUserRepository()
	groups := repository.NewMemoryGroupRepository(users)
	return NewGroupService(groups, users), NewUserService(users, hasher)
}

func TestGroupCRUD(t *testing.T) {
	t.Parallel()

	svc, _ := newGroupService(t)
	ctx := context.Background()

	group, err := svc.Create(ctx, "engineering")
	require.NoError(t, err)
	require.NotZero(t, group.ID)

	_, err = svc.Create(ctx, "engineering")
	requireErrorCode(t, err, "ALREADY_EXISTS")

	_, err = svc.Create(ctx, "   ")
	requireErrorCode(t, err, "BAD_REQUEST")

	renamed, err := svc.Rename(ctx, group.ID, "platform")
	require.NoError(t, err)
	require.Equal(t, "platform", renamed.Name)

	groups, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, groups, 1)

	require.NoError(t, svc.Delete(ctx, group.ID))
	_, err = svc.Get(ctx, group.ID)
	requireErrorCode(t, err, "NOT_FOUND")
}

func TestGroupMembership(t *testing.T) {
	t.Parallel()

	svc, userSvc := newGroupService(t)
	ctx := context.Background()

	group, err := svc.Create(ctx, "engineering")
	require.NoError(t, err)

	alice, err := userSvc.Register(ctx, "alice", "secret123")
	require.NoError(t, err)

	require.NoError(t, svc.AddMember(ctx, group.ID, alice.ID))

	// Unknown user or group ids are a 404, not a silent no-op.
	err = svc.AddMember(ctx, group.ID, 999)
	requireErrorCode(t, err, "NOT_FOUND")
	err = svc.AddMember(ctx, 999, alice.ID)
	requireErrorCode(t, err, "NOT_FOUND")

	detail, err := svc.Get(ctx, group.ID)
	require.NoError(t, err)
	require.Len(t, detail.Members, 1)
	require.Equal(t, "alice", detail.Members[0].Username)

	require.NoError(t, svc.RemoveMember(ctx, group.ID, alice.ID))

	detail, err = svc.Get(ctx, group.ID)
	require.NoError(t, err)
	require.Empty(t, detail.Members)
}

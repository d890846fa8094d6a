package service

import (
	"context"
	"strings"

	"go-user-admin/internal/model"
	"go-user-admin/internal/repository"
	"go-user-admin/pkg/apierror"
)

type GroupService struct {
	groups repository.GroupRepository
	users  repository.UserRepository
}

func NewGroupService(groups repository.GroupRepository, users repository.UserRepository) *GroupService {
	return &GroupService{groups: groups, users: users}
}

func (s *GroupService) Create(ctx context.Context, name string) (model.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Group{}, apierror.BadRequest("group name is required", "name")
	}

	return s.groups.Create(ctx, model.Group{Name: name})
}

func (s *GroupService) List(ctx context.Context) ([]model.Group, error) {
	return s.groups.List(ctx)
}

func (s *GroupService) Get(ctx context.Context, id int64) (model.GroupDetail, error) {
	group, err := s.groups.FindByID(ctx, id)
	if err != nil {
		return model.GroupDetail{}, err
	}

	members, err := s.groups.Members(ctx, id)
	if err != nil {
		return model.GroupDetail{}, err
	}

	return model.GroupDetail{Group: group, Members: members}, nil
}

func (s *GroupService) Rename(ctx context.Context, id int64, name string) (model.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Group{}, apierror.BadRequest("group name is required", "name")
	}

	if err := s.groups.UpdateName(ctx, id, name); err != nil {
		return model.Group{}, err
	}

	return s.groups.FindByID(ctx, id)
}

func (s *GroupService) Delete(ctx context.Context, id int64) error {
	return s.groups.Delete(ctx, id)
}

// AddMember checks both sides exist before linking so a bad id surfaces as a
// 404 rather than a silent no-op.
func (s *GroupService) AddMember(ctx context.Context, groupID int64, userID int64) error {
	if _, err := s.groups.FindByID(ctx, groupID); err != nil {
		return err
	}
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return err
	}

	return s.groups.AddMember(ctx, groupID, userID)
}

func (s *GroupService) RemoveMember(ctx context.Context, groupID int64, userID int64) error {
	if _, err := s.groups.FindByID(ctx, groupID); err != nil {
		return err
	}

	return s.groups.RemoveMember(ctx, groupID, userID)
}

package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go-user-admin/internal/model"
	"go-user-admin/pkg/apierror"
)

type memberKey struct {
	groupID int64
	userID  int64
}

type MemoryGroupRepository struct {
	mu      sync.RWMutex
	nextID  int64
	groups  map[int64]model.Group
	members map[memberKey]struct{}

	// Users resolves member ids to user records; wire the same repository the
	// rest of the test uses.
	Users *MemoryUserRepository
}

func NewMemoryGroupRepository(users *MemoryUserRepository) *MemoryGroupRepository {
	return &MemoryGroupRepository{
		nextID:  1,
		groups:  map[int64]model.Group{},
		members: map[memberKey]struct{}{},
		Users:   users,
	}
}

func (r *MemoryGroupRepository) FindByID(_ context.Context, id int64) (model.Group, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.groups[id]
	if !ok {
		return model.Group{}, apierror.NotFound("group not found", fmt.Sprintf("%d", id))
	}
	return g, nil
}

func (r *MemoryGroupRepository) FindByName(_ context.Context, name string) (model.Group, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, g := range r.groups {
		if g.Name == name {
			return g, nil
		}
	}
	return model.Group{}, apierror.NotFound("group not found", name)
}

func (r *MemoryGroupRepository) List(_ context.Context) ([]model.Group, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	groups := make([]model.Group, 0, len(r.groups))
	for _, g := range r.groups {
		groups = append(groups, g)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].ID < groups[j].ID })
	return groups, nil
}

func (r *MemoryGroupRepository) Create(_ context.Context, g model.Group) (model.Group, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.groups {
		if existing.Name == g.Name {
			return model.Group{}, apierror.Conflict("group already exists", g.Name)
		}
	}

	now := time.Now().UTC()
	g.ID = r.nextID
	r.nextID++
	g.CreatedAt = now
	g.UpdatedAt = now
	r.groups[g.ID] = g
	return g, nil
}

func (r *MemoryGroupRepository) UpdateName(_ context.Context, id int64, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.groups[id]
	if !ok {
		return apierror.NotFound("group not found", fmt.Sprintf("%d", id))
	}
	for _, existing := range r.groups {
		if existing.ID != id && existing.Name == name {
			return apierror.Conflict("group already exists", name)
		}
	}

	g.Name = name
	g.UpdatedAt = time.Now().UTC()
	r.groups[id] = g
	return nil
}

func (r *MemoryGroupRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.groups[id]; !ok {
		return apierror.NotFound("group not found", fmt.Sprintf("%d", id))
	}

	delete(r.groups, id)
	for key := range r.members {
		if key.groupID == id {
			delete(r.members, key)
		}
	}
	return nil
}

func (r *MemoryGroupRepository) AddMember(_ context.Context, groupID int64, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.members[memberKey{groupID: groupID, userID: userID}] = struct{}{}
	return nil
}

func (r *MemoryGroupRepository) RemoveMember(_ context.Context, groupID int64, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.members, memberKey{groupID: groupID, userID: userID})
	return nil
}

func (r *MemoryGroupRepository) Members(ctx context.Context, groupID int64) ([]model.User, error) {
	r.mu.RLock()
	ids := []int64{}
	for key := range r.members {
		if key.groupID == groupID {
			ids = append(ids, key.userID)
		}
	}
	r.mu.RUnlock()

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	users := []model.User{}
	for _, id := range ids {
		u, err := r.Users.FindByID(ctx, id)
		if err != nil {
			continue
		}
		users = append(users, u)
	}
	return users, nil
}

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

// MemoryUserRepository keeps users in a map. Used by tests and by the
// integration suite so no database is needed.
type MemoryUserRepository struct {
	mu     sync.RWMutex
	nextID int64
	users  map[int64]model.User

	// FailWith, when set, is returned by every method. Tests use it to
	// simulate a store outage.
	FailWith error
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{nextID: 1, users: map[int64]model.User{}}
}

func (r *MemoryUserRepository) FindByID(_ context.Context, id int64) (model.User, error) {
	if r.FailWith != nil {
		return model.User{}, r.FailWith
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return model.User{}, apierror.NotFound("user not found", fmt.Sprintf("%d", id))
	}
	return u, nil
}

func (r *MemoryUserRepository) FindByUsername(_ context.Context, username string) (model.User, error) {
	if r.FailWith != nil {
		return model.User{}, r.FailWith
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	return model.User{}, apierror.NotFound("user not found", username)
}

func (r *MemoryUserRepository) List(_ context.Context) ([]model.User, error) {
	if r.FailWith != nil {
		return nil, r.FailWith
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]model.User, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (r *MemoryUserRepository) Count(_ context.Context) (int64, error) {
	if r.FailWith != nil {
		return 0, r.FailWith
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	return int64(len(r.users)), nil
}

func (r *MemoryUserRepository) Create(_ context.Context, u model.User) (model.User, error) {
	if r.FailWith != nil {
		return model.User{}, r.FailWith
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Username == u.Username {
			return model.User{}, apierror.Conflict("username already exists", u.Username)
		}
	}

	now := time.Now().UTC()
	u.ID = r.nextID
	r.nextID++
	u.CreatedAt = now
	u.UpdatedAt = now
	r.users[u.ID] = u
	return u, nil
}

func (r *MemoryUserRepository) UpdateUsername(_ context.Context, id int64, username string) error {
	if r.FailWith != nil {
		return r.FailWith
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return apierror.NotFound("user not found", fmt.Sprintf("%d", id))
	}
	for _, existing := range r.users {
		if existing.ID != id && existing.Username == username {
			return apierror.Conflict("username already exists", username)
		}
	}

	u.Username = username
	u.UpdatedAt = time.Now().UTC()
	r.users[id] = u
	return nil
}

func (r *MemoryUserRepository) UpdatePassword(_ context.Context, id int64, passwordHash string) error {
	if r.FailWith != nil {
		return r.FailWith
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return apierror.NotFound("user not found", fmt.Sprintf("%d", id))
	}

	u.PasswordHash = passwordHash
	u.UpdatedAt = time.Now().UTC()
	r.users[id] = u
	return nil
}

func (r *MemoryUserRepository) SetAdmin(_ context.Context, id int64, isAdmin bool) error {
	if r.FailWith != nil {
		return r.FailWith
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return apierror.NotFound("user not found", fmt.Sprintf("%d", id))
	}

	u.IsAdmin = isAdmin
	u.UpdatedAt = time.Now().UTC()
	r.users[id] = u
	return nil
}

func (r *MemoryUserRepository) Delete(_ context.Context, id int64) error {
	if r.FailWith != nil {
		return r.FailWith
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return apierror.NotFound("user not found", fmt.Sprintf("%d", id))
	}

	delete(r.users, id)
	return nil
}

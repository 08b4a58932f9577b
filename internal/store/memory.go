package store

import (
	"context"
	"sync"

	"github.com/authapi/apiserver/types"
)

// MemoryUserRepository is a mutex-guarded in-memory store used by tests and
// local development. The check-and-insert in Create happens under a single
// lock, so concurrent creates with the same email admit exactly one winner,
// matching the Postgres unique-index behavior.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]types.User // keyed by email, exact match
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		users: make(map[string]types.User),
	}
}

func (r *MemoryUserRepository) Exists(ctx context.Context, email string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.users[email]
	return exists, nil
}

func (r *MemoryUserRepository) GetByEmail(ctx context.Context, email string) (types.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, exists := r.users[email]
	if !exists {
		return types.User{}, ErrNotFound
	}
	return user, nil
}

func (r *MemoryUserRepository) Create(ctx context.Context, user types.User) (types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[user.Email]; exists {
		return types.User{}, ErrDuplicateEmail
	}
	r.users[user.Email] = user
	return user, nil
}

func (r *MemoryUserRepository) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.users), nil
}

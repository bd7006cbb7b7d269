package users

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type MemoryRepo struct {
	mu    sync.RWMutex
	users map[string]User
	bySub map[string]string
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		users: make(map[string]User),
		bySub: make(map[string]string),
	}
}

func (r *MemoryRepo) UpsertByGoogleSub(ctx context.Context, user User) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	if id, ok := r.bySub[user.GoogleSub]; ok {
		existing := r.users[id]
		existing.Email = user.Email
		existing.Name = user.Name
		existing.Picture = user.Picture
		existing.LastLoginAt = now
		r.users[id] = existing
		return existing, nil
	}

	user.ID = uuid.NewString()
	user.CreatedAt = now
	user.LastLoginAt = now
	r.users[user.ID] = user
	r.bySub[user.GoogleSub] = user.ID
	return user, nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, userID string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[userID]
	if !ok {
		return User{}, ErrNotFound
	}
	return user, nil
}

var _ Repo = (*MemoryRepo)(nil)

package memory

import (
	"context"
	"sync"

	"github.com/4and4/milo-server/internal/application/ports"
	"github.com/4and4/milo-server/internal/domain"
)

type UserRepository struct {
	mu   sync.RWMutex
	data map[string]*domain.User // keyed by email
}

// NewUserRepository returns an empty store.
func NewUserRepository() *UserRepository {
	return &UserRepository{data: make(map[string]*domain.User)}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *user
	r.data[user.Email] = &cp
	return nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.data[email]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

var _ ports.UserRepository = (*UserRepository)(nil)

package identity

import (
	"chat-rooms/contract"
	"chat-rooms/domain"
	"chat-rooms/errors"
	"context"
	"sync"
)

var _ contract.IdentityRepository = (*MemoryRepository)(nil)

// MemoryRepository lives as long as the process.
type MemoryRepository struct {
	mu sync.Mutex
	id domain.ClientID
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) Load(_ context.Context) (domain.ClientID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.id == "" {
		return "", errors.ErrIdentityNotFound
	}
	return r.id, nil
}

func (r *MemoryRepository) Save(_ context.Context, id domain.ClientID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.id = id
	return nil
}

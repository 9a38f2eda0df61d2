package memory

import (
	"context"
	"sync"

	"github.com/phrazzld/bookshelf-api/internal/domain"
	"github.com/phrazzld/bookshelf-api/internal/store"
)

// UserStore is an in-memory store.UserStore.
type UserStore struct {
	mu         sync.RWMutex
	byID       map[string]*domain.User
	byUsername map[string]string
}

var _ store.UserStore = (*UserStore)(nil)

// NewUserStore creates an empty UserStore.
func NewUserStore() *UserStore {
	return &UserStore{
		byID:       make(map[string]*domain.User),
		byUsername: make(map[string]string),
	}
}

// Create implements store.UserStore.
func (s *UserStore) Create(ctx context.Context, user *domain.User) error {
	if err := user.Validate(); err != nil {
		return err
	}
	if user.HashedPassword == "" {
		return domain.ErrEmptyHashedPassword
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byUsername[user.Username]; taken {
		return store.ErrUsernameExists
	}
	if _, exists := s.byID[user.ID]; exists {
		return store.ErrDuplicate
	}

	stored := *user
	stored.Password = ""
	s.byID[user.ID] = &stored
	s.byUsername[user.Username] = user.ID
	return nil
}

// GetByID implements store.UserStore.
func (s *UserStore) GetByID(ctx context.Context, id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.byID[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	out := *user
	return &out, nil
}

// GetByUsername implements store.UserStore.
func (s *UserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byUsername[username]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	out := *s.byID[id]
	return &out, nil
}

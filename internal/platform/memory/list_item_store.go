package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/phrazzld/bookshelf-api/internal/domain"
	"github.com/phrazzld/bookshelf-api/internal/store"
)

type ownerBook struct {
	ownerID string
	bookID  string
}

// ListItemStore is an in-memory store.ListItemStore. A single lock covers
// the uniqueness check and the write, so concurrent creates for the same
// owner and book cannot both succeed.
type ListItemStore struct {
	mu      sync.RWMutex
	items   map[string]*domain.ListItem
	order   []string
	byOwner map[ownerBook]string
}

var _ store.ListItemStore = (*ListItemStore)(nil)

// NewListItemStore creates an empty ListItemStore.
func NewListItemStore() *ListItemStore {
	return &ListItemStore{
		items:   make(map[string]*domain.ListItem),
		byOwner: make(map[ownerBook]string),
	}
}

// GetByID implements store.ListItemStore.
func (s *ListItemStore) GetByID(ctx context.Context, id string) (*domain.ListItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[id]
	if !ok {
		return nil, store.ErrListItemNotFound
	}
	return cloneListItem(item), nil
}

// Query implements store.ListItemStore.
func (s *ListItemStore) Query(
	ctx context.Context,
	filter store.ListItemFilter,
) ([]*domain.ListItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.ListItem, 0)
	for _, id := range s.order {
		item := s.items[id]
		if filter.OwnerID != "" && item.OwnerID != filter.OwnerID {
			continue
		}
		if filter.BookID != "" && item.BookID != filter.BookID {
			continue
		}
		result = append(result, cloneListItem(item))
	}
	return result, nil
}

// Create implements store.ListItemStore.
func (s *ListItemStore) Create(ctx context.Context, item *domain.ListItem) error {
	if err := item.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[item.ID]; exists {
		return store.ErrDuplicate
	}
	key := ownerBook{item.OwnerID, item.BookID}
	if _, exists := s.byOwner[key]; exists {
		return store.ErrListItemExists
	}

	s.items[item.ID] = cloneListItem(item)
	s.order = append(s.order, item.ID)
	s.byOwner[key] = item.ID
	return nil
}

// Update implements store.ListItemStore.
func (s *ListItemStore) Update(
	ctx context.Context,
	id string,
	update domain.ListItemUpdate,
) (*domain.ListItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.items[id]
	if !ok {
		return nil, store.ErrListItemNotFound
	}

	updated, err := current.Apply(update)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	oldKey := ownerBook{current.OwnerID, current.BookID}
	newKey := ownerBook{updated.OwnerID, updated.BookID}
	if newKey != oldKey {
		if _, taken := s.byOwner[newKey]; taken {
			return nil, store.ErrListItemExists
		}
		delete(s.byOwner, oldKey)
		s.byOwner[newKey] = id
	}

	s.items[id] = cloneListItem(updated)
	return cloneListItem(updated), nil
}

// Delete implements store.ListItemStore.
func (s *ListItemStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[id]
	if !ok {
		return store.ErrListItemNotFound
	}

	delete(s.items, id)
	delete(s.byOwner, ownerBook{item.OwnerID, item.BookID})
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func cloneListItem(item *domain.ListItem) *domain.ListItem {
	out := *item
	if item.FinishDate != nil {
		finish := *item.FinishDate
		out.FinishDate = &finish
	}
	return &out
}

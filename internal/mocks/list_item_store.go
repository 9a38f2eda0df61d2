package mocks

import (
	"context"

	"github.com/phrazzld/bookshelf-api/internal/domain"
	"github.com/phrazzld/bookshelf-api/internal/store"
)

// MockListItemStore implements store.ListItemStore for testing. Every call
// is recorded so tests can assert on the arguments the service passed.
type MockListItemStore struct {
	GetByIDFn func(ctx context.Context, id string) (*domain.ListItem, error)
	QueryFn   func(ctx context.Context, filter store.ListItemFilter) ([]*domain.ListItem, error)
	CreateFn  func(ctx context.Context, item *domain.ListItem) error
	UpdateFn  func(ctx context.Context, id string, update domain.ListItemUpdate) (*domain.ListItem, error)
	DeleteFn  func(ctx context.Context, id string) error

	QueryCalls  []store.ListItemFilter
	CreateCalls []*domain.ListItem
	UpdateCalls []ListItemUpdateCall
	DeleteCalls []string
}

// ListItemUpdateCall records the arguments of one Update call.
type ListItemUpdateCall struct {
	ID     string
	Update domain.ListItemUpdate
}

var _ store.ListItemStore = (*MockListItemStore)(nil)

// GetByID implements store.ListItemStore.
func (m *MockListItemStore) GetByID(ctx context.Context, id string) (*domain.ListItem, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, store.ErrListItemNotFound
}

// Query implements store.ListItemStore.
func (m *MockListItemStore) Query(
	ctx context.Context,
	filter store.ListItemFilter,
) ([]*domain.ListItem, error) {
	m.QueryCalls = append(m.QueryCalls, filter)
	if m.QueryFn != nil {
		return m.QueryFn(ctx, filter)
	}
	return nil, nil
}

// Create implements store.ListItemStore.
func (m *MockListItemStore) Create(ctx context.Context, item *domain.ListItem) error {
	m.CreateCalls = append(m.CreateCalls, item)
	if m.CreateFn != nil {
		return m.CreateFn(ctx, item)
	}
	return nil
}

// Update implements store.ListItemStore.
func (m *MockListItemStore) Update(
	ctx context.Context,
	id string,
	update domain.ListItemUpdate,
) (*domain.ListItem, error) {
	m.UpdateCalls = append(m.UpdateCalls, ListItemUpdateCall{ID: id, Update: update})
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, id, update)
	}
	return nil, store.ErrListItemNotFound
}

// Delete implements store.ListItemStore.
func (m *MockListItemStore) Delete(ctx context.Context, id string) error {
	m.DeleteCalls = append(m.DeleteCalls, id)
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	return nil
}

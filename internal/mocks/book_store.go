package mocks

import (
	"context"

	"github.com/phrazzld/bookshelf-api/internal/domain"
	"github.com/phrazzld/bookshelf-api/internal/store"
)

// MockBookStore implements store.BookStore for testing. Without Fn
// overrides it serves the Books map.
type MockBookStore struct {
	GetByIDFn     func(ctx context.Context, id string) (*domain.Book, error)
	GetManyByIDFn func(ctx context.Context, ids []string) ([]*domain.Book, error)

	Books map[string]*domain.Book

	GetManyByIDCalls [][]string
}

var _ store.BookStore = (*MockBookStore)(nil)

// NewMockBookStore creates a mock store serving books.
func NewMockBookStore(books ...*domain.Book) *MockBookStore {
	m := &MockBookStore{Books: make(map[string]*domain.Book, len(books))}
	for _, book := range books {
		m.Books[book.ID] = book
	}
	return m
}

// GetByID implements store.BookStore.
func (m *MockBookStore) GetByID(ctx context.Context, id string) (*domain.Book, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	if book, ok := m.Books[id]; ok {
		return book, nil
	}
	return nil, store.ErrBookNotFound
}

// GetManyByID implements store.BookStore.
func (m *MockBookStore) GetManyByID(ctx context.Context, ids []string) ([]*domain.Book, error) {
	m.GetManyByIDCalls = append(m.GetManyByIDCalls, ids)
	if m.GetManyByIDFn != nil {
		return m.GetManyByIDFn(ctx, ids)
	}
	books := make([]*domain.Book, 0, len(ids))
	for _, id := range ids {
		if book, ok := m.Books[id]; ok {
			books = append(books, book)
		}
	}
	return books, nil
}

package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/phrazzld/bookshelf-api/internal/domain"
	"github.com/phrazzld/bookshelf-api/internal/store"
)

// BookStore is an in-memory store.BookStore.
type BookStore struct {
	mu    sync.RWMutex
	books map[string]*domain.Book
}

var _ store.BookStore = (*BookStore)(nil)

// NewBookStore creates a BookStore holding books.
func NewBookStore(books ...*domain.Book) *BookStore {
	s := &BookStore{books: make(map[string]*domain.Book, len(books))}
	for _, book := range books {
		s.Put(book)
	}
	return s
}

// LoadBooksFile reads a JSON array of books from path.
func LoadBooksFile(path string) ([]*domain.Book, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read books file: %w", err)
	}
	var books []*domain.Book
	if err := json.Unmarshal(data, &books); err != nil {
		return nil, fmt.Errorf("failed to parse books file %s: %w", path, err)
	}
	for i, book := range books {
		if book == nil || book.ID == "" {
			return nil, fmt.Errorf("book at index %d in %s has no id", i, path)
		}
	}
	return books, nil
}

// Put inserts or replaces a book.
func (s *BookStore) Put(book *domain.Book) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *book
	s.books[book.ID] = &stored
}

// GetByID implements store.BookStore.
func (s *BookStore) GetByID(ctx context.Context, id string) (*domain.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	book, ok := s.books[id]
	if !ok {
		return nil, store.ErrBookNotFound
	}
	out := *book
	return &out, nil
}

// GetManyByID implements store.BookStore.
func (s *BookStore) GetManyByID(ctx context.Context, ids []string) ([]*domain.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	books := make([]*domain.Book, 0, len(ids))
	for _, id := range ids {
		if book, ok := s.books[id]; ok {
			out := *book
			books = append(books, &out)
		}
	}
	return books, nil
}

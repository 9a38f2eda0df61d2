package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/bookshelf-api/internal/domain"
	"github.com/phrazzld/bookshelf-api/internal/store"
)

// BookView is a book as seen by a particular caller. ListItem is set only
// when the caller is authenticated and has the book on their list.
type BookView struct {
	Book     *domain.Book     `json:"book"`
	ListItem *domain.ListItem `json:"listItem,omitempty"`
}

// BookService exposes read access to the book catalog.
type BookService interface {
	// GetBook returns the book with the caller's list item for it, if any.
	// userID may be empty for anonymous callers.
	GetBook(ctx context.Context, bookID, userID string) (*BookView, error)
}

type bookServiceImpl struct {
	books     store.BookStore
	listItems store.ListItemStore
	logger    *slog.Logger
}

var _ BookService = (*bookServiceImpl)(nil)

// NewBookService creates a BookService. It panics if any dependency is nil.
func NewBookService(
	books store.BookStore,
	listItems store.ListItemStore,
	logger *slog.Logger,
) BookService {
	if books == nil {
		panic("books cannot be nil")
	}
	if listItems == nil {
		panic("listItems cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &bookServiceImpl{
		books:     books,
		listItems: listItems,
		logger:    logger.With(slog.String("component", "book_service")),
	}
}

// GetBook implements BookService.
func (s *bookServiceImpl) GetBook(ctx context.Context, bookID, userID string) (*BookView, error) {
	book, err := s.books.GetByID(ctx, bookID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, domain.NewNotFoundError("book", bookID)
		}
		return nil, fmt.Errorf("failed to load book: %w", err)
	}

	view := &BookView{Book: book}
	if userID == "" {
		return view, nil
	}

	items, err := s.listItems.Query(ctx, store.ListItemFilter{OwnerID: userID, BookID: bookID})
	if err != nil {
		return nil, fmt.Errorf("failed to load list item for book: %w", err)
	}
	if len(items) > 0 {
		view.ListItem = items[0]
	}
	return view, nil
}

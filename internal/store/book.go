package store

import (
	"context"

	"github.com/phrazzld/bookshelf-api/internal/domain"
)

// BookStore is the read side of the book catalog used for joins.
type BookStore interface {
	// GetByID retrieves a book by its ID.
	// Returns ErrBookNotFound if the book does not exist.
	GetByID(ctx context.Context, id string) (*domain.Book, error)

	// GetManyByID retrieves the books with the given IDs in no particular
	// order. Unknown IDs are skipped.
	GetManyByID(ctx context.Context, ids []string) ([]*domain.Book, error)
}

package store

import (
	"context"

	"github.com/phrazzld/bookshelf-api/internal/domain"
)

// ListItemFilter selects list items by owner and, optionally, book.
// Empty fields do not constrain the query.
type ListItemFilter struct {
	OwnerID string
	BookID  string
}

// ListItemStore defines the interface for list item persistence.
type ListItemStore interface {
	// GetByID retrieves a list item by its unique ID.
	// Returns ErrListItemNotFound if the list item does not exist.
	GetByID(ctx context.Context, id string) (*domain.ListItem, error)

	// Query returns the list items matching filter in creation order.
	// An empty result is not an error.
	Query(ctx context.Context, filter ListItemFilter) ([]*domain.ListItem, error)

	// Create saves a new list item.
	// Returns ErrListItemExists if the owner already has an item for the book.
	// Returns ErrInvalidEntity if the owner or book does not exist.
	Create(ctx context.Context, item *domain.ListItem) error

	// Update merges update into the stored item and returns the result.
	// Returns ErrListItemNotFound if the list item does not exist.
	// Returns ErrListItemExists if a book change collides with another item.
	Update(ctx context.Context, id string, update domain.ListItemUpdate) (*domain.ListItem, error)

	// Delete removes a list item by its ID.
	// Returns ErrListItemNotFound if the list item does not exist.
	Delete(ctx context.Context, id string) error
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/bookshelf-api/internal/domain"
	"github.com/phrazzld/bookshelf-api/internal/redact"
	"github.com/phrazzld/bookshelf-api/internal/store"
)

// ListItemService manages a user's list items. Methods that take a
// *domain.ListItem expect a resource that already passed the ownership guard.
type ListItemService interface {
	// GetListItem joins an owned list item with its book.
	GetListItem(ctx context.Context, item *domain.ListItem) (*domain.ListItemWithBook, error)

	// ListListItems returns all of the user's list items, each joined with its
	// book, in creation order.
	ListListItems(ctx context.Context, userID string) ([]*domain.ListItemWithBook, error)

	// CreateListItem creates an unrated list item for the user and book.
	// At most one list item may exist per user and book.
	CreateListItem(ctx context.Context, userID, bookID string) (*domain.ListItemWithBook, error)

	// UpdateListItem applies a partial update to an owned list item.
	UpdateListItem(
		ctx context.Context,
		item *domain.ListItem,
		update domain.ListItemUpdate,
	) (*domain.ListItemWithBook, error)

	// DeleteListItem removes an owned list item.
	DeleteListItem(ctx context.Context, item *domain.ListItem) error
}

type listItemServiceImpl struct {
	listItems store.ListItemStore
	books     store.BookStore
	logger    *slog.Logger
}

var _ ListItemService = (*listItemServiceImpl)(nil)

// NewListItemService creates a ListItemService. It panics if any dependency is nil.
func NewListItemService(
	listItems store.ListItemStore,
	books store.BookStore,
	logger *slog.Logger,
) ListItemService {
	if listItems == nil {
		panic("listItems cannot be nil")
	}
	if books == nil {
		panic("books cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}

	return &listItemServiceImpl{
		listItems: listItems,
		books:     books,
		logger:    logger.With(slog.String("component", "list_item_service")),
	}
}

// GetListItem implements ListItemService.
func (s *listItemServiceImpl) GetListItem(
	ctx context.Context,
	item *domain.ListItem,
) (*domain.ListItemWithBook, error) {
	book, err := s.loadBook(ctx, item.BookID)
	if err != nil {
		return nil, err
	}
	return domain.JoinBook(item, book), nil
}

// ListListItems implements ListItemService.
func (s *listItemServiceImpl) ListListItems(
	ctx context.Context,
	userID string,
) ([]*domain.ListItemWithBook, error) {
	items, err := s.listItems.Query(ctx, store.ListItemFilter{OwnerID: userID})
	if err != nil {
		return nil, fmt.Errorf("failed to query list items: %w", err)
	}

	bookIDs := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if _, ok := seen[item.BookID]; ok {
			continue
		}
		seen[item.BookID] = struct{}{}
		bookIDs = append(bookIDs, item.BookID)
	}

	var booksByID map[string]*domain.Book
	if len(bookIDs) > 0 {
		books, err := s.books.GetManyByID(ctx, bookIDs)
		if err != nil {
			return nil, fmt.Errorf("failed to load books: %w", err)
		}
		booksByID = make(map[string]*domain.Book, len(books))
		for _, book := range books {
			booksByID[book.ID] = book
		}
	}

	result := make([]*domain.ListItemWithBook, 0, len(items))
	for _, item := range items {
		result = append(result, domain.JoinBook(item, booksByID[item.BookID]))
	}
	return result, nil
}

// CreateListItem implements ListItemService.
func (s *listItemServiceImpl) CreateListItem(
	ctx context.Context,
	userID, bookID string,
) (*domain.ListItemWithBook, error) {
	log := s.logger.With(slog.String("user_id", userID), slog.String("book_id", bookID))

	if bookID == "" {
		return nil, domain.NewValidationError("No bookId provided", domain.ErrEmptyBookID)
	}

	existing, err := s.listItems.Query(ctx, store.ListItemFilter{OwnerID: userID, BookID: bookID})
	if err != nil {
		return nil, fmt.Errorf("failed to check for existing list item: %w", err)
	}
	if len(existing) > 0 {
		log.Debug("list item already exists", slog.String("list_item_id", existing[0].ID))
		return nil, duplicateListItemError(userID, bookID, ErrDuplicateListItem)
	}

	item, err := domain.NewListItem(userID, bookID)
	if err != nil {
		return nil, domain.NewValidationError(err.Error(), err)
	}

	if err := s.listItems.Create(ctx, item); err != nil {
		switch {
		case store.IsDuplicateError(err):
			// Lost a race with a concurrent create for the same book.
			return nil, duplicateListItemError(userID, bookID, err)
		case errors.Is(err, store.ErrInvalidEntity):
			return nil, domain.NewValidationError(domain.NewNotFoundError("book", bookID).Error(), err)
		}
		log.Error("failed to create list item", slog.String("error", redact.Error(err)))
		return nil, fmt.Errorf("failed to create list item: %w", err)
	}

	log.Info("list item created", slog.String("list_item_id", item.ID))
	return s.GetListItem(ctx, item)
}

// UpdateListItem implements ListItemService. The book joined into the
// response is the one the item referenced before the update.
func (s *listItemServiceImpl) UpdateListItem(
	ctx context.Context,
	item *domain.ListItem,
	update domain.ListItemUpdate,
) (*domain.ListItemWithBook, error) {
	// Pre-check only: the store re-applies update to the row it locks.
	if _, err := item.Apply(update); err != nil {
		return nil, domain.NewValidationError(err.Error(), err)
	}

	updated, err := s.listItems.Update(ctx, item.ID, update)
	if err != nil {
		switch {
		case store.IsNotFoundError(err):
			return nil, domain.NewNotFoundError("list item", item.ID)
		case store.IsDuplicateError(err):
			bookID := item.BookID
			if update.BookID != nil {
				bookID = *update.BookID
			}
			return nil, duplicateListItemError(item.OwnerID, bookID, err)
		case errors.Is(err, store.ErrInvalidEntity):
			return nil, domain.NewValidationError("Invalid list item update", err)
		}
		s.logger.Error("failed to update list item",
			slog.String("list_item_id", item.ID),
			slog.String("error", redact.Error(err)))
		return nil, fmt.Errorf("failed to update list item: %w", err)
	}

	book, err := s.loadBook(ctx, item.BookID)
	if err != nil {
		return nil, err
	}
	return domain.JoinBook(updated, book), nil
}

// DeleteListItem implements ListItemService.
func (s *listItemServiceImpl) DeleteListItem(ctx context.Context, item *domain.ListItem) error {
	if err := s.listItems.Delete(ctx, item.ID); err != nil {
		if store.IsNotFoundError(err) {
			return domain.NewNotFoundError("list item", item.ID)
		}
		return fmt.Errorf("failed to delete list item: %w", err)
	}
	s.logger.Info("list item deleted", slog.String("list_item_id", item.ID))
	return nil
}

// loadBook returns the book or nil when it no longer exists.
func (s *listItemServiceImpl) loadBook(ctx context.Context, bookID string) (*domain.Book, error) {
	book, err := s.books.GetByID(ctx, bookID)
	if err != nil {
		if store.IsNotFoundError(err) {
			s.logger.Warn("list item references a missing book", slog.String("book_id", bookID))
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load book %s: %w", bookID, err)
	}
	return book, nil
}

func duplicateListItemError(userID, bookID string, err error) error {
	return domain.NewValidationError(
		fmt.Sprintf("User %s already has a list item for the book with the ID %s", userID, bookID),
		err,
	)
}

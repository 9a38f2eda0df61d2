package ownership

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/phrazzld/bookshelf-api/internal/domain"
	"github.com/phrazzld/bookshelf-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readerFor(items map[string]*domain.ListItem, calls *int) ReadFunc[*domain.ListItem] {
	return func(ctx context.Context, id string) (*domain.ListItem, error) {
		*calls++
		item, ok := items[id]
		if !ok {
			return nil, store.ErrListItemNotFound
		}
		return item, nil
	}
}

func TestLoad(t *testing.T) {
	items := map[string]*domain.ListItem{
		"li-1": {ID: "li-1", OwnerID: "user-1", BookID: "book-1"},
	}

	t.Run("returns owned resource", func(t *testing.T) {
		calls := 0
		item, err := Load(context.Background(), "user-1", "list item", "li-1", readerFor(items, &calls))
		require.NoError(t, err)
		assert.Same(t, items["li-1"], item)
		assert.Equal(t, 1, calls)
	})

	t.Run("missing resource is not found", func(t *testing.T) {
		calls := 0
		item, err := Load(context.Background(), "user-1", "list item", "FAKE_ID", readerFor(items, &calls))
		require.Error(t, err)
		assert.Nil(t, item)

		var notFound *domain.NotFoundError
		require.True(t, errors.As(err, &notFound))
		assert.Equal(t, "No list item was found with the id of FAKE_ID", err.Error())
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("other owner is forbidden", func(t *testing.T) {
		calls := 0
		item, err := Load(context.Background(), "FAKE_USER_ID", "list item", "li-1", readerFor(items, &calls))
		require.Error(t, err)
		assert.Nil(t, item)

		var forbidden *domain.ForbiddenError
		require.True(t, errors.As(err, &forbidden))
		assert.Equal(t,
			"User with id FAKE_USER_ID is not authorized to access the list item li-1",
			err.Error())
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("missing resource wins over wrong owner", func(t *testing.T) {
		calls := 0
		_, err := Load(context.Background(), "FAKE_USER_ID", "list item", "FAKE_ID", readerFor(items, &calls))
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.NotErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("wrapped not found from store", func(t *testing.T) {
		read := func(ctx context.Context, id string) (*domain.ListItem, error) {
			return nil, fmt.Errorf("query failed: %w", store.ErrNotFound)
		}
		_, err := Load(context.Background(), "user-1", "list item", "li-9", read)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("unexpected error propagates", func(t *testing.T) {
		boom := errors.New("connection refused")
		read := func(ctx context.Context, id string) (*domain.ListItem, error) {
			return nil, boom
		}
		_, err := Load(context.Background(), "user-1", "list item", "li-1", read)
		require.Error(t, err)
		assert.ErrorIs(t, err, boom)
		assert.NotErrorIs(t, err, domain.ErrNotFound)
		assert.NotErrorIs(t, err, domain.ErrForbidden)
	})
}

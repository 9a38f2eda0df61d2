// Package ownership enforces that a caller may only touch resources they own.
package ownership

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/bookshelf-api/internal/domain"
	"github.com/phrazzld/bookshelf-api/internal/platform/logger"
	"github.com/phrazzld/bookshelf-api/internal/store"
)

// ReadFunc loads a resource by ID. It must return an error matching
// store.ErrNotFound when the resource does not exist.
type ReadFunc[T domain.Owned] func(ctx context.Context, id string) (T, error)

// Load fetches the resource named resourceName with the given id and checks
// that userID owns it. Existence is checked before ownership, so a caller
// probing someone else's IDs learns only that the resource exists.
//
// Errors:
//   - *domain.NotFoundError when read reports store.ErrNotFound
//   - *domain.ForbiddenError when the resource belongs to another user
//   - any other read error, wrapped
func Load[T domain.Owned](
	ctx context.Context,
	userID, resourceName, id string,
	read ReadFunc[T],
) (T, error) {
	var zero T
	log := logger.FromContext(ctx).With(
		slog.String("resource", resourceName),
		slog.String("resource_id", id),
	)

	item, err := read(ctx, id)
	if err != nil {
		if store.IsNotFoundError(err) {
			log.Debug("resource not found")
			return zero, domain.NewNotFoundError(resourceName, id)
		}
		return zero, fmt.Errorf("failed to load %s %s: %w", resourceName, id, err)
	}

	if item.GetOwnerID() != userID {
		log.Warn("ownership check failed",
			slog.String("user_id", userID),
			slog.String("owner_id", item.GetOwnerID()))
		return zero, domain.NewForbiddenError(userID, resourceName, id)
	}

	return item, nil
}

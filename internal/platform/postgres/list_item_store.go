package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/phrazzld/bookshelf-api/internal/domain"
	"github.com/phrazzld/bookshelf-api/internal/platform/logger"
	"github.com/phrazzld/bookshelf-api/internal/redact"
	"github.com/phrazzld/bookshelf-api/internal/store"
)

const listItemColumns = `id, owner_id, book_id, notes, rating, start_date, finish_date, created_at, updated_at`

// PostgresListItemStore implements store.ListItemStore. It needs a *sql.DB
// rather than a DBTX because Update runs in its own transaction.
type PostgresListItemStore struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ store.ListItemStore = (*PostgresListItemStore)(nil)

// NewPostgresListItemStore creates a PostgresListItemStore.
func NewPostgresListItemStore(db *sql.DB, logger *slog.Logger) *PostgresListItemStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresListItemStore{
		db:     db,
		logger: logger.With(slog.String("component", "list_item_store")),
	}
}

func scanListItem(row rowScanner) (*domain.ListItem, error) {
	var (
		item   domain.ListItem
		finish sql.NullTime
	)
	err := row.Scan(
		&item.ID,
		&item.OwnerID,
		&item.BookID,
		&item.Notes,
		&item.Rating,
		&item.StartDate,
		&finish,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	item.StartDate = item.StartDate.UTC()
	if finish.Valid {
		t := finish.Time.UTC()
		item.FinishDate = &t
	}
	return &item, nil
}

// GetByID implements store.ListItemStore.
func (s *PostgresListItemStore) GetByID(ctx context.Context, id string) (*domain.ListItem, error) {
	return getListItem(ctx, s.db, id, false)
}

func getListItem(ctx context.Context, db store.DBTX, id string, forUpdate bool) (*domain.ListItem, error) {
	query := `SELECT ` + listItemColumns + ` FROM list_items WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	item, err := scanListItem(db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrListItemNotFound
		}
		return nil, MapError(err)
	}
	return item, nil
}

// Query implements store.ListItemStore.
func (s *PostgresListItemStore) Query(
	ctx context.Context,
	filter store.ListItemFilter,
) ([]*domain.ListItem, error) {
	var (
		conditions []string
		args       []any
	)
	if filter.OwnerID != "" {
		args = append(args, filter.OwnerID)
		conditions = append(conditions, fmt.Sprintf("owner_id = $%d", len(args)))
	}
	if filter.BookID != "" {
		args = append(args, filter.BookID)
		conditions = append(conditions, fmt.Sprintf("book_id = $%d", len(args)))
	}

	query := `SELECT ` + listItemColumns + ` FROM list_items`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY created_at, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to query list items",
			slog.String("error", redact.Error(err)))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	items := make([]*domain.ListItem, 0)
	for rows.Next() {
		item, err := scanListItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan list item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return items, nil
}

// Create implements store.ListItemStore.
func (s *PostgresListItemStore) Create(ctx context.Context, item *domain.ListItem) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := item.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO list_items (`+listItemColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		item.ID,
		item.OwnerID,
		item.BookID,
		item.Notes,
		item.Rating,
		item.StartDate,
		item.FinishDate,
		item.CreatedAt,
		item.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err, listItemsOwnerBookKey) {
			log.Debug("list item already exists for owner and book",
				slog.String("owner_id", item.OwnerID),
				slog.String("book_id", item.BookID))
			return fmt.Errorf("%w: %v", store.ErrListItemExists, err)
		}
		if IsForeignKeyViolation(err) {
			log.Warn("list item references a missing row",
				slog.String("owner_id", item.OwnerID),
				slog.String("book_id", item.BookID))
		} else {
			log.Error("failed to create list item",
				slog.String("error", redact.Error(err)),
				slog.String("list_item_id", item.ID))
		}
		return MapError(err)
	}
	return nil
}

// Update implements store.ListItemStore. The row is locked, merged with
// update in Go using the same rules as the domain, and written back.
func (s *PostgresListItemStore) Update(
	ctx context.Context,
	id string,
	update domain.ListItemUpdate,
) (*domain.ListItem, error) {
	var updated *domain.ListItem

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		current, err := getListItem(ctx, tx, id, true)
		if err != nil {
			return err
		}

		next, err := current.Apply(update)
		if err != nil {
			return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
		}

		result, err := tx.ExecContext(ctx, `
			UPDATE list_items
			SET book_id = $1, notes = $2, rating = $3, start_date = $4, finish_date = $5, updated_at = $6
			WHERE id = $7
		`,
			next.BookID,
			next.Notes,
			next.Rating,
			next.StartDate,
			next.FinishDate,
			next.UpdatedAt,
			id,
		)
		if err != nil {
			if IsUniqueViolation(err, listItemsOwnerBookKey) {
				return fmt.Errorf("%w: %v", store.ErrListItemExists, err)
			}
			return MapError(err)
		}
		if err := CheckRowsAffected(result, store.ErrListItemNotFound); err != nil {
			return err
		}

		updated = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete implements store.ListItemStore.
func (s *PostgresListItemStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM list_items WHERE id = $1`, id)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to delete list item",
			slog.String("error", redact.Error(err)),
			slog.String("list_item_id", id))
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrListItemNotFound)
}

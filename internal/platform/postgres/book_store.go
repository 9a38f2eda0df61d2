package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/phrazzld/bookshelf-api/internal/domain"
	"github.com/phrazzld/bookshelf-api/internal/store"
)

const bookColumns = `id, title, author, cover_image_url, page_count, publisher, synopsis`

// PostgresBookStore implements store.BookStore.
type PostgresBookStore struct {
	db     store.DBTX
	logger *slog.Logger
}

var _ store.BookStore = (*PostgresBookStore)(nil)

// NewPostgresBookStore creates a PostgresBookStore.
func NewPostgresBookStore(db store.DBTX, logger *slog.Logger) *PostgresBookStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresBookStore{
		db:     db,
		logger: logger.With(slog.String("component", "book_store")),
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBook(row rowScanner) (*domain.Book, error) {
	var book domain.Book
	err := row.Scan(
		&book.ID,
		&book.Title,
		&book.Author,
		&book.CoverImageURL,
		&book.PageCount,
		&book.Publisher,
		&book.Synopsis,
	)
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// GetByID implements store.BookStore.
func (s *PostgresBookStore) GetByID(ctx context.Context, id string) (*domain.Book, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+bookColumns+` FROM books WHERE id = $1`, id)
	book, err := scanBook(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrBookNotFound
		}
		return nil, MapError(err)
	}
	return book, nil
}

// GetManyByID implements store.BookStore.
func (s *PostgresBookStore) GetManyByID(ctx context.Context, ids []string) ([]*domain.Book, error) {
	if len(ids) == 0 {
		return []*domain.Book{}, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}

	query := `SELECT ` + bookColumns + ` FROM books WHERE id IN (` + strings.Join(placeholders, ", ") + `)`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	books := make([]*domain.Book, 0, len(ids))
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan book: %w", err)
		}
		books = append(books, book)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return books, nil
}

// Upsert inserts or replaces a book. The catalog is read-only to the API;
// this is used to seed it.
func (s *PostgresBookStore) Upsert(ctx context.Context, book *domain.Book) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO books (`+bookColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			author = EXCLUDED.author,
			cover_image_url = EXCLUDED.cover_image_url,
			page_count = EXCLUDED.page_count,
			publisher = EXCLUDED.publisher,
			synopsis = EXCLUDED.synopsis
	`, book.ID, book.Title, book.Author, book.CoverImageURL, book.PageCount, book.Publisher, book.Synopsis)
	if err != nil {
		s.logger.Error("failed to upsert book", slog.String("book_id", book.ID))
		return MapError(err)
	}
	return nil
}

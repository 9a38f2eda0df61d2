package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/bookshelf-api/internal/api/shared"
	"github.com/phrazzld/bookshelf-api/internal/service"
)

// BookHandler serves GET /books/{id}.
type BookHandler struct {
	books  service.BookService
	logger *slog.Logger
}

// NewBookHandler creates a new BookHandler.
func NewBookHandler(books service.BookService, logger *slog.Logger) *BookHandler {
	if books == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("books cannot be nil for BookHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for BookHandler")
	}
	return &BookHandler{
		books:  books,
		logger: logger.With(slog.String("component", "book_handler")),
	}
}

// Get handles GET /books/{id}. Anonymous callers get the book alone.
func (h *BookHandler) Get(w http.ResponseWriter, r *http.Request) {
	var userID string
	if identity, ok := shared.IdentityFromContext(r.Context()); ok {
		userID = identity.UserID
	}

	view, err := h.books.GetBook(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		shared.HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, view)
}

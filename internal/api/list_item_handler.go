package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/bookshelf-api/internal/api/middleware"
	"github.com/phrazzld/bookshelf-api/internal/api/shared"
	"github.com/phrazzld/bookshelf-api/internal/domain"
	"github.com/phrazzld/bookshelf-api/internal/platform/logger"
	"github.com/phrazzld/bookshelf-api/internal/service"
	"github.com/phrazzld/bookshelf-api/internal/service/auth"
)

// ListItemHandler serves the /list-items routes. Routes with an {id} must
// be guarded by middleware.LoadOwnedResource.
type ListItemHandler struct {
	listItems service.ListItemService
	logger    *slog.Logger
}

// NewListItemHandler creates a new ListItemHandler.
func NewListItemHandler(listItems service.ListItemService, logger *slog.Logger) *ListItemHandler {
	if listItems == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("listItems cannot be nil for ListItemHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for ListItemHandler")
	}
	return &ListItemHandler{
		listItems: listItems,
		logger:    logger.With(slog.String("component", "list_item_handler")),
	}
}

// List handles GET /list-items.
func (h *ListItemHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := shared.IdentityFromContext(r.Context())
	if !ok {
		shared.HandleAPIError(w, r, auth.MissingTokenError())
		return
	}

	items, err := h.listItems.ListListItems(r.Context(), identity.UserID)
	if err != nil {
		shared.HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ListItemsEnvelope{ListItems: items})
}

// Create handles POST /list-items.
func (h *ListItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	identity, ok := shared.IdentityFromContext(r.Context())
	if !ok {
		shared.HandleAPIError(w, r, auth.MissingTokenError())
		return
	}

	var req CreateListItemRequest
	if err := decodeRequest(w, r, nil, &req); err != nil {
		shared.HandleAPIError(w, r, err)
		return
	}

	item, err := h.listItems.CreateListItem(r.Context(), identity.UserID, req.BookID)
	if err != nil {
		shared.HandleAPIError(w, r, err)
		return
	}

	log.Debug("list item created", slog.String("list_item_id", item.ID))
	shared.RespondWithJSON(w, r, http.StatusOK, ListItemEnvelope{ListItem: item})
}

// Get handles GET /list-items/{id}.
func (h *ListItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	item, ok := h.guarded(w, r)
	if !ok {
		return
	}

	joined, err := h.listItems.GetListItem(r.Context(), item)
	if err != nil {
		shared.HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ListItemEnvelope{ListItem: joined})
}

// Update handles PUT /list-items/{id}. Fields absent from the body are left
// unchanged; any owner in the body is ignored.
func (h *ListItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	item, ok := h.guarded(w, r)
	if !ok {
		return
	}

	var update domain.ListItemUpdate
	if err := decodeRequest(w, r, nil, &update); err != nil {
		shared.HandleAPIError(w, r, err)
		return
	}

	updated, err := h.listItems.UpdateListItem(r.Context(), item, update)
	if err != nil {
		shared.HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ListItemEnvelope{ListItem: updated})
}

// Delete handles DELETE /list-items/{id}.
func (h *ListItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	item, ok := h.guarded(w, r)
	if !ok {
		return
	}

	if err := h.listItems.DeleteListItem(r.Context(), item); err != nil {
		shared.HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, SuccessResponse{Success: true})
}

func (h *ListItemHandler) guarded(w http.ResponseWriter, r *http.Request) (*domain.ListItem, bool) {
	item, ok := middleware.ResourceFromContext[*domain.ListItem](r.Context())
	if !ok {
		logger.FromContextOrDefault(r.Context(), h.logger).Error("list item route is not guarded")
		shared.HandleAPIError(w, r, errListItemNotGuarded)
		return nil, false
	}
	return item, true
}

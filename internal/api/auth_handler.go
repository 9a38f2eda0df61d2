package api

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/bookshelf-api/internal/api/shared"
	"github.com/phrazzld/bookshelf-api/internal/service"
	"github.com/phrazzld/bookshelf-api/internal/service/auth"
)

// AuthHandler handles registration, login and the current-user lookup.
type AuthHandler struct {
	users     service.UserService
	validator *validator.Validate
	logger    *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(users service.UserService, logger *slog.Logger) *AuthHandler {
	if users == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("users cannot be nil for AuthHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for AuthHandler")
	}
	return &AuthHandler{
		users:     users,
		validator: newValidator(),
		logger:    logger.With(slog.String("component", "auth_handler")),
	}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := decodeRequest(w, r, h.validator, &req); err != nil {
		shared.HandleAPIError(w, r, err)
		return
	}

	result, err := h.users.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		shared.HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, newUserEnvelope(result.User, result.Token))
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := decodeRequest(w, r, h.validator, &req); err != nil {
		shared.HandleAPIError(w, r, err)
		return
	}

	result, err := h.users.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		shared.HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, newUserEnvelope(result.User, result.Token))
}

// Me handles GET /auth/me. The token in the reply is the one the caller
// presented; no new token is issued.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := shared.IdentityFromContext(r.Context())
	if !ok {
		shared.HandleAPIError(w, r, auth.MissingTokenError())
		return
	}

	user, err := h.users.GetUser(r.Context(), identity.UserID)
	if err != nil {
		h.logger.Debug("token subject could not be loaded", slog.String("user_id", identity.UserID))
		shared.HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, newUserEnvelope(user, identity.Token))
}

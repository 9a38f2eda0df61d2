package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/phrazzld/bookshelf-api/internal/api/shared"
	"github.com/phrazzld/bookshelf-api/internal/platform/logger"
	"github.com/phrazzld/bookshelf-api/internal/platform/metrics"
	"github.com/phrazzld/bookshelf-api/internal/service/auth"
)

// AuthMiddleware authenticates requests carrying a bearer token.
type AuthMiddleware struct {
	jwtService auth.JWTService
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware.
func NewAuthMiddleware(
	jwtService auth.JWTService,
	m *metrics.Metrics,
	logger *slog.Logger,
) *AuthMiddleware {
	if jwtService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("jwtService cannot be nil for AuthMiddleware")
	}
	if m == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("metrics cannot be nil for AuthMiddleware")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthMiddleware{
		jwtService: jwtService,
		metrics:    m,
		logger:     logger.With(slog.String("component", "auth_middleware")),
	}
}

// Authenticate rejects requests without a valid bearer token and attaches
// the caller's identity to the context of the rest.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return m.handler(next, true)
}

// AuthenticateOptional behaves like Authenticate except that a request with
// no Authorization header proceeds without an identity. A header that is
// present must still be valid.
func (m *AuthMiddleware) AuthenticateOptional(next http.Handler) http.Handler {
	return m.handler(next, false)
}

func (m *AuthMiddleware) handler(next http.Handler, required bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			if required {
				m.reject(w, r, auth.MissingTokenError())
				return
			}
			next.ServeHTTP(w, r)
			return
		}

		token, err := bearerToken(header)
		if err != nil {
			m.reject(w, r, err)
			return
		}

		claims, err := m.jwtService.ValidateToken(r.Context(), token)
		if err != nil {
			m.reject(w, r, err)
			return
		}

		ctx := shared.WithIdentity(r.Context(), shared.Identity{
			UserID: claims.UserID,
			Token:  token,
		})
		ctx = logger.WithLogger(ctx,
			logger.FromContextOrDefault(ctx, m.logger).With(slog.String("user_id", claims.UserID)))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *AuthMiddleware) reject(w http.ResponseWriter, r *http.Request, err error) {
	var tokenErr *auth.TokenError
	if !errors.As(err, &tokenErr) {
		tokenErr = auth.NewTokenError(auth.CodeInvalidToken, "invalid token", err)
	}
	m.metrics.RecordAuthFailure(tokenErr.Code)
	shared.HandleAPIError(w, r, tokenErr)
}

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header. The scheme is matched case-insensitively.
func bearerToken(header string) (string, error) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", auth.BadSchemeError()
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", auth.MissingTokenError()
	}
	return token, nil
}

package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/phrazzld/bookshelf-api/internal/api/middleware"
	"github.com/phrazzld/bookshelf-api/internal/domain"
	"github.com/phrazzld/bookshelf-api/internal/platform/metrics"
	"github.com/phrazzld/bookshelf-api/internal/ratelimit"
	"github.com/phrazzld/bookshelf-api/internal/service"
	"github.com/phrazzld/bookshelf-api/internal/service/auth"
	"github.com/phrazzld/bookshelf-api/internal/store"
)

// RouterDeps are the collaborators NewRouter wires into the routes.
type RouterDeps struct {
	Logger  *slog.Logger
	Metrics *metrics.Metrics

	// Production hides stack traces from 500 replies.
	Production     bool
	AllowedOrigins []string

	// AuthLimiter throttles register and login per client.
	AuthLimiter *ratelimit.KeyedRateLimiter

	JWTService      auth.JWTService
	UserService     service.UserService
	ListItemService service.ListItemService
	BookService     service.BookService

	// ListItems backs the ownership guard on /list-items/{id}.
	ListItems store.ListItemStore
}

// NewRouter builds the HTTP handler for the whole service.
func NewRouter(deps RouterDeps) http.Handler {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	authMiddleware := middleware.NewAuthMiddleware(deps.JWTService, deps.Metrics, deps.Logger)
	authHandler := NewAuthHandler(deps.UserService, deps.Logger)
	listItemHandler := NewListItemHandler(deps.ListItemService, deps.Logger)
	bookHandler := NewBookHandler(deps.BookService, deps.Logger)

	guardListItem := middleware.LoadOwnedResource[*domain.ListItem]("list item", "id", deps.ListItems.GetByID)

	origins := deps.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(middleware.TraceMiddleware(deps.Logger))
	r.Use(middleware.Recoverer(deps.Production, deps.Logger))
	r.Use(middleware.HTTPMetrics(deps.Metrics))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{"X-Trace-ID"},
		MaxAge:         300,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(deps.AuthLimiter, deps.Metrics))
			r.Post("/auth/register", authHandler.Register)
			r.Post("/auth/login", authHandler.Login)
		})

		r.With(authMiddleware.AuthenticateOptional).Get("/books/{id}", bookHandler.Get)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)
			r.Get("/auth/me", authHandler.Me)

			r.Get("/list-items", listItemHandler.List)
			r.Post("/list-items", listItemHandler.Create)
			r.Route("/list-items/{id}", func(r chi.Router) {
				r.Use(guardListItem)
				r.Get("/", listItemHandler.Get)
				r.Put("/", listItemHandler.Update)
				r.Delete("/", listItemHandler.Delete)
			})
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			deps.Logger.Error("failed to write health check response", slog.String("error", err.Error()))
		}
	})
	r.Handle("/metrics", deps.Metrics.Handler())

	return r
}

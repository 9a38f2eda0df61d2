package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/phrazzld/bookshelf-api/internal/api"
	"github.com/phrazzld/bookshelf-api/internal/config"
	"github.com/phrazzld/bookshelf-api/internal/domain"
	"github.com/phrazzld/bookshelf-api/internal/platform/memory"
	"github.com/phrazzld/bookshelf-api/internal/platform/metrics"
	"github.com/phrazzld/bookshelf-api/internal/platform/postgres"
	"github.com/phrazzld/bookshelf-api/internal/ratelimit"
	"github.com/phrazzld/bookshelf-api/internal/service"
	"github.com/phrazzld/bookshelf-api/internal/service/auth"
	"github.com/phrazzld/bookshelf-api/internal/store"
)

const shutdownTimeout = 10 * time.Second

// application holds the long-lived dependencies of the server so they can
// be released together on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	userStore     store.UserStore
	listItemStore store.ListItemStore
	bookStore     store.BookStore

	metrics     *metrics.Metrics
	authLimiter *ratelimit.KeyedRateLimiter
	jwtService  auth.JWTService

	userService     service.UserService
	listItemService service.ListItemService
	bookService     service.BookService
}

// newApplication wires stores, services and infrastructure for cfg.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{
		config:  cfg,
		logger:  logger,
		metrics: metrics.New(),
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}

	if err := app.openStores(ctx); err != nil {
		app.close()
		return nil, err
	}

	hasher := auth.NewBcryptHasher(cfg.Auth.BCryptCost)
	app.userService = service.NewUserService(app.userStore, hasher, hasher, app.jwtService, logger)
	app.listItemService = service.NewListItemService(app.listItemStore, app.bookStore, logger)
	app.bookService = service.NewBookService(app.bookStore, app.listItemStore, logger)
	app.authLimiter = ratelimit.New(cfg.RateLimit.AuthRPS, cfg.RateLimit.AuthBurst)

	return app, nil
}

func (app *application) openStores(ctx context.Context) error {
	var seed []*domain.Book
	if path := app.config.Database.BooksFile; path != "" {
		books, err := memory.LoadBooksFile(path)
		if err != nil {
			return fmt.Errorf("failed to load books file: %w", err)
		}
		seed = books
	}

	switch app.config.Database.Driver {
	case config.DriverMemory:
		app.userStore = memory.NewUserStore()
		app.listItemStore = memory.NewListItemStore()
		app.bookStore = memory.NewBookStore(seed...)
		app.logger.Warn("using in-memory storage; data is lost on restart",
			slog.Int("books", len(seed)))
		return nil

	case config.DriverPostgres:
		db, err := openDatabase(ctx, app.config.Database, app.logger)
		if err != nil {
			return err
		}
		app.db = db

		if err := postgres.Migrate(ctx, db, "up", app.logger); err != nil {
			return err
		}

		books := postgres.NewPostgresBookStore(db, app.logger)
		for _, book := range seed {
			if err := books.Upsert(ctx, book); err != nil {
				return fmt.Errorf("failed to seed book %s: %w", book.ID, err)
			}
		}
		app.userStore = postgres.NewPostgresUserStore(db, app.logger)
		app.listItemStore = postgres.NewPostgresListItemStore(db, app.logger)
		app.bookStore = books
		return nil
	}

	return fmt.Errorf("unsupported database driver %q", app.config.Database.Driver)
}

// router builds the HTTP handler.
func (app *application) router() http.Handler {
	return api.NewRouter(api.RouterDeps{
		Logger:          app.logger,
		Metrics:         app.metrics,
		Production:      app.config.Server.IsProduction(),
		AllowedOrigins:  app.config.CORS.AllowedOrigins,
		AuthLimiter:     app.authLimiter,
		JWTService:      app.jwtService,
		UserService:     app.userService,
		ListItemService: app.listItemService,
		BookService:     app.bookService,
		ListItems:       app.listItemStore,
	})
}

// listenAndServe serves on the configured port until ctx is done.
func (app *application) listenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", app.config.Server.Port))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	return app.serve(ctx, ln)
}

// serve runs the HTTP server on ln and shuts it down gracefully once ctx
// is done.
func (app *application) serve(ctx context.Context, ln net.Listener) error {
	server := &http.Server{
		Handler:           app.router(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info("starting server", slog.String("addr", ln.Addr().String()))
		errCh <- server.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		app.logger.Info("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}

	app.logger.Info("server stopped")
	return nil
}

// close releases every resource the application holds. It is safe to call
// on a partially built application.
func (app *application) close() {
	if app.authLimiter != nil {
		app.authLimiter.Stop()
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("failed to close database", slog.String("error", err.Error()))
		}
	}
}

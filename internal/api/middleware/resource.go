package middleware

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/bookshelf-api/internal/api/shared"
	"github.com/phrazzld/bookshelf-api/internal/domain"
	"github.com/phrazzld/bookshelf-api/internal/service/auth"
	"github.com/phrazzld/bookshelf-api/internal/service/ownership"
)

type resourceKey[T domain.Owned] struct{}

// LoadOwnedResource loads the resource whose id is the chi URL parameter
// param and checks that the authenticated caller owns it. Failures are
// answered immediately; on success the resource is available to the next
// handler through ResourceFromContext.
//
// It must run after AuthMiddleware.Authenticate.
func LoadOwnedResource[T domain.Owned](
	resourceName, param string,
	read ownership.ReadFunc[T],
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := shared.IdentityFromContext(r.Context())
			if !ok {
				shared.HandleAPIError(w, r, auth.MissingTokenError())
				return
			}

			resource, err := ownership.Load(r.Context(), identity.UserID, resourceName, chi.URLParam(r, param), read)
			if err != nil {
				shared.HandleAPIError(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), resourceKey[T]{}, resource)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ResourceFromContext returns the resource stored by LoadOwnedResource.
func ResourceFromContext[T domain.Owned](ctx context.Context) (T, bool) {
	resource, ok := ctx.Value(resourceKey[T]{}).(T)
	return resource, ok
}

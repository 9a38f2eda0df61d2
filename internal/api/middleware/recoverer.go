package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/bookshelf-api/internal/api/shared"
	"github.com/phrazzld/bookshelf-api/internal/platform/logger"
	"github.com/phrazzld/bookshelf-api/internal/redact"
)

// Recoverer is the error boundary for panics. A panic before the reply has
// started becomes a 500 {message, stack}; stacks are left out when
// production is set. A panic after the reply has started aborts the
// connection.
//
// Recoverer also tells shared.HandleAPIError whether stacks may be shown.
func Recoverer(production bool, log *slog.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = slog.Default()
	}
	log = log.With(slog.String("component", "recoverer"))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			r = r.WithContext(shared.WithStackTraces(r.Context(), !production))

			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				stack := debug.Stack()
				logger.FromContextOrDefault(r.Context(), log).Error("panic recovered",
					slog.String("panic", redact.String(fmt.Sprint(rec))),
					slog.String("path", r.URL.Path),
					slog.String("method", r.Method))

				if ww.Status() != 0 {
					panic(http.ErrAbortHandler)
				}

				message := shared.UnexpectedErrorMessage
				var opts []shared.ResponseOption
				if !production {
					message = redact.String(fmt.Sprint(rec))
					opts = append(opts, shared.WithStack(fmt.Sprintf("%s\n\n%s", message, stack)))
				}
				shared.RespondWithErrorAndLog(ww, r, http.StatusInternalServerError,
					message, fmt.Errorf("panic: %v", rec), opts...)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}

package shared

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/phrazzld/bookshelf-api/internal/domain"
	"github.com/phrazzld/bookshelf-api/internal/redact"
	"github.com/phrazzld/bookshelf-api/internal/service/auth"
	"github.com/phrazzld/bookshelf-api/internal/store"
)

// UnexpectedErrorMessage is the client message for a 500 reply when stack
// traces are disabled.
const UnexpectedErrorMessage = "An unexpected error occurred"

// statusWriter is implemented by chi's WrapResponseWriter.
type statusWriter interface {
	Status() int
}

// MapErrorToStatusCode maps an error to the HTTP status it is reported with.
func MapErrorToStatusCode(err error) int {
	var (
		tokenErr      *auth.TokenError
		validationErr *domain.ValidationError
		notFoundErr   *domain.NotFoundError
		forbiddenErr  *domain.ForbiddenError
	)
	switch {
	case errors.As(err, &tokenErr):
		return http.StatusUnauthorized
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.As(err, &notFoundErr), errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &forbiddenErr), errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, store.ErrDuplicate), errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns the message a client may see for err.
func GetSafeErrorMessage(err error) string {
	var (
		tokenErr      *auth.TokenError
		validationErr *domain.ValidationError
		notFoundErr   *domain.NotFoundError
		forbiddenErr  *domain.ForbiddenError
	)
	switch {
	case err == nil:
		return UnexpectedErrorMessage
	case errors.As(err, &tokenErr):
		return tokenErr.Message
	case errors.As(err, &validationErr):
		return validationErr.Message
	case errors.As(err, &notFoundErr):
		return notFoundErr.Error()
	case errors.As(err, &forbiddenErr):
		return forbiddenErr.Error()
	case errors.Is(err, store.ErrNotFound):
		return "Resource not found"
	case errors.Is(err, store.ErrDuplicate):
		return "Resource already exists"
	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"
	default:
		return UnexpectedErrorMessage
	}
}

// HandleAPIError writes the reply for err. Token errors carry their code.
// Unexpected errors become a 500. When the request context allows stack
// traces (see WithStackTraces) the reply carries the redacted error message
// and a stack; otherwise only UnexpectedErrorMessage. If the reply has
// already been started the request is aborted instead.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error) {
	if sw, ok := w.(statusWriter); ok && sw.Status() != 0 {
		panic(http.ErrAbortHandler)
	}

	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)

	var opts []ResponseOption
	var tokenErr *auth.TokenError
	switch {
	case errors.As(err, &tokenErr):
		opts = append(opts, WithCode(tokenErr.Code))
	case status == http.StatusForbidden:
		opts = append(opts, WithElevatedLogLevel())
	case status == http.StatusInternalServerError && StackTracesEnabled(r.Context()):
		message = redact.Error(err)
		opts = append(opts, WithStack(fmt.Sprintf("%s\n\n%s", message, debug.Stack())))
	}

	RespondWithErrorAndLog(w, r, status, message, err, opts...)
}

package shared

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/bookshelf-api/internal/domain"
	"github.com/phrazzld/bookshelf-api/internal/service/auth"
	"github.com/phrazzld/bookshelf-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleAPIError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantMessage string
		wantCode    string
	}{
		{
			name:        "validation",
			err:         domain.NewValidationError("No bookId provided", nil),
			wantStatus:  http.StatusBadRequest,
			wantMessage: "No bookId provided",
		},
		{
			name:        "wrapped validation",
			err:         fmt.Errorf("create: %w", domain.NewValidationError("username taken", nil)),
			wantStatus:  http.StatusBadRequest,
			wantMessage: "username taken",
		},
		{
			name:        "not found",
			err:         domain.NewNotFoundError("list item", "li-9"),
			wantStatus:  http.StatusNotFound,
			wantMessage: "No list item was found with the id of li-9",
		},
		{
			name:        "forbidden",
			err:         domain.NewForbiddenError("user-2", "list item", "li-1"),
			wantStatus:  http.StatusForbidden,
			wantMessage: "User with id user-2 is not authorized to access the list item li-1",
		},
		{
			name:        "token",
			err:         auth.MissingTokenError(),
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "No authorization token was found",
			wantCode:    auth.CodeCredentialsRequired,
		},
		{
			name:        "store duplicate",
			err:         store.ErrListItemExists,
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Resource already exists",
		},
		{
			name:        "store not found",
			err:         store.ErrBookNotFound,
			wantStatus:  http.StatusNotFound,
			wantMessage: "Resource not found",
		},
		{
			name:        "unexpected",
			err:         errors.New("connection refused"),
			wantStatus:  http.StatusInternalServerError,
			wantMessage: UnexpectedErrorMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			HandleAPIError(rec, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantMessage, resp.Message)
			assert.Equal(t, tt.wantCode, resp.Code)
			assert.Empty(t, resp.Stack)
		})
	}
}

func TestHandleAPIError_Stack(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithStackTraces(req.Context(), true))
	rec := httptest.NewRecorder()

	HandleAPIError(rec, req, errors.New("some error"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "some error", resp.Message)
	assert.True(t, strings.HasPrefix(resp.Stack, "some error\n"))
	assert.Contains(t, resp.Stack, "goroutine")
}

func TestHandleAPIError_StackRedactsMessage(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithStackTraces(req.Context(), true))
	rec := httptest.NewRecorder()

	HandleAPIError(rec, req, errors.New("dial tcp 10.0.0.12:5432: connection refused"))

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotContains(t, resp.Message, "10.0.0.12")
	assert.Contains(t, resp.Message, "connection refused")
	assert.NotContains(t, resp.Stack, "10.0.0.12")
}

func TestHandleAPIError_StackOnlyFor500(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithStackTraces(req.Context(), true))
	rec := httptest.NewRecorder()

	HandleAPIError(rec, req, domain.NewNotFoundError("list item", "x"))

	assert.NotContains(t, rec.Body.String(), "stack")
}

func TestHandleAPIError_AbortsStartedResponse(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	ww := middleware.NewWrapResponseWriter(httptest.NewRecorder(), req.ProtoMajor)
	ww.WriteHeader(http.StatusOK)

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		HandleAPIError(ww, req, errors.New("late failure"))
	})
}

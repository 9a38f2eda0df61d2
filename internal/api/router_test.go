package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/phrazzld/bookshelf-api/internal/api/shared"
	"github.com/phrazzld/bookshelf-api/internal/config"
	"github.com/phrazzld/bookshelf-api/internal/domain"
	"github.com/phrazzld/bookshelf-api/internal/platform/memory"
	"github.com/phrazzld/bookshelf-api/internal/platform/metrics"
	"github.com/phrazzld/bookshelf-api/internal/ratelimit"
	"github.com/phrazzld/bookshelf-api/internal/service"
	"github.com/phrazzld/bookshelf-api/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/crypto/bcrypt"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const testPassword = "Secr3t!pass"

type testServer struct {
	t       *testing.T
	handler http.Handler
}

func newTestServer(t *testing.T, limiter *ratelimit.KeyedRateLimiter) *testServer {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	users := memory.NewUserStore()
	listItems := memory.NewListItemStore()
	books := memory.NewBookStore(
		&domain.Book{ID: "B1", Title: "The Left Hand of Darkness", Author: "Ursula K. Le Guin"},
		&domain.Book{ID: "B2", Title: "Kindred", Author: "Octavia E. Butler"},
	)

	jwtService, err := auth.NewJWTService(config.AuthConfig{
		JWTSecret:            "test-secret-that-is-at-least-32-characters",
		TokenLifetimeMinutes: 60,
		BCryptCost:           bcrypt.MinCost,
	})
	require.NoError(t, err)
	hasher := auth.NewBcryptHasher(bcrypt.MinCost)

	if limiter == nil {
		limiter = ratelimit.New(1000, 1000)
	}
	t.Cleanup(limiter.Stop)

	handler := NewRouter(RouterDeps{
		Logger:          log,
		Metrics:         metrics.New(),
		AuthLimiter:     limiter,
		JWTService:      jwtService,
		UserService:     service.NewUserService(users, hasher, hasher, jwtService, log),
		ListItemService: service.NewListItemService(listItems, books, log),
		BookService:     service.NewBookService(books, listItems, log),
		ListItems:       listItems,
	})
	return &testServer{t: t, handler: handler}
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, ok := body.(string)
		if !ok {
			encoded, err := json.Marshal(body)
			require.NoError(s.t, err)
			raw = string(encoded)
		}
		reader = strings.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) register(username string) UserResponse {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/api/auth/register", "", CredentialsRequest{Username: username, Password: testPassword})
	require.Equal(s.t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[UserEnvelope](s.t, rec).User
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(bytes.NewReader(rec.Body.Bytes())).Decode(&v), rec.Body.String())
	return v
}

func messageOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[shared.ErrorResponse](t, rec).Message
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t, nil)

	registered := s.register("ada")
	assert.NotEmpty(t, registered.ID)
	assert.Equal(t, "ada", registered.Username)
	assert.NotEmpty(t, registered.Token)

	rec := s.do(http.MethodPost, "/api/auth/login", "", CredentialsRequest{Username: "ada", Password: testPassword})
	require.Equal(t, http.StatusOK, rec.Code)
	loggedIn := decode[UserEnvelope](t, rec).User
	assert.Equal(t, registered.ID, loggedIn.ID)
	assert.Equal(t, registered.Username, loggedIn.Username)

	rec = s.do(http.MethodGet, "/api/auth/me", loggedIn.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decode[UserEnvelope](t, rec).User
	assert.Equal(t, registered.ID, me.ID)
	assert.Equal(t, loggedIn.Token, me.Token, "me echoes the presented token")

	assert.NotContains(t, rec.Body.String(), "assword")
}

func TestRegisterAndLoginErrors(t *testing.T) {
	s := newTestServer(t, nil)
	s.register("taken")

	tests := []struct {
		name        string
		path        string
		body        any
		wantMessage string
	}{
		{
			name:        "blank username",
			path:        "/api/auth/register",
			body:        CredentialsRequest{Password: testPassword},
			wantMessage: "username can't be blank",
		},
		{
			name:        "blank password",
			path:        "/api/auth/register",
			body:        CredentialsRequest{Username: "grace"},
			wantMessage: "password can't be blank",
		},
		{
			name:        "weak password",
			path:        "/api/auth/register",
			body:        CredentialsRequest{Username: "grace", Password: "password"},
			wantMessage: "password is not strong enough",
		},
		{
			name:        "password longer than bcrypt allows",
			path:        "/api/auth/register",
			body:        CredentialsRequest{Username: "grace", Password: "Aa1!" + strings.Repeat("x", 80)},
			wantMessage: "password is too long",
		},
		{
			name:        "username taken",
			path:        "/api/auth/register",
			body:        CredentialsRequest{Username: "taken", Password: testPassword},
			wantMessage: "username taken",
		},
		{
			name:        "malformed body",
			path:        "/api/auth/register",
			body:        `{"username":`,
			wantMessage: "Invalid request body",
		},
		{
			name:        "login blank username",
			path:        "/api/auth/login",
			body:        CredentialsRequest{Password: testPassword},
			wantMessage: "username can't be blank",
		},
		{
			name:        "login wrong password",
			path:        "/api/auth/login",
			body:        CredentialsRequest{Username: "taken", Password: "Wr0ng!pass"},
			wantMessage: "username or password is invalid",
		},
		{
			name:        "login unknown user",
			path:        "/api/auth/login",
			body:        CredentialsRequest{Username: "nobody", Password: testPassword},
			wantMessage: "username or password is invalid",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(http.MethodPost, tt.path, "", tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			assert.Equal(t, tt.wantMessage, messageOf(t, rec))
		})
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t, nil)

	for _, path := range []string{"/api/auth/me", "/api/list-items", "/api/list-items/anything"} {
		t.Run(path, func(t *testing.T) {
			rec := s.do(http.MethodGet, path, "", nil)
			require.Equal(t, http.StatusUnauthorized, rec.Code)
			resp := decode[shared.ErrorResponse](t, rec)
			assert.Equal(t, auth.CodeCredentialsRequired, resp.Code)
			assert.Equal(t, "No authorization token was found", resp.Message)
		})
	}

	rec := s.do(http.MethodGet, "/api/list-items", "not-a-jwt", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, auth.CodeInvalidToken, decode[shared.ErrorResponse](t, rec).Code)
}

func TestListItemLifecycle(t *testing.T) {
	s := newTestServer(t, nil)
	owner := s.register("ada")
	other := s.register("grace")

	rec := s.do(http.MethodPost, "/api/list-items", owner.Token, map[string]any{})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "No bookId provided", messageOf(t, rec))

	rec = s.do(http.MethodPost, "/api/list-items", owner.Token, CreateListItemRequest{BookID: "B1"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	created := decode[ListItemEnvelope](t, rec).ListItem
	require.NotNil(t, created.Book)
	assert.Equal(t, "B1", created.Book.ID)
	assert.Equal(t, owner.ID, created.OwnerID)
	assert.Equal(t, domain.UnratedRating, created.Rating)
	assert.Empty(t, created.Notes)
	assert.Nil(t, created.FinishDate)

	rec = s.do(http.MethodPost, "/api/list-items", owner.Token, CreateListItemRequest{BookID: "B1"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t,
		fmt.Sprintf("User %s already has a list item for the book with the ID B1", owner.ID),
		messageOf(t, rec))

	itemPath := "/api/list-items/" + created.ID

	rec = s.do(http.MethodGet, itemPath, owner.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, created, decode[ListItemEnvelope](t, rec).ListItem)

	rec = s.do(http.MethodGet, itemPath, other.Token, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t,
		fmt.Sprintf("User with id %s is not authorized to access the list item %s", other.ID, created.ID),
		messageOf(t, rec))

	rec = s.do(http.MethodPut, itemPath, other.Token, map[string]any{"notes": "mine now"})
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodGet, "/api/list-items/missing", owner.Token, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "No list item was found with the id of missing", messageOf(t, rec))

	rec = s.do(http.MethodPut, itemPath, owner.Token, map[string]any{
		"notes":   "loved it",
		"rating":  5,
		"ownerId": other.ID,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[ListItemEnvelope](t, rec).ListItem
	assert.Equal(t, "loved it", updated.Notes)
	assert.Equal(t, 5, updated.Rating)
	assert.Equal(t, owner.ID, updated.OwnerID, "owner cannot be reassigned")
	require.NotNil(t, updated.Book)
	assert.Equal(t, "B1", updated.Book.ID)
	assert.Equal(t, created.StartDate, updated.StartDate)

	rec = s.do(http.MethodGet, itemPath, owner.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, updated, decode[ListItemEnvelope](t, rec).ListItem)

	rec = s.do(http.MethodPut, itemPath, owner.Token, map[string]any{"rating": 11})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, "/api/list-items", owner.Token, CreateListItemRequest{BookID: "B2"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/api/list-items", owner.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	listed := decode[ListItemsEnvelope](t, rec).ListItems
	require.Len(t, listed, 2)
	assert.Equal(t, "B1", listed[0].Book.ID)
	assert.Equal(t, "B2", listed[1].Book.ID)

	rec = s.do(http.MethodGet, "/api/list-items", other.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"listItems":[]}`, rec.Body.String())

	rec = s.do(http.MethodDelete, itemPath, other.Token, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodDelete, itemPath, owner.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())

	rec = s.do(http.MethodGet, itemPath, owner.Token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodPost, "/api/list-items", owner.Token, CreateListItemRequest{BookID: "B1"})
	assert.Equal(t, http.StatusOK, rec.Code, "a deleted item frees the book")
}

func TestGetBook(t *testing.T) {
	s := newTestServer(t, nil)
	reader := s.register("ada")

	rec := s.do(http.MethodPost, "/api/list-items", reader.Token, CreateListItemRequest{BookID: "B2"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/api/books/B2", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	anonymous := decode[service.BookView](t, rec)
	assert.Equal(t, "Kindred", anonymous.Book.Title)
	assert.Nil(t, anonymous.ListItem)

	rec = s.do(http.MethodGet, "/api/books/B2", reader.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	withItem := decode[service.BookView](t, rec)
	require.NotNil(t, withItem.ListItem)
	assert.Equal(t, reader.ID, withItem.ListItem.OwnerID)

	rec = s.do(http.MethodGet, "/api/books/B404", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "No book was found with the id of B404", messageOf(t, rec))
}

func TestAuthRoutesAreRateLimited(t *testing.T) {
	s := newTestServer(t, ratelimit.New(0.001, 2))
	body := CredentialsRequest{Username: "ada", Password: "wrong"}

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/api/auth/login", "", body).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/api/auth/login", "", body).Code)

	rec := s.do(http.MethodPost, "/api/auth/login", "", body)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "Too many requests, please try again later.", messageOf(t, rec))
}

func TestInfrastructureRoutes(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(shared.TraceIDHeader))

	s.do(http.MethodGet, "/api/list-items", "", nil)
	rec = s.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `bookshelf_auth_failures_total{code="credentials_required"} 1`)
	assert.Contains(t, rec.Body.String(), "bookshelf_http_requests_total")
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/list-items", nil)
	req.Header.Set("Origin", "https://bookshelf.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

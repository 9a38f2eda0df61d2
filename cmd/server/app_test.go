package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/phrazzld/bookshelf-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryConfig(t *testing.T) *config.Config {
	t.Helper()

	booksFile := filepath.Join(t.TempDir(), "books.json")
	require.NoError(t, os.WriteFile(booksFile,
		[]byte(`[{"id":"B1","title":"A Wizard of Earthsea","author":"Ursula K. Le Guin","pageCount":183}]`),
		0o600))

	return &config.Config{
		Server: config.ServerConfig{Port: 8080, LogLevel: "debug", Environment: config.EnvTest},
		Database: config.DatabaseConfig{
			Driver:       config.DriverMemory,
			BooksFile:    booksFile,
			MaxOpenConns: 1,
		},
		Auth: config.AuthConfig{
			JWTSecret:            "test-secret-that-is-at-least-32-characters",
			TokenLifetimeMinutes: 60,
			BCryptCost:           4,
		},
		RateLimit: config.RateLimitConfig{AuthRPS: 10, AuthBurst: 10},
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestApplication_ServeAndShutdown(t *testing.T) {
	app, err := newApplication(context.Background(), memoryConfig(t), discardLogger())
	require.NoError(t, err)
	defer app.close()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.serve(ctx, ln) }()

	client := &http.Client{
		Timeout:   5 * time.Second,
		Transport: &http.Transport{DisableKeepAlives: true},
	}
	base := "http://" + ln.Addr().String()

	resp, err := client.Get(base + "/health")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", string(body))

	resp, err = client.Get(base + "/api/books/B1")
	require.NoError(t, err)
	var view struct {
		Book struct {
			Title string `json:"title"`
		} `json:"book"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&view))
	_ = resp.Body.Close()
	assert.Equal(t, "A Wizard of Earthsea", view.Book.Title, "books file seeds the catalog")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(shutdownTimeout):
		t.Fatal("server did not shut down")
	}
}

func TestNewApplication_Errors(t *testing.T) {
	t.Run("missing books file", func(t *testing.T) {
		cfg := memoryConfig(t)
		cfg.Database.BooksFile = filepath.Join(t.TempDir(), "nope.json")

		_, err := newApplication(context.Background(), cfg, discardLogger())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to load books file")
	})

	t.Run("short jwt secret", func(t *testing.T) {
		cfg := memoryConfig(t)
		cfg.Auth.JWTSecret = "short"

		_, err := newApplication(context.Background(), cfg, discardLogger())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to initialize JWT service")
	})

	t.Run("unknown driver", func(t *testing.T) {
		cfg := memoryConfig(t)
		cfg.Database.Driver = "sqlite"

		_, err := newApplication(context.Background(), cfg, discardLogger())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported database driver")
	})
}

func TestApplication_CloseIsSafeOnPartialApp(t *testing.T) {
	app := &application{logger: discardLogger()}
	assert.NotPanics(t, app.close)
}

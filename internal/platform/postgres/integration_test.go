//go:build integration

package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/phrazzld/bookshelf-api/internal/domain"
	"github.com/phrazzld/bookshelf-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

var testDB *sql.DB

func TestMain(m *testing.M) {
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:18-alpine",
		tcpostgres.WithDatabase("bookshelf_test"),
		tcpostgres.WithUsername("bookshelf"),
		tcpostgres.WithPassword("bookshelf"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		panic("failed to start postgres container: " + err.Error())
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		panic("failed to get connection string: " + err.Error())
	}

	testDB, err = sql.Open("pgx", dsn)
	if err != nil {
		_ = container.Terminate(ctx)
		panic("failed to open database: " + err.Error())
	}

	if err := Migrate(ctx, testDB, "up", quietLogger()); err != nil {
		_ = testDB.Close()
		_ = container.Terminate(ctx)
		panic("failed to migrate: " + err.Error())
	}

	code := m.Run()

	_ = testDB.Close()
	_ = container.Terminate(ctx)
	os.Exit(code)
}

func resetTables(t *testing.T) {
	t.Helper()
	_, err := testDB.ExecContext(context.Background(), `TRUNCATE list_items, books, users CASCADE`)
	require.NoError(t, err)
}

func seedUser(t *testing.T, username string) *domain.User {
	t.Helper()
	user, err := domain.NewUser(username, "Correct-horse-1")
	require.NoError(t, err)
	user.HashedPassword = "$2a$04$fakehashfakehashfakehashfakehashfakehashfakehashfakeh"
	user.Password = ""
	require.NoError(t, NewPostgresUserStore(testDB, quietLogger()).Create(context.Background(), user))
	return user
}

func TestIntegration_UserStore(t *testing.T) {
	resetTables(t)
	ctx := context.Background()
	users := NewPostgresUserStore(testDB, quietLogger())

	user := seedUser(t, "ada")

	got, err := users.GetByUsername(ctx, "ada")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	dup, err := domain.NewUser("ada", "Another-pass-2")
	require.NoError(t, err)
	dup.HashedPassword = "hash"
	dup.Password = ""
	assert.ErrorIs(t, users.Create(ctx, dup), store.ErrUsernameExists)

	_, err = users.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrUserNotFound)
}

func TestIntegration_ListItemLifecycle(t *testing.T) {
	resetTables(t)
	ctx := context.Background()
	books := NewPostgresBookStore(testDB, quietLogger())
	items := NewPostgresListItemStore(testDB, quietLogger())

	require.NoError(t, books.Upsert(ctx, &domain.Book{ID: "B1", Title: "Dune"}))
	require.NoError(t, books.Upsert(ctx, &domain.Book{ID: "B2", Title: "Emma"}))
	owner := seedUser(t, "ada")

	item, err := domain.NewListItem(owner.ID, "B1")
	require.NoError(t, err)
	require.NoError(t, items.Create(ctx, item))

	stored, err := items.GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.JSONEq(t, mustJSON(t, item), mustJSON(t, stored), "created item reads back unchanged")
	assert.True(t, item.CreatedAt.Equal(stored.CreatedAt))

	again, err := domain.NewListItem(owner.ID, "B1")
	require.NoError(t, err)
	assert.ErrorIs(t, items.Create(ctx, again), store.ErrListItemExists)

	orphan, err := domain.NewListItem(owner.ID, "B404")
	require.NoError(t, err)
	assert.ErrorIs(t, items.Create(ctx, orphan), store.ErrInvalidEntity)

	second, err := domain.NewListItem(owner.ID, "B2")
	require.NoError(t, err)
	require.NoError(t, items.Create(ctx, second))

	listed, err := items.Query(ctx, store.ListItemFilter{OwnerID: owner.ID})
	require.NoError(t, err)
	assert.Len(t, listed, 2)

	finish := item.StartDate.Add(48 * time.Hour)
	rating := 5
	updated, err := items.Update(ctx, item.ID, domain.ListItemUpdate{
		Rating:     &rating,
		FinishDate: domain.NullTime{Set: true, Time: &finish},
	})
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Rating)

	reloaded, err := items.GetByID(ctx, item.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.FinishDate)
	assert.True(t, finish.Equal(*reloaded.FinishDate))
	assert.JSONEq(t, mustJSON(t, updated), mustJSON(t, reloaded), "updated item reads back unchanged")

	moveTo := "B2"
	_, err = items.Update(ctx, item.ID, domain.ListItemUpdate{BookID: &moveTo})
	assert.ErrorIs(t, err, store.ErrListItemExists)

	require.NoError(t, items.Delete(ctx, item.ID))
	assert.ErrorIs(t, items.Delete(ctx, item.ID), store.ErrListItemNotFound)

	bookItems, err := items.Query(ctx, store.ListItemFilter{OwnerID: owner.ID, BookID: "B2"})
	require.NoError(t, err)
	require.Len(t, bookItems, 1)
	assert.Equal(t, second.ID, bookItems[0].ID)
}

func TestIntegration_MigrateDownAndUp(t *testing.T) {
	ctx := context.Background()
	require.NoError(t, Migrate(ctx, testDB, "version", quietLogger()))
	require.NoError(t, Migrate(ctx, testDB, "down", quietLogger()))
	require.NoError(t, Migrate(ctx, testDB, "up", quietLogger()))
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return string(data)
}

package contact

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/ashureev/portfolio-assistant/internal/config"
)

func TestListNewestFirstWithLimit(t *testing.T) {
	repo, _ := migratedRepo(t)
	ctx := context.Background()

	for i := range 5 {
		require.NoError(t, repo.Create(ctx, &Contact{
			Name:      fmt.Sprintf("visitor %d", i),
			Email:     "v@example.com",
			Subject:   "s",
			Message:   "m",
			Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		}))
	}

	got, err := repo.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "visitor 4", got[0].Name)
	assert.Equal(t, "visitor 3", got[1].Name)

	all, err := repo.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestCreateWithoutSchemaIsDependencyError(t *testing.T) {
	repo := NewGormRepository(openTestDB(t))

	err := repo.Create(context.Background(), &Contact{Name: "n", Email: "e@example.com", Message: "m", Timestamp: "t"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to save message")
}

func setupPostgresContainer(t *testing.T, ctx context.Context) string {
	dbName, dbUser, dbPassword := "contacts", "test_user", "test_password"

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")

	t.Cleanup(func() {
		err := postgresContainer.Terminate(context.Background())
		require.NoError(t, err, "Failed to terminate PostgreSQL container")
	})

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "Failed to get PostgreSQL connection string")

	return connStr
}

func TestPostgresRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}
	ctx := context.Background()

	db, err := Open(config.ContactConfig{DatabaseURL: setupPostgresContainer(t, ctx)})
	require.NoError(t, err)
	repo := NewGormRepository(db)
	t.Cleanup(func() { _ = repo.Close() })

	require.NoError(t, Migrate(db))
	require.NoError(t, Migrate(db))
	require.NoError(t, repo.Ping(ctx))

	svc := NewService(repo, &recordingNotifier{}, time.Second)
	_, err = svc.Submit(ctx, validSubmission())
	require.NoError(t, err)
	svc.Close()

	got, err := repo.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "ada@example.com", got[0].Email)
}

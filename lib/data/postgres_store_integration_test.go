//go:build integration

package data

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"opsconsole/lib/clients"
	"opsconsole/lib/models"
)

func startPostgres(t *testing.T) string {
	t.Helper()
	if dsn := os.Getenv("OPSCONSOLE_TEST_PG_DSN"); dsn != "" {
		return dsn
	}

	ctx := context.Background()
	container, err := postgres.Run(ctx,
		"postgres:16",
		postgres.WithDatabase("opsconsole"),
		postgres.WithUsername("opsconsole"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	return dsn
}

func TestPostgresStore_RoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	ctx := context.Background()

	db, err := clients.NewPostgresSQLClientFromDSN(startPostgres(t))
	require.NoError(t, err)
	store := &PostgresStore{DB: db, Logger: logrus.New()}
	t.Cleanup(func() { _ = store.Close(ctx) })
	require.NoError(t, store.EnsureSchema(ctx))
	_, err = store.DeleteMany(ctx, CollectionClients, nil)
	require.NoError(t, err)

	seed(t, store)

	docs, err := store.Find(ctx, CollectionClients, Filter{"client_status": "Active"}, FindOptions{Projection: []string{"id", "service"}})
	require.NoError(t, err)
	assert.Equal(t, []models.Document{
		{"id": "client_a", "service": "SEO"},
		{"id": "client_c", "service": "SEO"},
	}, docs)

	n, err := store.Update(ctx, CollectionClients, "client_c", models.Document{"client_status": "Churned", "tenure_months": 9})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	doc, err := FindByID(ctx, store, CollectionClients, "client_c")
	require.NoError(t, err)
	assert.Equal(t, "Churned", doc["client_status"])
	assert.Equal(t, float64(9), doc["tenure_months"])
	assert.Equal(t, "Crane", doc["client_name"])

	n, err = store.Update(ctx, CollectionClients, "client_missing", models.Document{"client_status": "Churned"})
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	limited, err := store.Find(ctx, CollectionClients, nil, FindOptions{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	n, err = store.Delete(ctx, CollectionClients, "client_a")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = store.DeleteMany(ctx, CollectionClients, Filter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

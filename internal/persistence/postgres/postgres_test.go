package postgres_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/example/workspace-booking/internal/persistence"
	"github.com/example/workspace-booking/internal/persistence/postgres"
	"github.com/example/workspace-booking/internal/persistence/storetest"
)

func TestStorageContract(t *testing.T) {
	url := os.Getenv("BOOKING_TEST_POSTGRES_URL")
	if url == "" {
		t.Skip("BOOKING_TEST_POSTGRES_URL not set")
	}

	storetest.Run(t, func(t *testing.T) persistence.Store {
		ctx := context.Background()
		store, err := postgres.Open(ctx, url)
		require.NoError(t, err)
		t.Cleanup(func() { _ = store.Close() })

		require.NoError(t, store.Migrate(ctx))
		require.NoError(t, store.Reset(ctx))
		return store
	})
}

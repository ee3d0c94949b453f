package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/partify/internal/config"
	"github.com/Skotchmaster/partify/internal/repo"
)

func TestOpen_SQLite(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, closeFn, err := Open(ctx, config.Config{StoreDriver: config.DriverSQLite, DatabaseURL: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = closeFn(context.Background()) })

	_, ok := s.(*repo.GormRepo)
	assert.True(t, ok)
	require.NoError(t, s.Ping(ctx))

	n, err := s.CountProducts(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestOpen_UnknownDriver(t *testing.T) {
	t.Parallel()

	_, _, err := Open(context.Background(), config.Config{StoreDriver: "cassandra"})
	assert.Error(t, err)
}

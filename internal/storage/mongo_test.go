package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
)

func TestMongoKV(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping MongoDB container test in short mode")
	}
	ctx := context.Background()

	mongoContainer, err := mongodb.Run(ctx, "mongo:7")
	require.NoError(t, err)
	defer func() {
		if err := mongoContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}()

	uri, err := mongoContainer.ConnectionString(ctx)
	require.NoError(t, err)

	db, err := ConnectMongoDB(ctx, uri, "testdb")
	require.NoError(t, err)
	defer db.Client().Disconnect(ctx)

	kv := NewMongoKV(db)
	require.NoError(t, kv.CreateIndexes(ctx))

	exerciseKV(t, kv)
}

func TestConnectMongoDB_PingFailure(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	db, err := ConnectMongoDB(ctx, "mongodb://127.0.0.1:1", "testdb")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to ping MongoDB")
	assert.Nil(t, db)
}

package storage

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/fjod/deisishop/internal/config"
)

// Backend is an opened KV together with whatever it holds open.
type Backend struct {
	KV    KV
	Name  string
	close func(context.Context) error
}

func (b *Backend) Close(ctx context.Context) error {
	if b.close == nil {
		return nil
	}
	return b.close(ctx)
}

// Open connects the backend selected by cfg.CartStore and prepares its
// schema where it has one.
func Open(ctx context.Context, cfg *config.Config) (*Backend, error) {
	switch cfg.CartStore {
	case config.StoreMemory, "":
		return &Backend{KV: NewMemoryKV(), Name: config.StoreMemory}, nil

	case config.StoreRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return &Backend{
			KV:    NewRedisKV(client, cfg.CartTTL),
			Name:  config.StoreRedis,
			close: func(context.Context) error { return client.Close() },
		}, nil

	case config.StoreMongo:
		db, err := ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
		if err != nil {
			return nil, err
		}
		kv := NewMongoKV(db)
		if err := kv.CreateIndexes(ctx); err != nil {
			_ = db.Client().Disconnect(ctx)
			return nil, err
		}
		return &Backend{
			KV:    kv,
			Name:  config.StoreMongo,
			close: func(ctx context.Context) error { return db.Client().Disconnect(ctx) },
		}, nil

	case config.StoreSQLite:
		db, err := OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		if err := Migrate(db, DialectSQLite); err != nil {
			_ = db.Close()
			return nil, err
		}
		return &Backend{
			KV:    NewSQLKV(db),
			Name:  config.StoreSQLite,
			close: func(context.Context) error { return db.Close() },
		}, nil

	case config.StorePostgres:
		db, err := OpenPostgres(cfg.Postgres)
		if err != nil {
			return nil, err
		}
		if err := Migrate(db, DialectPostgres); err != nil {
			_ = db.Close()
			return nil, err
		}
		return &Backend{
			KV:    NewSQLKV(db),
			Name:  config.StorePostgres,
			close: func(context.Context) error { return db.Close() },
		}, nil
	}

	return nil, fmt.Errorf("unknown cart store %q", cfg.CartStore)
}

package db

import (
	"context"
	"fmt"

	"trivia-service/internal/config"
	"trivia-service/internal/logger"
	"trivia-service/internal/repository"
)

// OpenStore builds the store selected by cfg.StoreDriver. The returned close
// func releases the underlying connection and is never nil.
func OpenStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (repository.Store, func(), error) {
	log = log.With("store", cfg.StoreDriver)
	switch cfg.StoreDriver {
	case config.StoreMemory:
		log.Warn("Using in-memory store, state is lost on restart")
		return repository.NewMemoryStore(), func() {}, nil

	case config.StoreSQLite:
		gdb, err := OpenSQLite(cfg.SQLitePath, log)
		if err != nil {
			return nil, nil, err
		}
		store, err := repository.NewSQLiteStore(gdb)
		if err != nil {
			_ = CloseSQLite(gdb)
			return nil, nil, err
		}
		return store, func() {
			if err := CloseSQLite(gdb); err != nil {
				log.Error("Error closing SQLite", "error", err)
			}
		}, nil

	case config.StoreRedis:
		client, err := ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, log)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewRedisStore(client, cfg.RedisKeyPrefix), func() {
			if err := client.Close(); err != nil {
				log.Error("Error closing Redis", "error", err)
			}
		}, nil

	case config.StoreMongo:
		client, err := ConnectMongo(ctx, cfg.MongoURI, log)
		if err != nil {
			return nil, nil, err
		}
		store := repository.NewMongoStore(client.Database(cfg.MongoDatabase), cfg.MongoCollection)
		return store, func() { DisconnectMongo(client, log) }, nil
	}
	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

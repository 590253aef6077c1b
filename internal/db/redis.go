package db

import (
	"context"
	"fmt"
	"time"

	"trivia-service/internal/logger"

	"github.com/redis/go-redis/v9"
)

// ConnectRedis fails fast when the server does not answer PING, since the
// store is useless without it.
func ConnectRedis(ctx context.Context, addr, password string, db int, log *logger.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	log.Info("Connected to Redis", "addr", addr, "db", db)
	return client, nil
}

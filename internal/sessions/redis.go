package sessions

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "rentguard:revoked:"

type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(ctx context.Context, addr string, password string, database int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       database,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis %s: %w", addr, err)
	}
	return &RedisStore{client: client}, nil
}

func (store *RedisStore) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return store.client.Set(ctx, revokedTokenKey(tokenID), "1", ttl).Err()
}

func (store *RedisStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	count, err := store.client.Exists(ctx, revokedTokenKey(tokenID)).Result()
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (store *RedisStore) Close() error {
	return store.client.Close()
}

func revokedTokenKey(tokenID string) string {
	return redisKeyPrefix + tokenID
}

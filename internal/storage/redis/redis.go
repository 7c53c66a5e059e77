package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRepo is the externalized revocation set: blacklisted tokens are keyed
// by their SHA-256 so raw tokens never land in redis, and each entry carries
// a TTL so the set prunes itself once the token would have expired anyway.
type RedisRepo struct {
	client *redis.Client
}

func New(ctx context.Context, addr, pass string, db int) (*RedisRepo, error) {
	const op = "storage.redis.New"

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     pass,
		DB:           db,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &RedisRepo{
		client: client,
	}, nil
}

func (r *RedisRepo) Add(ctx context.Context, token string, ttl time.Duration) error {
	const op = "storage.redis.Add"

	err := r.client.Set(ctx, blacklistKey(token), "revoked", ttl).Err()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *RedisRepo) Contains(ctx context.Context, token string) (bool, error) {
	const op = "storage.redis.Contains"

	n, err := r.client.Exists(ctx, blacklistKey(token)).Result()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return n > 0, nil
}

func (r *RedisRepo) Close() {
	r.client.Close()
}

func blacklistKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return fmt.Sprintf("blacklist:%s", hex.EncodeToString(sum[:]))
}

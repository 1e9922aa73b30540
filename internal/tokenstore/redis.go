package tokenstore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/heridalab/woundcare-backend/internal/logger"
	"github.com/heridalab/woundcare-backend/internal/utils"
)

type redisStore struct {
	log *logger.Logger
	rdb *goredis.Client
}

// NewRedisStore connects to Redis so revocations survive restarts and are
// shared across instances. Tokens are stored hashed; the store never holds a
// usable credential.
func NewRedisStore(baseLog *logger.Logger) (RevokedStore, error) {
	addr := strings.TrimSpace(utils.GetEnv("REDIS_ADDR", "", baseLog))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &redisStore{
		log: baseLog.With("service", "RedisTokenStore"),
		rdb: rdb,
	}, nil
}

func (rs *redisStore) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return rs.rdb.Set(ctx, revocationKey(token), "1", ttl).Err()
}

func (rs *redisStore) IsRevoked(ctx context.Context, token string) (bool, error) {
	n, err := rs.rdb.Exists(ctx, revocationKey(token)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func revocationKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "revoked_token:" + hex.EncodeToString(sum[:])
}

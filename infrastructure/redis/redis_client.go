package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type RedisClient struct {
	client *redis.Client
}

func NewRedisClient(config RedisConfig) *RedisClient {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", config.Host, config.Port),
		Password: config.Password,
		DB:       config.DB,
	})

	return &RedisClient{client: client}
}

func (r *RedisClient) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisClient) Close() error {
	return r.client.Close()
}

const (
	presenceKeyPrefix = "presence:session:"
	presenceDirtyHash = "presence:last_seen"
)

// Heartbeat records guest liveness: a TTL presence key plus an entry in the
// dirty hash that the presence worker flushes to the database.
func (r *RedisClient) Heartbeat(ctx context.Context, sessionID uuid.UUID, ttl time.Duration) error {
	now := time.Now()
	pipe := r.client.Pipeline()
	pipe.Set(ctx, presenceKeyPrefix+sessionID.String(), now.Unix(), ttl)
	pipe.HSet(ctx, presenceDirtyHash, sessionID.String(), now.Unix())
	_, err := pipe.Exec(ctx)
	return err
}

// IsActive reports whether a session heartbeated within its TTL window.
func (r *RedisClient) IsActive(ctx context.Context, sessionID uuid.UUID) (bool, error) {
	n, err := r.client.Exists(ctx, presenceKeyPrefix+sessionID.String()).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DrainLastSeen returns and clears the accumulated heartbeat timestamps.
// Entries that cannot be parsed are dropped.
func (r *RedisClient) DrainLastSeen(ctx context.Context) (map[uuid.UUID]time.Time, error) {
	entries, err := r.client.HGetAll(ctx, presenceDirtyHash).Result()
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}

	fields := make([]string, 0, len(entries))
	result := make(map[uuid.UUID]time.Time, len(entries))
	for field, value := range entries {
		fields = append(fields, field)
		id, err := uuid.Parse(field)
		if err != nil {
			continue
		}
		unix, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			continue
		}
		result[id] = time.Unix(unix, 0)
	}

	if err := r.client.HDel(ctx, presenceDirtyHash, fields...).Err(); err != nil {
		return nil, err
	}
	return result, nil
}

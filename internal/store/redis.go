package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spigell/vacancy-bot/internal/filter"
)

// DefaultRedisKey is the hash holding all filters.
const DefaultRedisKey = "vacancy-bot:filters"

// hashClient is the subset of *redis.Client the backend uses.
type hashClient interface {
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
	HSet(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	HDel(ctx context.Context, key string, fields ...string) *redis.IntCmd
	Ping(ctx context.Context) *redis.StatusCmd
	Close() error
}

// RedisBackend stores each filter as a JSON value in one hash, keyed by chat id.
type RedisBackend struct {
	log    *zap.Logger
	client hashClient
	key    string
}

// NewRedisClient creates and verifies a Redis client connection.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL: %w", err)
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return rdb, nil
}

func NewRedisBackend(log *zap.Logger, client hashClient, key string) *RedisBackend {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisBackend{log: log, client: client, key: key}
}

func (b *RedisBackend) Name() string { return "redis" }

// Load reads the whole hash. Entries that cannot be decoded are skipped.
func (b *RedisBackend) Load(ctx context.Context) (map[int64]*filter.Filter, error) {
	raw, err := b.client.HGetAll(ctx, b.key).Result()
	if err != nil {
		return nil, fmt.Errorf("reading hash %q: %w", b.key, err)
	}

	filters := make(map[int64]*filter.Filter, len(raw))
	for field, value := range raw {
		chatID, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			b.log.Warn("skipping filter with malformed chat id", zap.String("field", field))
			continue
		}

		var f filter.Filter
		if err := json.Unmarshal([]byte(value), &f); err != nil {
			b.log.Warn("skipping undecodable filter", zap.Int64("chat_id", chatID), zap.Error(err))
			continue
		}
		filters[chatID] = &f
	}

	return filters, nil
}

func (b *RedisBackend) Put(ctx context.Context, f *filter.Filter) error {
	data, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("encoding filter: %w", err)
	}

	if err := b.client.HSet(ctx, b.key, strconv.FormatInt(f.ChatID, 10), string(data)).Err(); err != nil {
		return fmt.Errorf("writing filter to hash %q: %w", b.key, err)
	}
	return nil
}

func (b *RedisBackend) Delete(ctx context.Context, chatID int64) error {
	if err := b.client.HDel(ctx, b.key, strconv.FormatInt(chatID, 10)).Err(); err != nil {
		return fmt.Errorf("deleting filter from hash %q: %w", b.key, err)
	}
	return nil
}

func (b *RedisBackend) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}

func (b *RedisBackend) Close() error {
	return b.client.Close()
}

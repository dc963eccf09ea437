package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

const (
	TypeMemory   = "memory"
	TypeFile     = "file"
	TypeRedis    = "redis"
	TypePostgres = "postgres"

	DefaultFilePath = "user_filters.json"
)

// Config selects and configures the persistence backend.
type Config struct {
	Type        string `mapstructure:"type"`
	Path        string `mapstructure:"path"`
	RedisURL    string `mapstructure:"redis-url"`
	RedisKey    string `mapstructure:"redis-key"`
	PostgresURL string `mapstructure:"postgres-url"`
}

// OpenBackend creates the backend described by cfg. An empty type selects the file backend.
func OpenBackend(ctx context.Context, log *zap.Logger, cfg Config) (Backend, error) {
	switch cfg.Type {
	case TypeFile, "":
		path := cfg.Path
		if path == "" {
			path = DefaultFilePath
		}
		return NewFileBackend(path), nil
	case TypeMemory:
		return NewMemoryBackend(), nil
	case TypeRedis:
		if cfg.RedisURL == "" {
			return nil, fmt.Errorf("store.redis-url is required for the redis backend")
		}
		client, err := NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		return NewRedisBackend(log, client, cfg.RedisKey), nil
	case TypePostgres:
		if cfg.PostgresURL == "" {
			return nil, fmt.Errorf("store.postgres-url is required for the postgres backend")
		}
		return NewPostgresBackend(ctx, log, cfg.PostgresURL)
	default:
		return nil, fmt.Errorf("unknown store type %q", cfg.Type)
	}
}

package store

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	"github.com/spigell/vacancy-bot/internal/filter"
)

//go:embed migrations/*.sql
var migrations embed.FS

const (
	selectFilters = `SELECT chat_id, filter FROM user_filters`
	upsertFilter  = `INSERT INTO user_filters (chat_id, filter, updated_at) VALUES ($1, $2, now())
ON CONFLICT (chat_id) DO UPDATE SET filter = EXCLUDED.filter, updated_at = now()`
	deleteFilter = `DELETE FROM user_filters WHERE chat_id = $1`
)

// PostgresBackend stores filters as jsonb rows of the user_filters table.
type PostgresBackend struct {
	log  *zap.Logger
	pool *pgxpool.Pool
}

// NewPostgresBackend opens a pool, verifies it and applies the embedded migrations.
func NewPostgresBackend(ctx context.Context, log *zap.Logger, dsn string) (*PostgresBackend, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pgx config: %w", err)
	}
	config.MaxConns = 4
	config.MaxConnLifetime = time.Hour
	config.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("open pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if err := migrate(ctx, log, pool); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresBackend{log: log, pool: pool}, nil
}

type gooseLogger struct {
	log *zap.SugaredLogger
}

func (l gooseLogger) Printf(format string, v ...interface{}) { l.log.Infof(format, v...) }
func (l gooseLogger) Fatalf(format string, v ...interface{}) { l.log.Fatalf(format, v...) }

func migrate(ctx context.Context, log *zap.Logger, pool *pgxpool.Pool) error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(gooseLogger{log: log.Named("goose").Sugar()})

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("setting goose dialect: %w", err)
	}

	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("applying migrations: %w", err)
	}
	return nil
}

func (b *PostgresBackend) Name() string { return "postgres" }

func (b *PostgresBackend) Load(ctx context.Context) (map[int64]*filter.Filter, error) {
	rows, err := b.pool.Query(ctx, selectFilters)
	if err != nil {
		return nil, fmt.Errorf("querying filters: %w", err)
	}
	defer rows.Close()

	filters := make(map[int64]*filter.Filter)
	for rows.Next() {
		var (
			chatID int64
			raw    []byte
		)
		if err := rows.Scan(&chatID, &raw); err != nil {
			return nil, fmt.Errorf("scanning filter row: %w", err)
		}

		var f filter.Filter
		if err := json.Unmarshal(raw, &f); err != nil {
			b.log.Warn("skipping undecodable filter", zap.Int64("chat_id", chatID), zap.Error(err))
			continue
		}
		filters[chatID] = &f
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating filter rows: %w", err)
	}

	return filters, nil
}

func (b *PostgresBackend) Put(ctx context.Context, f *filter.Filter) error {
	data, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("encoding filter: %w", err)
	}

	if _, err := b.pool.Exec(ctx, upsertFilter, f.ChatID, data); err != nil {
		return fmt.Errorf("upserting filter: %w", err)
	}
	return nil
}

func (b *PostgresBackend) Delete(ctx context.Context, chatID int64) error {
	if _, err := b.pool.Exec(ctx, deleteFilter, chatID); err != nil {
		return fmt.Errorf("deleting filter: %w", err)
	}
	return nil
}

func (b *PostgresBackend) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	return b.pool.Ping(ctx)
}

func (b *PostgresBackend) Close() error {
	b.pool.Close()
	return nil
}

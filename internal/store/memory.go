package store

import (
	"context"
	"sync"

	"github.com/spigell/vacancy-bot/internal/filter"
)

// MemoryBackend keeps filters only for the lifetime of the process.
type MemoryBackend struct {
	mu      sync.Mutex
	filters map[int64]*filter.Filter
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{filters: make(map[int64]*filter.Filter)}
}

func (b *MemoryBackend) Name() string { return "memory" }

func (b *MemoryBackend) Load(context.Context) (map[int64]*filter.Filter, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make(map[int64]*filter.Filter, len(b.filters))
	for chatID, f := range b.filters {
		out[chatID] = f.Clone()
	}
	return out, nil
}

func (b *MemoryBackend) Put(_ context.Context, f *filter.Filter) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.filters[f.ChatID] = f.Clone()
	return nil
}

func (b *MemoryBackend) Delete(_ context.Context, chatID int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.filters, chatID)
	return nil
}

func (b *MemoryBackend) Ping(context.Context) error { return nil }

func (b *MemoryBackend) Close() error { return nil }

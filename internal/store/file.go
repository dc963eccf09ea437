package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/spigell/vacancy-bot/internal/filter"
)

// FileBackend keeps all filters in a single JSON document keyed by chat id.
// The document is rewritten wholesale on every change.
type FileBackend struct {
	path string

	mu      sync.Mutex
	filters map[int64]*filter.Filter
}

func NewFileBackend(path string) *FileBackend {
	return &FileBackend{path: path, filters: make(map[int64]*filter.Filter)}
}

func (b *FileBackend) Name() string { return "file" }

// Load reads the document. A missing file is an empty store.
func (b *FileBackend) Load(context.Context) (map[int64]*filter.Filter, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	data, err := os.ReadFile(b.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[int64]*filter.Filter{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading filters file %q: %w", b.path, err)
	}

	filters := make(map[int64]*filter.Filter)
	if err := json.Unmarshal(data, &filters); err != nil {
		return nil, fmt.Errorf("decoding filters file %q: %w", b.path, err)
	}

	b.filters = filters

	out := make(map[int64]*filter.Filter, len(filters))
	for chatID, f := range filters {
		if f == nil {
			delete(filters, chatID)
			continue
		}
		out[chatID] = f.Clone()
	}
	return out, nil
}

func (b *FileBackend) Put(_ context.Context, f *filter.Filter) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.filters[f.ChatID] = f.Clone()
	return b.write()
}

func (b *FileBackend) Delete(_ context.Context, chatID int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.filters, chatID)
	return b.write()
}

// Ping verifies the directory of the document is accessible.
func (b *FileBackend) Ping(context.Context) error {
	dir := filepath.Dir(b.path)
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("checking filters directory %q: %w", dir, err)
	}
	return nil
}

func (b *FileBackend) Close() error { return nil }

func (b *FileBackend) write() error {
	data, err := json.MarshalIndent(b.filters, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding filters: %w", err)
	}

	dir := filepath.Dir(b.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(b.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file in %q: %w", dir, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), b.path); err != nil {
		return fmt.Errorf("replacing filters file %q: %w", b.path, err)
	}
	return nil
}

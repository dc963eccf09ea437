// Package store keeps per-chat filters in memory and mirrors every change to
// a persistence backend.
package store

import (
	"context"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/spigell/vacancy-bot/internal/filter"
	"github.com/spigell/vacancy-bot/internal/logger"
	"github.com/spigell/vacancy-bot/internal/posting"
)

// Backend persists filters keyed by chat id.
type Backend interface {
	Name() string
	Load(ctx context.Context) (map[int64]*filter.Filter, error)
	Put(ctx context.Context, f *filter.Filter) error
	Delete(ctx context.Context, chatID int64) error
	Ping(ctx context.Context) error
	Close() error
}

// Store is the authoritative in-memory filter registry. Mutations of one chat
// are serialized, different chats proceed independently.
type Store struct {
	log     *zap.Logger
	backend Backend

	mu      sync.Mutex
	filters map[int64]*filter.Filter
	locks   map[int64]*sync.Mutex
}

// New creates a store and preloads it from the backend. A failed load leaves
// the store empty.
func New(ctx context.Context, log *zap.Logger, backend Backend) *Store {
	if log == nil {
		log = zap.NewNop()
	}

	s := &Store{
		log:     log.With(zap.String("backend", backend.Name())),
		backend: backend,
		filters: make(map[int64]*filter.Filter),
		locks:   make(map[int64]*sync.Mutex),
	}

	loaded, err := backend.Load(ctx)
	if err != nil {
		s.log.Warn("failed to load filters, starting empty", zap.Error(err))
		return s
	}

	for chatID, f := range loaded {
		f.ChatID = chatID
		f.Normalize()
		s.filters[chatID] = f
	}
	s.log.Info("filters loaded", zap.Int("count", len(s.filters)))

	return s
}

func (s *Store) lockFor(chatID int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.locks[chatID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[chatID] = l
	}
	return l
}

// current returns the stored filter, creating defaults on first access.
func (s *Store) current(chatID int64) *filter.Filter {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.filters[chatID]
	if !ok {
		f = filter.New(chatID)
		s.filters[chatID] = f
	}
	return f
}

func (s *Store) set(f *filter.Filter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters[f.ChatID] = f
}

// Get returns a copy of the chat's filter.
func (s *Store) Get(chatID int64) *filter.Filter {
	return s.current(chatID).Clone()
}

// Save replaces the chat's filter with a copy of f and persists it.
func (s *Store) Save(ctx context.Context, f *filter.Filter) {
	l := s.lockFor(f.ChatID)
	l.Lock()
	defer l.Unlock()

	saved := f.Clone()
	s.set(saved)
	s.persist(ctx, saved)
}

// Update runs fn on a copy of the chat's filter, stores the result and
// persists it. The chat stays locked for the whole sequence.
func (s *Store) Update(ctx context.Context, chatID int64, fn func(f *filter.Filter)) *filter.Filter {
	l := s.lockFor(chatID)
	l.Lock()
	defer l.Unlock()

	updated := s.current(chatID).Clone()
	fn(updated)
	updated.ChatID = chatID

	stored := updated.Clone()
	s.set(stored)
	s.persist(ctx, stored)

	return updated
}

// Reset drops the chat's filter. The next access recreates the defaults.
func (s *Store) Reset(ctx context.Context, chatID int64) *filter.Filter {
	l := s.lockFor(chatID)
	l.Lock()
	defer l.Unlock()

	fresh := filter.New(chatID)
	s.set(fresh)

	if err := s.backend.Delete(ctx, chatID); err != nil {
		logger.WithChat(s.log, chatID).Error("failed to delete filter", zap.Error(err))
	}

	return fresh.Clone()
}

// Subscribed returns the chats that receive scheduled digests, in ascending order.
func (s *Store) Subscribed() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var chats []int64
	for chatID, f := range s.filters {
		if f.Subscribed {
			chats = append(chats, chatID)
		}
	}
	slices.Sort(chats)
	return chats
}

// Ping checks the backend.
func (s *Store) Ping(ctx context.Context) error {
	return s.backend.Ping(ctx)
}

// Name returns the backend name.
func (s *Store) Name() string {
	return s.backend.Name()
}

// Close releases the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

func (s *Store) persist(ctx context.Context, f *filter.Filter) {
	if err := s.backend.Put(ctx, f); err != nil {
		logger.WithChat(s.log, f.ChatID).Error("failed to persist filter", zap.Error(err))
	}
}

func (s *Store) SetMinSalary(ctx context.Context, chatID int64, v *int) *filter.Filter {
	return s.Update(ctx, chatID, func(f *filter.Filter) { f.MinSalary = v })
}

func (s *Store) SetMaxSalary(ctx context.Context, chatID int64, v *int) *filter.Filter {
	return s.Update(ctx, chatID, func(f *filter.Filter) { f.MaxSalary = v })
}

// SetCity sets the city, an empty value clears it.
func (s *Store) SetCity(ctx context.Context, chatID int64, city string) *filter.Filter {
	return s.Update(ctx, chatID, func(f *filter.Filter) { f.City = city })
}

func (s *Store) AddKeyword(ctx context.Context, chatID int64, keyword string) *filter.Filter {
	return s.Update(ctx, chatID, func(f *filter.Filter) { f.AddKeyword(keyword) })
}

func (s *Store) RemoveKeyword(ctx context.Context, chatID int64, keyword string) *filter.Filter {
	return s.Update(ctx, chatID, func(f *filter.Filter) { f.RemoveKeyword(keyword) })
}

func (s *Store) ClearKeywords(ctx context.Context, chatID int64) *filter.Filter {
	return s.Update(ctx, chatID, func(f *filter.Filter) { f.Keywords = nil })
}

func (s *Store) SetMinExperience(ctx context.Context, chatID int64, years *int) *filter.Filter {
	return s.Update(ctx, chatID, func(f *filter.Filter) { f.MinExperienceYears = years })
}

func (s *Store) SetSources(ctx context.Context, chatID int64, sources []posting.Source) *filter.Filter {
	return s.Update(ctx, chatID, func(f *filter.Filter) { f.SetSources(sources) })
}

func (s *Store) SetSubscribed(ctx context.Context, chatID int64, v bool) *filter.Filter {
	return s.Update(ctx, chatID, func(f *filter.Filter) { f.Subscribed = v })
}

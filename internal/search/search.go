// Package search runs a chat's stored filter against the job boards.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/spigell/vacancy-bot/internal/filter"
	"github.com/spigell/vacancy-bot/internal/filtering"
	"github.com/spigell/vacancy-bot/internal/logger"
	"github.com/spigell/vacancy-bot/internal/posting"
)

// Order selects how results are sorted.
type Order int

const (
	ByDate Order = iota
	BySalary
)

const DefaultMaxResults = 10

func (o Order) String() string {
	if o == BySalary {
		return "salary"
	}
	return "date"
}

type Filters interface {
	Get(chatID int64) *filter.Filter
}

type Aggregator interface {
	Search(ctx context.Context, f *filter.Filter) []posting.Posting
}

type Service struct {
	log        *zap.Logger
	filters    Filters
	aggregator Aggregator
	predicates []filtering.Predicate
	maxResults int
}

func New(log *zap.Logger, filters Filters, aggregator Aggregator, maxResults int) *Service {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	return &Service{
		log:        log,
		filters:    filters,
		aggregator: aggregator,
		predicates: filtering.Default(),
		maxResults: maxResults,
	}
}

// Search returns at most maxResults postings matching the chat's filter.
func (s *Service) Search(ctx context.Context, chatID int64, order Order) ([]posting.Posting, error) {
	found, err := s.All(ctx, chatID, order)
	if err != nil {
		return nil, err
	}

	if len(found) > s.maxResults {
		found = found[:s.maxResults]
	}

	return found, nil
}

// All returns every matching posting, sorted but not truncated.
func (s *Service) All(ctx context.Context, chatID int64, order Order) ([]posting.Posting, error) {
	log := logger.WithChat(s.log, chatID)
	f := s.filters.Get(chatID)
	log.Debug("applying filters", zap.Any("filters", filtering.Describe(s.predicates, f)))

	fetched := s.aggregator.Search(ctx, f)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("searching postings: %w", err)
	}

	matched := filtering.Run(log, s.predicates, fetched, f)

	var sorted []posting.Posting
	switch order {
	case BySalary:
		sorted = filtering.SortBySalary(matched)
	default:
		sorted = filtering.SortByDate(matched)
	}

	log.Info("search finished",
		zap.Stringer("order", order),
		zap.Int("fetched", len(fetched)),
		zap.Int("matched", len(sorted)),
	)

	return sorted, nil
}

// DumpToTmpFile writes postings as indented JSON into a new temporary file and returns its name.
func DumpToTmpFile(postings []posting.Posting) (string, error) {
	file, err := os.CreateTemp("", "postings_*.json")
	if err != nil {
		return "", fmt.Errorf("creating dump file: %w", err)
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(postings); err != nil {
		return "", fmt.Errorf("encoding postings: %w", err)
	}

	return file.Name(), nil
}

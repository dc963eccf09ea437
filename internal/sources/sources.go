// Package sources queries job boards and merges their results.
package sources

import (
	"context"

	"github.com/spigell/vacancy-bot/internal/filter"
	"github.com/spigell/vacancy-bot/internal/posting"
)

// Client queries a single job board.
type Client interface {
	Source() posting.Source
	// Search returns raw records for one keyword published within daysBack days.
	// An empty keyword asks for the board's general feed.
	Search(ctx context.Context, keyword string, hints Hints, daysBack int) ([]posting.Record, error)
}

// Hints narrow the server-side query. They never replace client-side matching.
type Hints struct {
	MinSalary  *int
	MaxSalary  *int
	City       string
	RemoteOnly bool
}

// HintsFrom extracts the hints a filter provides.
func HintsFrom(f *filter.Filter) Hints {
	return Hints{
		MinSalary:  f.MinSalary,
		MaxSalary:  f.MaxSalary,
		City:       f.City,
		RemoteOnly: f.RemoteOnly,
	}
}

// HasSalary reports whether any salary bound is set.
func (h Hints) HasSalary() bool {
	return h.MinSalary != nil || h.MaxSalary != nil
}

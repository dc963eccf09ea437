package filtering

import (
	"go.uber.org/zap"

	"github.com/spigell/vacancy-bot/internal/filter"
	"github.com/spigell/vacancy-bot/internal/posting"
)

// Predicate represents a single criterion a posting must satisfy.
type Predicate interface {
	Name() string
	// Configured reports whether the filter sets this criterion at all.
	Configured(f *filter.Filter) bool
	Match(p posting.Posting, f *filter.Filter) bool
	Status(f *filter.Filter) Status
}

// Step describes the result of executing a filtering step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// Status represents runtime information about a predicate for a given filter.
type Status struct {
	Name    string
	Enabled bool
	Details map[string]string
}

// Default returns the predicates in evaluation order.
func Default() []Predicate {
	return []Predicate{
		keywordPredicate{},
		salaryPredicate{},
		cityPredicate{},
		remotePredicate{},
		experiencePredicate{},
		agencyPredicate{},
	}
}

// Apply returns the postings that match the filter, preserving their order.
// An absent or inactive filter lets everything through.
func Apply(postings []posting.Posting, f *filter.Filter) []posting.Posting {
	return Run(zap.NewNop(), Default(), postings, f)
}

// Run executes the predicates sequentially and logs the counters of every step.
func Run(log *zap.Logger, predicates []Predicate, postings []posting.Posting, f *filter.Filter) []posting.Posting {
	if f == nil || !f.IsActive() {
		log.Debug("filter is inactive, passing postings through", zap.Int("postings", len(postings)))
		return postings
	}

	left := postings
	for _, predicate := range predicates {
		if !predicate.Configured(f) {
			continue
		}

		var info Step
		left, info = applyPredicate(predicate, left, f)

		log.Info("filter step",
			zap.String("name", predicate.Name()),
			zap.Int("initial", info.Initial),
			zap.Int("dropped", info.Dropped),
			zap.Int("left", info.Left),
		)
	}

	return left
}

func applyPredicate(predicate Predicate, postings []posting.Posting, f *filter.Filter) ([]posting.Posting, Step) {
	kept := make([]posting.Posting, 0, len(postings))
	for _, p := range postings {
		if predicate.Match(p, f) {
			kept = append(kept, p)
		}
	}

	return kept, Step{Initial: len(postings), Dropped: len(postings) - len(kept), Left: len(kept)}
}

// Describe returns status entries for the provided predicates.
func Describe(predicates []Predicate, f *filter.Filter) []Status {
	statuses := make([]Status, 0, len(predicates))
	active := f != nil && f.IsActive()
	for _, predicate := range predicates {
		if !active {
			statuses = append(statuses, Status{Name: predicate.Name()})
			continue
		}
		statuses = append(statuses, predicate.Status(f))
	}
	return statuses
}

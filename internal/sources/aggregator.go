package sources

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/vacancy-bot/internal/filter"
	"github.com/spigell/vacancy-bot/internal/logger"
	"github.com/spigell/vacancy-bot/internal/posting"
	"github.com/spigell/vacancy-bot/internal/utils"
)

const (
	DefaultPacing   = 300 * time.Millisecond
	DefaultDaysBack = 7
)

// Aggregator queries the enabled sources of a filter and merges the results.
type Aggregator struct {
	log      *zap.Logger
	clients  map[posting.Source]Client
	pacing   time.Duration
	daysBack int

	now  func() time.Time
	wait func(ctx context.Context, d time.Duration) error
}

// NewAggregator creates an aggregator. Sources without a client are skipped.
func NewAggregator(log *zap.Logger, clients []Client, pacing time.Duration, daysBack int) *Aggregator {
	if log == nil {
		log = zap.NewNop()
	}
	if daysBack <= 0 {
		daysBack = DefaultDaysBack
	}

	registered := make(map[posting.Source]Client, len(clients))
	for _, c := range clients {
		registered[c.Source()] = c
	}

	return &Aggregator{
		log:      log,
		clients:  registered,
		pacing:   pacing,
		daysBack: daysBack,
		now:      time.Now,
		wait:     utils.WaitFor,
	}
}

// Sources returns the sources that have a client, in display order.
func (a *Aggregator) Sources() []posting.Source {
	var out []posting.Source
	for _, src := range posting.AllSources {
		if _, ok := a.clients[src]; ok {
			out = append(out, src)
		}
	}
	return out
}

// Search queries every enabled source concurrently. Keywords of one source are
// requested one after another with a pause between requests. Failed requests
// are logged and contribute nothing. Postings are deduplicated by id, keeping
// the first occurrence.
func (a *Aggregator) Search(ctx context.Context, f *filter.Filter) []posting.Posting {
	keywords := f.Keywords
	if len(keywords) == 0 {
		keywords = []string{""}
	}
	hints := HintsFrom(f)

	var enabled []Client
	for _, src := range posting.AllSources {
		c, ok := a.clients[src]
		if ok && f.HasSource(src) {
			enabled = append(enabled, c)
		}
	}

	results := make([][]posting.Posting, len(enabled))

	var wg sync.WaitGroup
	for i, c := range enabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = a.searchSource(ctx, c, keywords, hints)
		}()
	}
	wg.Wait()

	seen := make(map[string]struct{})
	var merged []posting.Posting
	for _, batch := range results {
		for _, p := range batch {
			if _, dup := seen[p.ID]; dup {
				continue
			}
			seen[p.ID] = struct{}{}
			merged = append(merged, p)
		}
	}

	a.log.Info("aggregated postings", zap.Int("sources", len(enabled)), zap.Int("postings", len(merged)))
	return merged
}

func (a *Aggregator) searchSource(ctx context.Context, c Client, keywords []string, hints Hints) []posting.Posting {
	log := logger.WithSource(a.log, string(c.Source()))

	var out []posting.Posting
	for i, kw := range keywords {
		if i > 0 {
			if err := a.wait(ctx, a.pacing); err != nil {
				log.Warn("search interrupted", zap.Error(err))
				break
			}
		}

		records, err := c.Search(ctx, kw, hints, a.daysBack)
		if err != nil {
			log.Warn("source request failed", zap.String("keyword", kw), zap.Error(err))
			continue
		}

		now := a.now()
		for _, rec := range records {
			out = append(out, posting.Normalize(rec, c.Source(), now))
		}
		log.Debug("source responded", zap.String("keyword", kw), zap.Int("records", len(records)))
	}

	return out
}

package headhunter

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/vacancy-bot/internal/posting"
	"github.com/spigell/vacancy-bot/internal/sources"
)

const (
	apiURL  = "https://api.hh.ru"
	siteURL = "https://hh.ru/vacancy/"
	perPage = "50"

	defaultMaxPages = 1
)

type Client struct {
	logger    *zap.Logger
	requester *sources.Requester
	APIURL    string
	// MaxPages limits how many result pages are fetched per keyword.
	MaxPages int

	now func() time.Time
}

func New(logger *zap.Logger, requester *sources.Requester, url string, maxPages int) *Client {
	if url == "" {
		url = apiURL
	}
	if maxPages <= 0 {
		maxPages = defaultMaxPages
	}

	return &Client{
		logger:    logger,
		requester: requester,
		APIURL:    url,
		MaxPages:  maxPages,
		now:       time.Now,
	}
}

func (c *Client) Source() posting.Source { return posting.SourceHH }

// Search queries vacancies whose title matches keyword.
func (c *Client) Search(ctx context.Context, keyword string, hints sources.Hints, daysBack int) ([]posting.Record, error) {
	params := NewSearchParams(keyword, hints, c.now().AddDate(0, 0, -daysBack))

	vacancies, err := c.search(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("searching hh vacancies: %w", err)
	}

	records := make([]posting.Record, 0, vacancies.Len())
	for _, v := range vacancies.Items {
		if v.Archived {
			continue
		}
		records = append(records, v.ToRecord())
	}

	return records, nil
}

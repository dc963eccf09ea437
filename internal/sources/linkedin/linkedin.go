// Package linkedin queries a LinkedIn jobs proxy that exposes a flat JSON feed.
package linkedin

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/spigell/vacancy-bot/internal/posting"
	"github.com/spigell/vacancy-bot/internal/sources"
)

type Client struct {
	logger    *zap.Logger
	requester *sources.Requester
	APIURL    string
}

// New creates a client for the proxy at apiURL. There is no public default.
func New(logger *zap.Logger, requester *sources.Requester, apiURL string) (*Client, error) {
	if apiURL == "" {
		return nil, fmt.Errorf("linkedin api url is not configured")
	}
	return &Client{logger: logger, requester: requester, APIURL: apiURL}, nil
}

func (c *Client) Source() posting.Source { return posting.SourceLinkedIn }

type response struct {
	Jobs []job `json:"jobs"`
}

type job struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Company      string `json:"company"`
	EmployerType string `json:"employer_type"`
	Salary       string `json:"salary"`
	Currency     string `json:"currency"`
	Experience   string `json:"experience"`
	Location     string `json:"location"`
	Workplace    string `json:"workplace"`
	Remote       bool   `json:"remote"`
	URL          string `json:"url"`
	PostedAt     string `json:"posted_at"`
}

func (c *Client) Search(ctx context.Context, keyword string, hints sources.Hints, daysBack int) ([]posting.Record, error) {
	q := url.Values{}
	q.Set("days", strconv.Itoa(daysBack))
	if keyword != "" {
		q.Set("keywords", keyword)
	}
	if hints.City != "" {
		q.Set("location", hints.City)
	}
	if hints.RemoteOnly {
		q.Set("remote", "true")
	}

	var resp response
	if err := c.requester.GetJSON(ctx, c.APIURL, q, &resp); err != nil {
		return nil, fmt.Errorf("searching linkedin jobs: %w", err)
	}

	records := make([]posting.Record, 0, len(resp.Jobs))
	for _, j := range resp.Jobs {
		if j.ID == "" {
			continue
		}
		records = append(records, posting.Record{
			ID:             j.ID,
			Title:          j.Title,
			Company:        j.Company,
			EmployerType:   j.EmployerType,
			SalaryText:     j.Salary,
			Currency:       j.Currency,
			ExperienceText: j.Experience,
			City:           j.Location,
			Schedule:       j.Workplace,
			Remote:         j.Remote,
			URL:            j.URL,
			PublishedAt:    j.PostedAt,
		})
	}

	c.logger.Debug("linkedin jobs fetched", zap.Int("jobs", len(records)))
	return records, nil
}

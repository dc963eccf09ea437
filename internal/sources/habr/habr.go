// Package habr queries the Habr Career vacancies API.
package habr

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/vacancy-bot/internal/posting"
	"github.com/spigell/vacancy-bot/internal/sources"
)

const (
	DefaultAPIURL = "https://career.habr.com/api/frontend/vacancies"
	siteURL       = "https://career.habr.com"
	perPage       = "50"
)

type Client struct {
	logger    *zap.Logger
	requester *sources.Requester
	APIURL    string
	now       func() time.Time
}

// New creates a client. The requester carries the optional bearer token.
func New(logger *zap.Logger, requester *sources.Requester, apiURL string) *Client {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	return &Client{
		logger:    logger,
		requester: requester,
		APIURL:    apiURL,
		now:       time.Now,
	}
}

func (c *Client) Source() posting.Source { return posting.SourceHabr }

type response struct {
	List []vacancy `json:"list"`
}

type vacancy struct {
	ID      int64  `json:"id"`
	Href    string `json:"href"`
	Title   string `json:"title"`
	Company struct {
		Title string `json:"title"`
	} `json:"company"`
	Salary struct {
		From      *int   `json:"from"`
		To        *int   `json:"to"`
		Currency  string `json:"currency"`
		Formatted string `json:"formatted"`
	} `json:"salary"`
	Locations []struct {
		Title string `json:"title"`
	} `json:"locations"`
	RemoteWork    bool   `json:"remoteWork"`
	Employment    string `json:"employment"`
	PublishedDate struct {
		Date string `json:"date"`
	} `json:"publishedDate"`
}

func (c *Client) Search(ctx context.Context, keyword string, hints sources.Hints, daysBack int) ([]posting.Record, error) {
	q := url.Values{}
	q.Set("sort", "date")
	q.Set("type", "all")
	q.Set("per_page", perPage)
	if keyword != "" {
		q.Set("q", keyword)
	}
	if hints.RemoteOnly {
		q.Set("remote", "true")
	}
	if hints.MinSalary != nil {
		q.Set("salary", strconv.Itoa(*hints.MinSalary))
	}
	if hints.HasSalary() {
		q.Set("with_salary", "true")
	}

	var resp response
	if err := c.requester.GetJSON(ctx, c.APIURL, q, &resp); err != nil {
		return nil, fmt.Errorf("searching habr vacancies: %w", err)
	}

	cutoff := c.now().AddDate(0, 0, -daysBack)
	records := make([]posting.Record, 0, len(resp.List))
	for _, v := range resp.List {
		if published, ok := posting.ParsePublishedAt(v.PublishedDate.Date); ok && published.Before(cutoff) {
			continue
		}
		records = append(records, v.toRecord())
	}

	c.logger.Debug("habr vacancies fetched", zap.Int("total", len(resp.List)), zap.Int("recent", len(records)))
	return records, nil
}

func (v vacancy) toRecord() posting.Record {
	cities := make([]string, 0, len(v.Locations))
	for _, loc := range v.Locations {
		if loc.Title != "" {
			cities = append(cities, loc.Title)
		}
	}

	link := v.Href
	if strings.HasPrefix(link, "/") {
		link = siteURL + link
	}
	if link == "" {
		link = siteURL + "/vacancies/" + strconv.FormatInt(v.ID, 10)
	}

	return posting.Record{
		ID:          strconv.FormatInt(v.ID, 10),
		Title:       v.Title,
		Company:     v.Company.Title,
		SalaryText:  v.Salary.Formatted,
		SalaryFrom:  v.Salary.From,
		SalaryTo:    v.Salary.To,
		Currency:    v.Salary.Currency,
		City:        strings.Join(cities, ", "),
		Schedule:    v.Employment,
		Remote:      v.RemoteWork,
		URL:         link,
		PublishedAt: v.PublishedDate.Date,
	}
}

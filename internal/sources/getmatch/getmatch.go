// Package getmatch queries the GetMatch offers API.
package getmatch

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
	DefaultAPIURL = "https://getmatch.ru/api/offers"
	siteURL       = "https://getmatch.ru"
	limit         = "50"
)

// currencies maps the symbols the API uses to ISO codes.
var currencies = map[string]string{
	"₽": "RUB",
	"$": "USD",
	"€": "EUR",
}

type Client struct {
	logger    *zap.Logger
	requester *sources.Requester
	APIURL    string
	now       func() time.Time
}

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

func (c *Client) Source() posting.Source { return posting.SourceGetMatch }

type response struct {
	Offers []offer `json:"offers"`
}

type offer struct {
	ID       int64  `json:"id"`
	Position string `json:"position"`
	URL      string `json:"url"`
	Company  struct {
		Name string `json:"name"`
	} `json:"company"`
	SalaryFrom       *int   `json:"salary_display_from"`
	SalaryTo         *int   `json:"salary_display_to"`
	SalaryCurrency   string `json:"salary_currency"`
	RemoteOptions    string `json:"remote_options"`
	RequiredYears    *int   `json:"required_years_of_experience"`
	PublishedAt      string `json:"published_at"`
	DisplayLocations []struct {
		City string `json:"city"`
	} `json:"display_locations"`
}

func (c *Client) Search(ctx context.Context, keyword string, hints sources.Hints, daysBack int) ([]posting.Record, error) {
	q := url.Values{}
	q.Set("limit", limit)
	q.Set("offset", "0")
	if keyword != "" {
		q.Set("q", keyword)
	}
	if hints.MinSalary != nil {
		q.Set("sa", strconv.Itoa(*hints.MinSalary))
	}
	if hints.RemoteOnly {
		q.Set("l", "remote")
	}

	var resp response
	if err := c.requester.GetJSON(ctx, c.APIURL, q, &resp); err != nil {
		return nil, fmt.Errorf("searching getmatch offers: %w", err)
	}

	cutoff := c.now().AddDate(0, 0, -daysBack)
	records := make([]posting.Record, 0, len(resp.Offers))
	for _, o := range resp.Offers {
		if published, ok := posting.ParsePublishedAt(o.PublishedAt); ok && published.Before(cutoff) {
			continue
		}
		records = append(records, o.toRecord())
	}

	c.logger.Debug("getmatch offers fetched", zap.Int("total", len(resp.Offers)), zap.Int("recent", len(records)))
	return records, nil
}

func (o offer) toRecord() posting.Record {
	cities := make([]string, 0, len(o.DisplayLocations))
	for _, loc := range o.DisplayLocations {
		if loc.City != "" {
			cities = append(cities, loc.City)
		}
	}

	link := o.URL
	if strings.HasPrefix(link, "/") {
		link = siteURL + link
	}

	cur := o.SalaryCurrency
	if code, ok := currencies[cur]; ok {
		cur = code
	}

	return posting.Record{
		ID:             strconv.FormatInt(o.ID, 10),
		Title:          o.Position,
		Company:        o.Company.Name,
		SalaryFrom:     o.SalaryFrom,
		SalaryTo:       o.SalaryTo,
		SalaryText:     posting.SalaryText(o.SalaryFrom, o.SalaryTo, cur),
		Currency:       cur,
		ExperienceText: experienceText(o.RequiredYears),
		City:           strings.Join(cities, ", "),
		Remote:         o.RemoteOptions != "" && o.RemoteOptions != "office",
		URL:            link,
		PublishedAt:    o.PublishedAt,
	}
}

// experienceText renders required years in the wording the normalizer understands.
func experienceText(years *int) string {
	switch {
	case years == nil:
		return ""
	case *years <= 0:
		return "без опыта"
	case *years < 3:
		return "1-3 года"
	case *years < 6:
		return "3-6 лет"
	default:
		return "более 6 лет"
	}
}

package headhunter

import (
	"context"
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/spigell/vacancy-bot/internal/sources"
	"github.com/spigell/vacancy-bot/internal/utils"
)

const (
	SearchPath = "/vacancies"

	remoteSchedule = "remote"
)

// areas maps city names to hh.ru area ids.
var areas = map[string]int{
	"москва":          1,
	"санкт-петербург": 2,
	"питер":           2,
	"спб":             2,
	"екатеринбург":    3,
	"новосибирск":     4,
	"казань":          88,
}

// AreaID resolves a city to an hh.ru area id.
func AreaID(city string) (int, bool) {
	id, ok := areas[utils.Lower(city)]
	return id, ok
}

type SearchParams struct {
	// hhparam is custom tag for reflect. Please see below.
	Text           string   `hhparam:"text"`
	SearchField    string   `hhparam:"search_field"`
	OrderBy        string   `hhparam:"order_by"`
	PerPage        string   `hhparam:"per_page"`
	DateFrom       string   `hhparam:"date_from"`
	Salary         int      `hhparam:"salary"`
	OnlyWithSalary bool     `hhparam:"only_with_salary"`
	Areas          []int    `hhparam:"area"`
	Schedules      []string `hhparam:"schedule"`
}

// NewSearchParams builds a title search ordered by publication time.
// Unknown cities are not sent, the area filter is then left to client-side matching.
func NewSearchParams(keyword string, hints sources.Hints, since time.Time) *SearchParams {
	params := &SearchParams{
		Text:        keyword,
		SearchField: "name",
		OrderBy:     "publication_time",
		PerPage:     perPage,
		DateFrom:    since.UTC().Format(time.RFC3339),
	}

	switch {
	case hints.MinSalary != nil:
		params.Salary = *hints.MinSalary
	case hints.MaxSalary != nil:
		params.Salary = *hints.MaxSalary
	}
	params.OnlyWithSalary = hints.HasSalary()

	if hints.City != "" {
		if id, ok := AreaID(hints.City); ok {
			params.Areas = []int{id}
		}
	}

	if hints.RemoteOnly {
		params.Schedules = []string{remoteSchedule}
	}

	return params
}

func (c *Client) search(ctx context.Context, params *SearchParams) (*Vacancies, error) {
	var vacancies []*Vacancy

	if params.PerPage == "" {
		params.PerPage = perPage
	}

	q := buildParams(params)
	apiURLSearch := fmt.Sprintf("%s%s", c.APIURL, SearchPath)

	items, err := c.GetItems(ctx, apiURLSearch, q)
	if err != nil {
		return nil, err
	}

	cfg := &mapstructure.DecoderConfig{
		Metadata: nil,
		Result:   &vacancies,
		TagName:  "json",
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating decoder: %w", err)
	}
	if err := decoder.Decode(items); err != nil {
		return nil, fmt.Errorf("decoding vacancies: %w", err)
	}

	return &Vacancies{
		Items: vacancies,
	}, nil
}

func buildParams(params *SearchParams) url.Values {
	q := url.Values{}
	fields := reflect.VisibleFields(reflect.TypeOf(*params))
	for _, field := range fields {
		key := field.Tag.Get("hhparam")
		if key == "" {
			continue
		}

		value := reflect.ValueOf(params).Elem().Field(field.Index[0]).Interface()
		switch v := value.(type) {
		case []int:
			for _, item := range v {
				q.Add(key, strconv.Itoa(item))
			}
		case []string:
			for _, item := range v {
				q.Add(key, item)
			}
		default:
			s := fmt.Sprintf("%v", v)
			if s != "" && s != "0" && s != "false" {
				q.Set(key, s)
			}
		}
	}

	return q
}

package sources

import (
	"compress/gzip"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/vacancy-bot/internal/filter"
	"github.com/spigell/vacancy-bot/internal/posting"
)

type stubClient struct {
	source  posting.Source
	records map[string][]posting.Record
	errs    map[string]error

	mu       sync.Mutex
	keywords []string
	hints    []Hints
}

func (c *stubClient) Source() posting.Source { return c.source }

func (c *stubClient) Search(_ context.Context, keyword string, hints Hints, _ int) ([]posting.Record, error) {
	c.mu.Lock()
	c.keywords = append(c.keywords, keyword)
	c.hints = append(c.hints, hints)
	c.mu.Unlock()

	if err := c.errs[keyword]; err != nil {
		return nil, err
	}
	return c.records[keyword], nil
}

func newFilter(keywords ...string) *filter.Filter {
	f := &filter.Filter{ChatID: 1, Sources: posting.AllSources}
	for _, kw := range keywords {
		f.AddKeyword(kw)
	}
	return f
}

func TestAggregatorMergesAndDeduplicates(t *testing.T) {
	t.Parallel()

	hh := &stubClient{
		source: posting.SourceHH,
		records: map[string][]posting.Record{
			"go":   {{ID: "1", Title: "Go developer"}, {ID: "2", Title: "Go lead"}},
			"lead": {{ID: "2", Title: "Go lead"}, {ID: "3", Title: "Team lead"}},
		},
	}
	habr := &stubClient{
		source:  posting.SourceHabr,
		records: map[string][]posting.Record{"go": {{ID: "1", Title: "Go at Habr"}}},
	}

	a := NewAggregator(zap.NewNop(), []Client{habr, hh}, 0, 3)
	got := a.Search(context.Background(), newFilter("go", "lead"))

	var ids []string
	for _, p := range got {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"hh_1", "hh_2", "hh_3", "habr_1"}, ids)
	assert.Equal(t, []string{"go", "lead"}, hh.keywords)
}

func TestAggregatorRespectsEnabledSources(t *testing.T) {
	t.Parallel()

	hh := &stubClient{source: posting.SourceHH}
	habr := &stubClient{source: posting.SourceHabr}

	f := newFilter("go")
	f.SetSources([]posting.Source{posting.SourceHabr, posting.SourceLinkedIn})

	a := NewAggregator(zap.NewNop(), []Client{hh, habr}, 0, 0)
	a.Search(context.Background(), f)

	assert.Empty(t, hh.keywords)
	assert.Equal(t, []string{"go"}, habr.keywords)
	assert.Equal(t, []posting.Source{posting.SourceHH, posting.SourceHabr}, a.Sources())
}

func TestAggregatorWithoutKeywordsUsesGeneralFeed(t *testing.T) {
	t.Parallel()

	hh := &stubClient{source: posting.SourceHH}
	f := newFilter()
	f.City = "Казань"
	f.MinSalary = posting.IntPtr(1000)

	NewAggregator(zap.NewNop(), []Client{hh}, 0, 0).Search(context.Background(), f)

	assert.Equal(t, []string{""}, hh.keywords)
	require.Len(t, hh.hints, 1)
	assert.Equal(t, "Казань", hh.hints[0].City)
	assert.True(t, hh.hints[0].HasSalary())
}

func TestAggregatorFailedKeywordContributesNothing(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.WarnLevel)

	hh := &stubClient{
		source:  posting.SourceHH,
		records: map[string][]posting.Record{"lead": {{ID: "9"}}},
		errs:    map[string]error{"go": errors.New("bad status: 503")},
	}

	got := NewAggregator(zap.New(core), []Client{hh}, 0, 0).Search(context.Background(), newFilter("go", "lead"))

	require.Len(t, got, 1)
	assert.Equal(t, "hh_9", got[0].ID)

	entries := logs.FilterMessage("source request failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "hh", entries[0].ContextMap()["source"])
}

func TestAggregatorPacesKeywords(t *testing.T) {
	t.Parallel()

	hh := &stubClient{source: posting.SourceHH}
	a := NewAggregator(zap.NewNop(), []Client{hh}, 300*time.Millisecond, 0)

	var waits []time.Duration
	a.wait = func(_ context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	}

	a.Search(context.Background(), newFilter("a", "b", "c"))

	assert.Equal(t, []time.Duration{300 * time.Millisecond, 300 * time.Millisecond}, waits)
	assert.Len(t, hh.keywords, 3)
}

func TestAggregatorStopsWhenWaitFails(t *testing.T) {
	t.Parallel()

	hh := &stubClient{source: posting.SourceHH}
	a := NewAggregator(zap.NewNop(), []Client{hh}, time.Second, 0)
	a.wait = func(context.Context, time.Duration) error { return context.Canceled }

	a.Search(context.Background(), newFilter("a", "b"))

	assert.Equal(t, []string{"a"}, hh.keywords)
}

func TestAggregatorNormalizesWithInjectedClock(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	hh := &stubClient{
		source:  posting.SourceHH,
		records: map[string][]posting.Record{"go": {{ID: "1", SalaryText: "от 100 000 руб"}}},
	}
	a := NewAggregator(zap.NewNop(), []Client{hh}, 0, 0)
	a.now = func() time.Time { return now }

	got := a.Search(context.Background(), newFilter("go"))
	require.Len(t, got, 1)
	assert.Equal(t, now, got[0].PublishedAt)
	assert.Equal(t, 100000, *got[0].SalaryMin)
}

func TestRequesterGetJSON(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		assert.Equal(t, "go", r.URL.Query().Get("q"))

		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		defer gz.Close()
		_, _ = gz.Write([]byte(`{"name":"ok"}`))
	}))
	defer srv.Close()

	r := NewRequester(zap.NewNop(), "test-agent", "secret", time.Second)

	var got struct {
		Name string `json:"name"`
	}
	require.NoError(t, r.GetJSON(context.Background(), srv.URL, url.Values{"q": {"go"}}, &got))
	assert.Equal(t, "ok", got.Name)
}

func TestRequesterErrors(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/broken" {
			_, _ = w.Write([]byte(`{not json`))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	r := NewRequester(nil, "", "", 0)
	assert.Equal(t, DefaultUserAgent, r.UserAgent)
	assert.Empty(t, r.Token)

	var target map[string]any
	assert.ErrorContains(t, r.GetJSON(context.Background(), srv.URL+"/down", nil, &target), "bad status")
	assert.ErrorContains(t, r.GetJSON(context.Background(), srv.URL+"/broken", nil, &target), "decoding response")
}

package search

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/vacancy-bot/internal/filter"
	"github.com/spigell/vacancy-bot/internal/filtering"
	"github.com/spigell/vacancy-bot/internal/posting"
)

type staticFilters map[int64]*filter.Filter

func (s staticFilters) Get(chatID int64) *filter.Filter {
	if f, ok := s[chatID]; ok {
		return f.Clone()
	}
	return filter.New(chatID)
}

type staticAggregator struct {
	postings []posting.Posting
	got      *filter.Filter
}

func (a *staticAggregator) Search(_ context.Context, f *filter.Filter) []posting.Posting {
	a.got = f
	return a.postings
}

func ids(postings []posting.Posting) []string {
	out := make([]string, 0, len(postings))
	for _, p := range postings {
		out = append(out, p.ID)
	}
	return out
}

func fixtures() []posting.Posting {
	base := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	return []posting.Posting{
		{ID: "hh_1", Title: "Team Lead Go", SalaryMax: posting.IntPtr(300000), PublishedAt: base.Add(-2 * time.Hour)},
		{ID: "hh_2", Title: "Team Lead Java", SalaryMax: posting.IntPtr(500000), PublishedAt: base.Add(-time.Hour)},
		{ID: "habr_1", Title: "Designer", SalaryMax: posting.IntPtr(900000), PublishedAt: base},
		{ID: "habr_2", Title: "Team Lead QA", PublishedAt: base},
	}
}

func TestSearch(t *testing.T) {
	t.Parallel()

	f := &filter.Filter{ChatID: 7}
	f.AddKeyword("team lead")

	tests := []struct {
		name  string
		order Order
		max   int
		want  []string
	}{
		{name: "by date", order: ByDate, max: 10, want: []string{"habr_2", "hh_2", "hh_1"}},
		{name: "by salary", order: BySalary, max: 10, want: []string{"hh_2", "hh_1", "habr_2"}},
		{name: "truncated", order: BySalary, max: 1, want: []string{"hh_2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			agg := &staticAggregator{postings: fixtures()}
			svc := New(zap.NewNop(), staticFilters{7: f}, agg, tt.max)

			found, err := svc.Search(context.Background(), 7, tt.order)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(found))
			assert.Equal(t, []string{"team lead"}, agg.got.Keywords)
		})
	}
}

func TestSearchInactiveFilterReturnsEverything(t *testing.T) {
	t.Parallel()

	svc := New(zap.NewNop(), staticFilters{1: {ChatID: 1}}, &staticAggregator{postings: fixtures()}, 0)

	found, err := svc.All(context.Background(), 1, ByDate)
	require.NoError(t, err)
	assert.Len(t, found, 4)
}

func TestSearchLogsAppliedFilters(t *testing.T) {
	t.Parallel()

	f := &filter.Filter{ChatID: 3, RemoteOnly: true}
	f.AddKeyword("go")

	core, logs := observer.New(zapcore.DebugLevel)
	svc := New(zap.New(core), staticFilters{3: f}, &staticAggregator{}, 5)

	_, err := svc.All(context.Background(), 3, ByDate)
	require.NoError(t, err)

	entries := logs.FilterMessage("applying filters").All()
	require.Len(t, entries, 1)

	statuses, ok := entries[0].ContextMap()["filters"].([]filtering.Status)
	require.True(t, ok)

	enabled := map[string]bool{}
	for _, st := range statuses {
		enabled[st.Name] = st.Enabled
	}
	assert.True(t, enabled["keyword"])
	assert.True(t, enabled["remote"])
	assert.False(t, enabled["salary"])
	assert.Equal(t, "go", statuses[0].Details["keywords"])
}

func TestSearchCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := New(zap.NewNop(), staticFilters{}, &staticAggregator{postings: fixtures()}, 5)
	_, err := svc.Search(ctx, 1, ByDate)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOrderString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "date", ByDate.String())
	assert.Equal(t, "salary", BySalary.String())
}

func TestDumpToTmpFile(t *testing.T) {
	t.Parallel()

	name, err := DumpToTmpFile(fixtures())
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Remove(name) })

	data, err := os.ReadFile(name)
	require.NoError(t, err)

	var got []posting.Posting
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, []string{"hh_1", "hh_2", "habr_1", "habr_2"}, ids(got))
}

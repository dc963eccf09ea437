package filtering

import (
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

func ids(postings []posting.Posting) []string {
	out := make([]string, 0, len(postings))
	for _, p := range postings {
		out = append(out, p.ID)
	}
	return out
}

func TestApplyInactiveFilterPassesThrough(t *testing.T) {
	t.Parallel()

	postings := []posting.Posting{
		{ID: "a", Title: "Recruiter", Agency: true},
		{ID: "b", Title: "Designer"},
		{ID: "c", Title: "Manager", Agency: true},
	}

	f := &filter.Filter{
		ChatID:             1,
		ExcludeAgencies:    true,
		MinExperienceYears: posting.IntPtr(6),
		Sources:            []posting.Source{posting.SourceHabr},
	}
	require.False(t, f.IsActive())

	assert.Equal(t, postings, Apply(postings, f))
	assert.Equal(t, postings, Apply(postings, nil))
}

func TestApplyTeamLeadScenario(t *testing.T) {
	t.Parallel()

	f := &filter.Filter{ChatID: 1, MinSalary: posting.IntPtr(150000), RemoteOnly: true}
	f.AddKeyword("team lead")

	postings := []posting.Posting{
		{ID: "1", Title: "Team Lead Backend", SalaryMin: posting.IntPtr(180000), Remote: true},
		{ID: "2", Title: "Team Lead Backend", SalaryMin: posting.IntPtr(100000), Remote: true},
		{ID: "3", Title: "Designer", SalaryMin: posting.IntPtr(200000), Remote: true},
	}

	assert.Equal(t, []string{"1"}, ids(Apply(postings, f)))
}

func TestSalaryIsOptimistic(t *testing.T) {
	t.Parallel()

	f := &filter.Filter{MinSalary: posting.IntPtr(100000), MaxSalary: posting.IntPtr(200000)}
	pr := salaryPredicate{}

	assert.True(t, pr.Match(posting.Posting{}, f), "unknown salary passes")
	assert.True(t, pr.Match(posting.Posting{SalaryMax: posting.IntPtr(150000)}, f))
	assert.True(t, pr.Match(posting.Posting{SalaryMin: posting.IntPtr(100000)}, f))
	assert.False(t, pr.Match(posting.Posting{SalaryMin: posting.IntPtr(90000)}, f))
	assert.False(t, pr.Match(posting.Posting{SalaryMax: posting.IntPtr(250000)}, f))
}

func TestCityIsBidirectional(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		filterCity string
		city       string
		want       bool
	}{
		{name: "posting city is wider", filterCity: "Москва", city: "Москва и МО", want: true},
		{name: "filter city is wider", filterCity: "Москва и МО", city: "Москва", want: true},
		{name: "case insensitive", filterCity: "казань", city: "КАЗАНЬ", want: true},
		{name: "different city", filterCity: "Казань", city: "Москва", want: false},
		{name: "posting without city", filterCity: "Казань", city: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := &filter.Filter{City: tt.filterCity}
			assert.Equal(t, tt.want, cityPredicate{}.Match(posting.Posting{City: tt.city}, f))
		})
	}
}

func TestKeywordMatchesTitleAndCompany(t *testing.T) {
	t.Parallel()

	f := &filter.Filter{}
	f.AddKeyword("яндекс")
	f.AddKeyword("golang")

	pr := keywordPredicate{}
	assert.True(t, pr.Match(posting.Posting{Title: "Senior GoLang developer"}, f))
	assert.True(t, pr.Match(posting.Posting{Title: "Backend", Company: "Яндекс"}, f))
	assert.False(t, pr.Match(posting.Posting{Title: "Backend", Company: "Ozon"}, f))
	assert.True(t, pr.Match(posting.Posting{Title: "anything"}, &filter.Filter{}))
}

func TestExperienceAndAgencyWhenActive(t *testing.T) {
	t.Parallel()

	f := &filter.Filter{RemoteOnly: true, MinExperienceYears: posting.IntPtr(3), ExcludeAgencies: true}

	postings := []posting.Posting{
		{ID: "senior", Remote: true, ExperienceYears: posting.IntPtr(6)},
		{ID: "junior", Remote: true, ExperienceYears: posting.IntPtr(1)},
		{ID: "unknown", Remote: true},
		{ID: "agency", Remote: true, ExperienceYears: posting.IntPtr(3), Agency: true},
		{ID: "office", ExperienceYears: posting.IntPtr(3)},
		{ID: "middle", Remote: true, ExperienceYears: posting.IntPtr(3)},
	}

	assert.Equal(t, []string{"senior", "middle"}, ids(Apply(postings, f)))
}

func TestRunLogsSteps(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.InfoLevel)
	log := zap.New(core)

	f := &filter.Filter{RemoteOnly: true}
	f.AddKeyword("go")

	postings := []posting.Posting{
		{ID: "1", Title: "Go developer", Remote: true},
		{ID: "2", Title: "Go developer"},
		{ID: "3", Title: "Java developer", Remote: true},
	}

	left := Run(log, Default(), postings, f)
	assert.Equal(t, []string{"1"}, ids(left))

	entries := logs.FilterMessage("filter step").All()
	require.Len(t, entries, 2)

	first := entries[0].ContextMap()
	assert.Equal(t, "keyword", first["name"])
	assert.EqualValues(t, 3, first["initial"])
	assert.EqualValues(t, 1, first["dropped"])
	assert.EqualValues(t, 2, first["left"])

	second := entries[1].ContextMap()
	assert.Equal(t, "remote", second["name"])
	assert.EqualValues(t, 1, second["left"])
}

func TestDescribe(t *testing.T) {
	t.Parallel()

	f := &filter.Filter{City: "Казань", MinSalary: posting.IntPtr(1000)}
	statuses := Describe(Default(), f)
	require.Len(t, statuses, 6)

	enabled := map[string]bool{}
	for _, s := range statuses {
		enabled[s.Name] = s.Enabled
	}
	assert.Equal(t, map[string]bool{
		"keyword":    false,
		"salary":     true,
		"city":       true,
		"remote":     false,
		"experience": false,
		"agency":     false,
	}, enabled)
	assert.Equal(t, "1000", statuses[1].Details["min"])

	for _, s := range Describe(Default(), &filter.Filter{ExcludeAgencies: true}) {
		assert.False(t, s.Enabled, s.Name)
	}
}

func TestSortByDate(t *testing.T) {
	t.Parallel()

	t1 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)

	postings := []posting.Posting{
		{ID: "t2", PublishedAt: t2},
		{ID: "unset"},
		{ID: "t1", PublishedAt: t1},
	}

	assert.Equal(t, []string{"t2", "t1", "unset"}, ids(SortByDate(postings)))
	assert.Equal(t, []string{"t2", "unset", "t1"}, ids(postings), "input is not modified")
}

func TestSortBySalary(t *testing.T) {
	t.Parallel()

	postings := []posting.Posting{
		{ID: "unknown-a"},
		{ID: "low", SalaryMax: posting.IntPtr(100)},
		{ID: "high", SalaryMax: posting.IntPtr(300)},
		{ID: "unknown-b", SalaryMin: posting.IntPtr(500)},
	}

	assert.Equal(t, []string{"high", "low", "unknown-a", "unknown-b"}, ids(SortBySalary(postings)))
}

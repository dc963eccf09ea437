package posting

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSalary(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		wantMin *int
		wantMax *int
	}{
		{name: "range with thousands grouping", input: "от 100 000 до 150 000 руб", wantMin: IntPtr(100000), wantMax: IntPtr(150000)},
		{name: "only from", input: "от 100000 руб", wantMin: IntPtr(100000)},
		{name: "only to", input: "до 80000 руб", wantMax: IntPtr(80000)},
		{name: "not specified", input: "Не указана"},
		{name: "empty", input: ""},
		{name: "single number without marker", input: "120000 RUB"},
		{name: "dash separated range", input: "150000 - 250000 RUB", wantMin: IntPtr(150000), wantMax: IntPtr(250000)},
		{name: "non-breaking space grouping", input: "от 90\u00a0000 ₽", wantMin: IntPtr(90000)},
		{name: "capitalised marker", input: "От 70 000", wantMin: IntPtr(70000)},
		{name: "overflow is ignored", input: "от 99999999999999999999999 руб"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			gotMin, gotMax := ParseSalary(tt.input)
			assert.Equal(t, tt.wantMin, gotMin)
			assert.Equal(t, tt.wantMax, gotMax)
		})
	}
}

func TestParseExperience(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input  string
		want   int
		wantOK bool
	}{
		{input: "3-6 лет", want: 3, wantOK: true},
		{input: "без опыта", want: 0, wantOK: true},
		{input: "Без опыта", want: 0, wantOK: true},
		{input: "более 6 лет", want: 6, wantOK: true},
		{input: "1-3 года", want: 1, wantOK: true},
		{input: "От 1 года до 3 лет"},
		{input: ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			got, ok := ParseExperience(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestIsAgency(t *testing.T) {
	t.Parallel()

	assert.True(t, IsAgency("Кадровое агентство Старт", ""))
	assert.True(t, IsAgency("Best Recruitment LLC", ""))
	assert.True(t, IsAgency("HR Partners", ""))
	assert.True(t, IsAgency("Яндекс", "agency"))
	assert.False(t, IsAgency("Яндекс", "company"))
	assert.False(t, IsAgency("", ""))
}

func TestIsRemote(t *testing.T) {
	t.Parallel()

	assert.True(t, IsRemote("Удаленная работа"))
	assert.True(t, IsRemote("удалённо"))
	assert.False(t, IsRemote("Полный день"))
	assert.False(t, IsRemote(""))
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	p := Normalize(Record{
		ID:             "42",
		Title:          " Team Lead Backend ",
		Company:        "Кадровое агентство Лидер",
		SalaryText:     "от 200 000 до 300 000 руб",
		ExperienceText: "3-6 лет",
		City:           "Москва",
		Schedule:       "Удаленная работа",
		URL:            "https://hh.ru/vacancy/42",
		PublishedAt:    "2025-02-27T10:30:00+0300",
	}, SourceHH, now)

	assert.Equal(t, "hh_42", p.ID)
	assert.Equal(t, "Team Lead Backend", p.Title)
	require.NotNil(t, p.SalaryMin)
	require.NotNil(t, p.SalaryMax)
	assert.Equal(t, 200000, *p.SalaryMin)
	assert.Equal(t, 300000, *p.SalaryMax)
	assert.Equal(t, DefaultCurrency, p.SalaryCurrency)
	require.NotNil(t, p.ExperienceYears)
	assert.Equal(t, 3, *p.ExperienceYears)
	assert.True(t, p.Remote)
	assert.True(t, p.Agency)
	assert.Equal(t, SourceHH, p.Source)
	assert.Equal(t, time.Date(2025, 2, 27, 7, 30, 0, 0, time.UTC), p.PublishedAt.UTC())
}

func TestNormalizePrefersStructuredFields(t *testing.T) {
	t.Parallel()

	p := Normalize(Record{
		ID:             "7",
		SalaryText:     "от 1 до 2",
		SalaryFrom:     IntPtr(150000),
		Currency:       "usd",
		ExperienceID:   "moreThan6",
		ExperienceText: "без опыта",
	}, SourceHabr, time.Now())

	require.NotNil(t, p.SalaryMin)
	assert.Equal(t, 150000, *p.SalaryMin)
	assert.Nil(t, p.SalaryMax)
	assert.Equal(t, "USD", p.SalaryCurrency)
	require.NotNil(t, p.ExperienceYears)
	assert.Equal(t, 6, *p.ExperienceYears)
}

func TestNormalizeCurrencyAliases(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "RUB", Normalize(Record{ID: "1", Currency: "RUR"}, SourceHH, time.Now()).SalaryCurrency)
	assert.Equal(t, "RUB", Normalize(Record{ID: "2", Currency: "rur"}, SourceHabr, time.Now()).SalaryCurrency)
	assert.Equal(t, "EUR", Normalize(Record{ID: "3", Currency: "EUR"}, SourceHabr, time.Now()).SalaryCurrency)
}

func TestNormalizeFallsBackToNowForBadDates(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, raw := range []string{"", "yesterday", "31.12.2024"} {
		p := Normalize(Record{ID: "1", PublishedAt: raw}, SourceGetMatch, now)
		assert.Equal(t, now, p.PublishedAt, "input %q", raw)
	}
}

func TestDeriveIsIdempotent(t *testing.T) {
	t.Parallel()

	records := []Record{
		{ID: "1", SalaryText: "от 100 000 до 150 000 руб", ExperienceText: "1-3 года"},
		{ID: "2", SalaryText: "от 100000 руб"},
		{ID: "3", SalaryText: "до 80000 руб", ExperienceText: "непонятно"},
		{ID: "4", SalaryText: "Не указана"},
		{ID: "5", SalaryText: "120000"},
	}

	for _, rec := range records {
		once := Normalize(rec, SourceHH, time.Unix(0, 0))
		twice := once.Derive()
		assert.Equal(t, once, twice, "record %s", rec.ID)
	}
}

func TestParseSource(t *testing.T) {
	t.Parallel()

	src, err := ParseSource(" HH ")
	require.NoError(t, err)
	assert.Equal(t, SourceHH, src)

	_, err = ParseSource("superjob")
	assert.Error(t, err)
}

func TestFormat(t *testing.T) {
	t.Parallel()

	msg := Format(Posting{
		Title:     "Go <Developer>",
		Company:   "Acme & Co",
		SalaryMin: IntPtr(100000),
		City:      "Казань",
		Remote:    true,
		Agency:    true,
		URL:       "https://example.com/1?a=1&b=2",
		Source:    SourceGetMatch,
	})

	assert.True(t, strings.HasPrefix(msg, "🤝 <b>Go &lt;Developer&gt;</b>\n"))
	assert.Contains(t, msg, "🏢 <b>Компания:</b> Acme &amp; Co\n")
	assert.Contains(t, msg, "🤝 <b>Агентство:</b> Да\n")
	assert.Contains(t, msg, "💰 <b>Зарплата:</b> от 100000 RUB\n")
	assert.Contains(t, msg, "📊 <b>Опыт:</b> Не указан\n")
	assert.Contains(t, msg, "📍 <b>Город:</b> Казань (удаленно)\n")
	assert.Contains(t, msg, "🔗 <b>Ссылка:</b> https://example.com/1?a=1&amp;b=2\n")
	assert.Contains(t, msg, "📅 <b>Источник:</b> GetMatch\n")
}

func TestSourceTablesDefault(t *testing.T) {
	t.Parallel()

	unknown := Source("superjob")
	assert.Equal(t, "📌", unknown.Emoji())
	assert.Equal(t, "superjob", unknown.DisplayName())
	assert.Equal(t, "Хабр Карьера", SourceHabr.DisplayName())
}

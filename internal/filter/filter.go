// Package filter defines the per-chat search criteria.
package filter

import (
	"html"
	"slices"
	"strconv"
	"strings"

	"github.com/spigell/vacancy-bot/internal/posting"
	"github.com/spigell/vacancy-bot/internal/utils"
)

// DefaultKeywords seed every new filter.
var DefaultKeywords = []string{"менеджер", "product manager", "team lead"}

// Filter is a user's saved search criteria. JSON field names follow the
// persisted user_filters.json layout.
type Filter struct {
	ChatID             int64            `json:"chatId"`
	MinSalary          *int             `json:"minSalary,omitempty"`
	MaxSalary          *int             `json:"maxSalary,omitempty"`
	SalaryCurrency     string           `json:"salaryCurrency,omitempty"`
	City               string           `json:"city,omitempty"`
	RemoteOnly         bool             `json:"remoteOnly"`
	Keywords           []string         `json:"keywords"`
	Sources            []posting.Source `json:"sources"`
	MinExperienceYears *int             `json:"minExperienceYears,omitempty"`
	ExcludeAgencies    bool             `json:"excludeAgencies"`
	Subscribed         bool             `json:"subscribed"`
}

// New returns the default filter for a chat.
func New(chatID int64) *Filter {
	f := &Filter{
		ChatID:         chatID,
		SalaryCurrency: posting.DefaultCurrency,
		Sources:        slices.Clone(posting.AllSources),
	}
	for _, kw := range DefaultKeywords {
		f.AddKeyword(kw)
	}
	return f
}

func (f *Filter) HasSalaryFilter() bool {
	return f.MinSalary != nil || f.MaxSalary != nil
}

func (f *Filter) HasCityFilter() bool {
	return f.City != ""
}

// IsActive reports whether the filter narrows results at all. Experience,
// agency and source settings alone do not make a filter active.
func (f *Filter) IsActive() bool {
	return f.HasSalaryFilter() || f.HasCityFilter() || f.RemoteOnly || len(f.Keywords) > 0
}

// Currency returns the salary currency, falling back to the default one.
func (f *Filter) Currency() string {
	if f.SalaryCurrency == "" {
		return posting.DefaultCurrency
	}
	return f.SalaryCurrency
}

// AddKeyword adds a lowercase keyword to the set. It reports whether the set changed.
func (f *Filter) AddKeyword(keyword string) bool {
	keyword = utils.Lower(strings.TrimSpace(keyword))
	if keyword == "" {
		return false
	}

	idx, found := slices.BinarySearch(f.Keywords, keyword)
	if found {
		return false
	}
	f.Keywords = slices.Insert(f.Keywords, idx, keyword)
	return true
}

// RemoveKeyword drops a keyword from the set. It reports whether the set changed.
func (f *Filter) RemoveKeyword(keyword string) bool {
	keyword = utils.Lower(strings.TrimSpace(keyword))
	idx, found := slices.BinarySearch(f.Keywords, keyword)
	if !found {
		return false
	}
	f.Keywords = slices.Delete(f.Keywords, idx, idx+1)
	return true
}

// HasSource reports whether the source is enabled.
func (f *Filter) HasSource(src posting.Source) bool {
	return slices.Contains(f.Sources, src)
}

// SetSources replaces the enabled sources, keeping the canonical order and
// dropping duplicates and unknown values.
func (f *Filter) SetSources(sources []posting.Source) {
	enabled := make([]posting.Source, 0, len(posting.AllSources))
	for _, src := range posting.AllSources {
		if slices.Contains(sources, src) {
			enabled = append(enabled, src)
		}
	}
	f.Sources = enabled
}

// Normalize restores invariants of a filter decoded from storage.
func (f *Filter) Normalize() {
	keywords := f.Keywords
	f.Keywords = nil
	for _, kw := range keywords {
		f.AddKeyword(kw)
	}
	f.SetSources(f.Sources)
	if f.SalaryCurrency == "" {
		f.SalaryCurrency = posting.DefaultCurrency
	}
}

// Clone returns a deep copy of the filter.
func (f *Filter) Clone() *Filter {
	if f == nil {
		return nil
	}

	c := *f
	c.MinSalary = cloneInt(f.MinSalary)
	c.MaxSalary = cloneInt(f.MaxSalary)
	c.MinExperienceYears = cloneInt(f.MinExperienceYears)
	c.Keywords = slices.Clone(f.Keywords)
	c.Sources = slices.Clone(f.Sources)
	return &c
}

// Description renders the active criteria for the chat as Telegram HTML.
func (f *Filter) Description() string {
	var sb strings.Builder
	sb.WriteString("🔍 Текущие фильтры:\n")

	if len(f.Keywords) > 0 {
		sb.WriteString("• Ключевые слова: " + html.EscapeString(strings.Join(f.Keywords, ", ")) + "\n")
	}

	if f.HasSalaryFilter() {
		sb.WriteString("• Зарплата: ")
		if f.MinSalary != nil {
			sb.WriteString("от " + strconv.Itoa(*f.MinSalary))
		}
		if f.MinSalary != nil && f.MaxSalary != nil {
			sb.WriteString(" ")
		}
		if f.MaxSalary != nil {
			sb.WriteString("до " + strconv.Itoa(*f.MaxSalary))
		}
		sb.WriteString(" " + f.Currency() + "\n")
	}

	if f.HasCityFilter() {
		sb.WriteString("• Город: " + html.EscapeString(f.City) + "\n")
	}

	if f.RemoteOnly {
		sb.WriteString("• Только удаленная работа\n")
	}

	if f.ExcludeAgencies {
		sb.WriteString("• Без кадровых агентств\n")
	}

	if f.MinExperienceYears != nil {
		sb.WriteString("• Опыт: от " + strconv.Itoa(*f.MinExperienceYears) + " лет\n")
	}

	if len(f.Sources) != len(posting.AllSources) {
		names := make([]string, 0, len(f.Sources))
		for _, src := range f.Sources {
			names = append(names, src.DisplayName())
		}
		if len(names) == 0 {
			names = append(names, "нет")
		}
		sb.WriteString("• Источники: " + strings.Join(names, ", ") + "\n")
	}

	if f.Subscribed {
		sb.WriteString("• Подписка на новые вакансии включена\n")
	}

	return sb.String()
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

package filtering

import (
	"strconv"
	"strings"

	"github.com/spigell/vacancy-bot/internal/filter"
	"github.com/spigell/vacancy-bot/internal/posting"
	"github.com/spigell/vacancy-bot/internal/utils"
)

type keywordPredicate struct{}

func (keywordPredicate) Name() string { return "keyword" }

func (keywordPredicate) Configured(f *filter.Filter) bool { return len(f.Keywords) > 0 }

// Match succeeds when any keyword occurs in the title or the company name.
func (keywordPredicate) Match(p posting.Posting, f *filter.Filter) bool {
	if len(f.Keywords) == 0 {
		return true
	}

	haystack := utils.Lower(p.Title + " " + p.Company)
	for _, kw := range f.Keywords {
		if strings.Contains(haystack, utils.Lower(kw)) {
			return true
		}
	}
	return false
}

func (pr keywordPredicate) Status(f *filter.Filter) Status {
	return Status{
		Name:    pr.Name(),
		Enabled: pr.Configured(f),
		Details: map[string]string{"keywords": strings.Join(f.Keywords, ",")},
	}
}

type salaryPredicate struct{}

func (salaryPredicate) Name() string { return "salary" }

func (salaryPredicate) Configured(f *filter.Filter) bool { return f.HasSalaryFilter() }

// Match is optimistic: an unknown bound on the posting never fails it.
func (salaryPredicate) Match(p posting.Posting, f *filter.Filter) bool {
	if f.MinSalary != nil && p.SalaryMin != nil && *p.SalaryMin < *f.MinSalary {
		return false
	}
	if f.MaxSalary != nil && p.SalaryMax != nil && *p.SalaryMax > *f.MaxSalary {
		return false
	}
	return true
}

func (pr salaryPredicate) Status(f *filter.Filter) Status {
	details := map[string]string{"currency": f.Currency()}
	if f.MinSalary != nil {
		details["min"] = strconv.Itoa(*f.MinSalary)
	}
	if f.MaxSalary != nil {
		details["max"] = strconv.Itoa(*f.MaxSalary)
	}
	return Status{Name: pr.Name(), Enabled: pr.Configured(f), Details: details}
}

type cityPredicate struct{}

func (cityPredicate) Name() string { return "city" }

func (cityPredicate) Configured(f *filter.Filter) bool { return f.HasCityFilter() }

// Match accepts either city name containing the other, so "Санкт-Петербург"
// and "Петербург" match in both directions.
func (cityPredicate) Match(p posting.Posting, f *filter.Filter) bool {
	if !f.HasCityFilter() {
		return true
	}
	if p.City == "" {
		return false
	}

	want := utils.Lower(f.City)
	got := utils.Lower(p.City)
	return strings.Contains(got, want) || strings.Contains(want, got)
}

func (pr cityPredicate) Status(f *filter.Filter) Status {
	return Status{Name: pr.Name(), Enabled: pr.Configured(f), Details: map[string]string{"city": f.City}}
}

type remotePredicate struct{}

func (remotePredicate) Name() string { return "remote" }

func (remotePredicate) Configured(f *filter.Filter) bool { return f.RemoteOnly }

func (remotePredicate) Match(p posting.Posting, f *filter.Filter) bool {
	return !f.RemoteOnly || p.Remote
}

func (pr remotePredicate) Status(f *filter.Filter) Status {
	return Status{Name: pr.Name(), Enabled: pr.Configured(f)}
}

type experiencePredicate struct{}

func (experiencePredicate) Name() string { return "experience" }

func (experiencePredicate) Configured(f *filter.Filter) bool { return f.MinExperienceYears != nil }

// Match fails postings with unknown experience once a minimum is set.
func (experiencePredicate) Match(p posting.Posting, f *filter.Filter) bool {
	if f.MinExperienceYears == nil {
		return true
	}
	if p.ExperienceYears == nil {
		return false
	}
	return *p.ExperienceYears >= *f.MinExperienceYears
}

func (pr experiencePredicate) Status(f *filter.Filter) Status {
	details := map[string]string{}
	if f.MinExperienceYears != nil {
		details["min_years"] = strconv.Itoa(*f.MinExperienceYears)
	}
	return Status{Name: pr.Name(), Enabled: pr.Configured(f), Details: details}
}

type agencyPredicate struct{}

func (agencyPredicate) Name() string { return "agency" }

func (agencyPredicate) Configured(f *filter.Filter) bool { return f.ExcludeAgencies }

func (agencyPredicate) Match(p posting.Posting, f *filter.Filter) bool {
	return !f.ExcludeAgencies || !p.Agency
}

func (pr agencyPredicate) Status(f *filter.Filter) Status {
	return Status{Name: pr.Name(), Enabled: pr.Configured(f)}
}

package posting

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/spigell/vacancy-bot/internal/utils"
)

var (
	salaryNoise  = regexp.MustCompile(`[^\d\s-]+`)
	salaryNumber = regexp.MustCompile(`\d{1,3}(?: \d{3})+\b|\d+`)
)

// experienceRules are checked in order, the first match wins.
var experienceRules = []struct {
	substr string
	years  int
}{
	{"без опыта", 0},
	{"1-3", 1},
	{"3-6", 3},
	{"более 6", 6},
}

// experienceIDs maps structured hh.ru experience identifiers.
var experienceIDs = map[string]int{
	"noExperience": 0,
	"between1And3": 1,
	"between3And6": 3,
	"moreThan6":    6,
}

// currencyAliases maps legacy codes some boards still report.
var currencyAliases = map[string]string{
	"RUR": "RUB",
}

var agencyMarkers = []string{"агентство", "кадровое", "recruitment", "hr", "персонал"}

const agencyEmployerType = "agency"

var publishedLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05-0700",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Normalize converts a raw record into a Posting. It never fails: fields that
// cannot be parsed are left unknown. now is used when the publication date is
// missing or unparseable.
func Normalize(rec Record, src Source, now time.Time) Posting {
	p := Posting{
		ID:             string(src) + "_" + rec.ID,
		Title:          strings.TrimSpace(rec.Title),
		Company:        strings.TrimSpace(rec.Company),
		SalaryRaw:      strings.TrimSpace(rec.SalaryText),
		SalaryMin:      copyInt(rec.SalaryFrom),
		SalaryMax:      copyInt(rec.SalaryTo),
		SalaryCurrency: strings.ToUpper(strings.TrimSpace(rec.Currency)),
		ExperienceRaw:  strings.TrimSpace(rec.ExperienceText),
		City:           strings.TrimSpace(rec.City),
		Remote:         rec.Remote || IsRemote(rec.Schedule) || IsRemote(rec.Address),
		Agency:         IsAgency(rec.Company, rec.EmployerType),
		URL:            rec.URL,
		Source:         src,
	}

	if alias, ok := currencyAliases[p.SalaryCurrency]; ok {
		p.SalaryCurrency = alias
	}
	if p.SalaryCurrency == "" {
		p.SalaryCurrency = DefaultCurrency
	}

	if years, ok := experienceIDs[rec.ExperienceID]; ok {
		p.ExperienceYears = IntPtr(years)
	}

	if published, ok := ParsePublishedAt(rec.PublishedAt); ok {
		p.PublishedAt = published
	} else {
		p.PublishedAt = now
	}

	return p.Derive()
}

// Derive fills salary bounds and experience years from the raw text fields when
// they are still unknown. Calling it on an already derived posting is a no-op.
func (p Posting) Derive() Posting {
	if p.SalaryMin == nil && p.SalaryMax == nil {
		p.SalaryMin, p.SalaryMax = ParseSalary(p.SalaryRaw)
	}

	if p.ExperienceYears == nil {
		if years, ok := ParseExperience(p.ExperienceRaw); ok {
			p.ExperienceYears = IntPtr(years)
		}
	}

	return p
}

// ParseSalary extracts salary bounds from free text such as
// "от 100 000 до 150 000 руб". With a single number the bound is chosen by
// "от" (min) or "до" (max); without either marker both stay unknown.
func ParseSalary(text string) (minSalary, maxSalary *int) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	cleaned := salaryNoise.ReplaceAllString(text, " ")
	matches := salaryNumber.FindAllString(cleaned, -1)

	numbers := make([]int, 0, len(matches))
	for _, m := range matches {
		n, err := strconv.Atoi(strings.ReplaceAll(m, " ", ""))
		if err != nil {
			return nil, nil
		}
		numbers = append(numbers, n)
	}

	switch {
	case len(numbers) >= 2:
		return IntPtr(numbers[0]), IntPtr(numbers[1])
	case len(numbers) == 1:
		lower := utils.Lower(text)
		if strings.Contains(lower, "от") {
			return IntPtr(numbers[0]), nil
		}
		if strings.Contains(lower, "до") {
			return nil, IntPtr(numbers[0])
		}
	}

	return nil, nil
}

// ParseExperience maps an experience description to the minimum years it implies.
func ParseExperience(text string) (int, bool) {
	if text == "" {
		return 0, false
	}

	lower := utils.Lower(text)
	for _, rule := range experienceRules {
		if strings.Contains(lower, rule.substr) {
			return rule.years, true
		}
	}

	return 0, false
}

// IsAgency reports whether the employer looks like a staffing intermediary.
func IsAgency(company, employerType string) bool {
	if employerType == agencyEmployerType {
		return true
	}

	lower := utils.Lower(company)
	for _, marker := range agencyMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}

	return false
}

// IsRemote reports whether a schedule or address text describes remote work.
func IsRemote(text string) bool {
	if text == "" {
		return false
	}
	lower := strings.ReplaceAll(utils.Lower(text), "ё", "е")
	return strings.Contains(lower, "удален")
}

// ParsePublishedAt parses the publication timestamps used by the supported sources.
func ParsePublishedAt(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range publishedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

// SalaryText renders structured salary bounds the way they are shown to users.
func SalaryText(from, to *int, currency string) string {
	if currency == "" {
		currency = DefaultCurrency
	}

	switch {
	case from != nil && to != nil:
		return strconv.Itoa(*from) + " - " + strconv.Itoa(*to) + " " + currency
	case from != nil:
		return "от " + strconv.Itoa(*from) + " " + currency
	case to != nil:
		return "до " + strconv.Itoa(*to) + " " + currency
	default:
		return ""
	}
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	return IntPtr(*v)
}

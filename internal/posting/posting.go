// Package posting holds the canonical job posting model and the normalizer
// that turns raw source records into it.
package posting

import (
	"fmt"
	"strings"
	"time"

	"github.com/spigell/vacancy-bot/internal/utils"
)

// Source identifies an upstream job board.
type Source string

const (
	SourceHH       Source = "hh"
	SourceHabr     Source = "habr"
	SourceLinkedIn Source = "linkedin"
	SourceGetMatch Source = "getmatch"
)

// DefaultCurrency is used when a source does not report one.
const DefaultCurrency = "RUB"

// AllSources lists every supported source in display order.
var AllSources = []Source{SourceHH, SourceHabr, SourceLinkedIn, SourceGetMatch}

// ParseSource resolves a source tag, case-insensitively.
func ParseSource(s string) (Source, error) {
	src := Source(utils.Lower(strings.TrimSpace(s)))
	for _, known := range AllSources {
		if src == known {
			return src, nil
		}
	}
	return "", fmt.Errorf("unknown source %q", s)
}

// Posting is a normalized job listing. Empty strings mean the value is unknown.
type Posting struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Company         string    `json:"company,omitempty"`
	SalaryRaw       string    `json:"salary_raw,omitempty"`
	SalaryMin       *int      `json:"salary_min,omitempty"`
	SalaryMax       *int      `json:"salary_max,omitempty"`
	SalaryCurrency  string    `json:"salary_currency"`
	ExperienceRaw   string    `json:"experience_raw,omitempty"`
	ExperienceYears *int      `json:"experience_years,omitempty"`
	City            string    `json:"city,omitempty"`
	Remote          bool      `json:"remote"`
	Agency          bool      `json:"agency"`
	URL             string    `json:"url"`
	Source          Source    `json:"source"`
	PublishedAt     time.Time `json:"published_at"`
}

// Record is a raw posting as returned by a source client. Structured fields
// are optional; the normalizer falls back to the free-text ones.
type Record struct {
	// ID is the source-local identifier, without the source prefix.
	ID             string
	Title          string
	Company        string
	EmployerType   string
	SalaryText     string
	SalaryFrom     *int
	SalaryTo       *int
	Currency       string
	ExperienceID   string
	ExperienceText string
	City           string
	Schedule       string
	Address        string
	Remote         bool
	URL            string
	PublishedAt    string
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int {
	return &v
}

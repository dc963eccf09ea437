package headhunter

import (
	"github.com/spigell/vacancy-bot/internal/posting"
)

type Vacancies struct {
	Items []*Vacancy
}

type Vacancy struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
	Area struct {
		ID   string `json:"id,omitempty"`
		Name string `json:"name,omitempty"`
	} `json:"area,omitempty"`
	Salary *struct {
		From     *int   `json:"from,omitempty"`
		To       *int   `json:"to,omitempty"`
		Currency string `json:"currency,omitempty"`
		Gross    bool   `json:"gross,omitempty"`
	} `json:"salary,omitempty"`
	Experience struct {
		ID   string `json:"id,omitempty"`
		Name string `json:"name,omitempty"`
	} `json:"experience,omitempty"`
	Schedule struct {
		ID   string `json:"id,omitempty"`
		Name string `json:"name,omitempty"`
	} `json:"schedule,omitempty"`
	Address *struct {
		Raw string `json:"raw,omitempty"`
	} `json:"address,omitempty"`
	Employer struct {
		ID      string `json:"id,omitempty"`
		Name    string `json:"name,omitempty"`
		Type    string `json:"type,omitempty"`
		Trusted bool   `json:"trusted,omitempty"`
	} `json:"employer,omitempty"`
	AlternateURL string `json:"alternate_url,omitempty"`
	Archived     bool   `json:"archived,omitempty"`
	PublishedAt  string `json:"published_at,omitempty"`
}

func (v *Vacancies) Len() int {
	return len(v.Items)
}

// ToRecord converts the vacancy into a raw posting record.
func (va *Vacancy) ToRecord() posting.Record {
	rec := posting.Record{
		ID:             va.ID,
		Title:          va.Name,
		Company:        va.Employer.Name,
		EmployerType:   va.Employer.Type,
		ExperienceID:   va.Experience.ID,
		ExperienceText: va.Experience.Name,
		City:           va.Area.Name,
		Schedule:       va.Schedule.Name,
		Remote:         va.Schedule.ID == remoteSchedule,
		URL:            siteURL + va.ID,
		PublishedAt:    va.PublishedAt,
	}

	if va.Salary != nil {
		rec.SalaryFrom = va.Salary.From
		rec.SalaryTo = va.Salary.To
		rec.Currency = va.Salary.Currency
		rec.SalaryText = posting.SalaryText(va.Salary.From, va.Salary.To, va.Salary.Currency)
	}

	if va.Address != nil {
		rec.Address = va.Address.Raw
	}

	return rec
}

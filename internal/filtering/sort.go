package filtering

import (
	"cmp"
	"slices"

	"github.com/spigell/vacancy-bot/internal/posting"
)

// SortByDate returns a copy sorted by publication time, newest first.
// Postings without a timestamp go last.
func SortByDate(postings []posting.Posting) []posting.Posting {
	sorted := slices.Clone(postings)
	slices.SortStableFunc(sorted, func(a, b posting.Posting) int {
		switch {
		case a.PublishedAt.IsZero() && b.PublishedAt.IsZero():
			return 0
		case a.PublishedAt.IsZero():
			return 1
		case b.PublishedAt.IsZero():
			return -1
		}
		return b.PublishedAt.Compare(a.PublishedAt)
	})
	return sorted
}

// SortBySalary returns a copy sorted by the upper salary bound, highest first.
// An unknown bound counts as zero.
func SortBySalary(postings []posting.Posting) []posting.Posting {
	sorted := slices.Clone(postings)
	slices.SortStableFunc(sorted, func(a, b posting.Posting) int {
		return cmp.Compare(salaryMax(b), salaryMax(a))
	})
	return sorted
}

func salaryMax(p posting.Posting) int {
	if p.SalaryMax == nil {
		return 0
	}
	return *p.SalaryMax
}

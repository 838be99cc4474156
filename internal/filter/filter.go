// Package filter decides which postings qualify for notification. Predicates
// are independent conjunctions evaluated in cheap-to-expensive order; a
// predicate whose threshold is unset is skipped, and a value the parsers
// could not read never rejects on its own.
package filter

import (
	"strings"
	"time"

	"github.com/frelancia/frelwatch/internal/config"
	"github.com/frelancia/frelwatch/internal/models"
	"github.com/frelancia/frelwatch/internal/parse"
)

// Passes reports whether job clears every active predicate in settings.
// now anchors the client-age comparison.
func Passes(job models.Job, settings config.Settings, now time.Time) bool {
	if settings.MinBudget > 0 {
		ceiling := parse.BudgetCeiling(job.Budget)
		if ceiling > 0 && ceiling < settings.MinBudget {
			return false
		}
	}

	if settings.MinHiringRate > 0 && job.HiringRate != "" {
		if parse.HiringRatePercent(job.HiringRate) < settings.MinHiringRate {
			return false
		}
	}

	include := Keywords(settings.KeywordsInclude)
	exclude := Keywords(settings.KeywordsExclude)
	if len(include) > 0 || len(exclude) > 0 {
		text := strings.ToLower(job.Title + " " + job.Description)
		if len(include) > 0 && !containsAny(text, include) {
			return false
		}
		if containsAny(text, exclude) {
			return false
		}
	}

	if settings.MaxDurationDays > 0 {
		days := parse.DurationDays(job.Duration)
		if days > settings.MaxDurationDays {
			return false
		}
	}

	if settings.MinClientAgeDays > 0 {
		age := parse.ClientAgeDays(job.RegistrationDate, now)
		if age >= 0 && age < settings.MinClientAgeDays {
			return false
		}
	}

	return true
}

// Keywords splits a comma-separated keyword list into lower-cased terms.
func Keywords(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	terms := make([]string, 0, len(parts))
	for _, part := range parts {
		term := strings.ToLower(strings.TrimSpace(part))
		if term == "" {
			continue
		}
		terms = append(terms, term)
	}
	return terms
}

func containsAny(text string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}

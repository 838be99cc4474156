// Package parse turns the marketplace's locale-formatted text fields into
// numbers the filter engine can compare. Every function tolerates absent or
// malformed input and returns a sentinel instead of an error: callers treat
// sentinels as "constraint not applicable", never as a failed filter.
package parse

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// NotYetComputed is shown for clients who have not hired anyone yet.
const NotYetComputed = "لم يحسب بعد"

// oneDay is the marketplace's textual idiom for a one-day duration.
const oneDay = "يوم واحد"

var (
	numberPattern  = regexp.MustCompile(`\d+(\.\d+)?`)
	integerPattern = regexp.MustCompile(`\d+`)
)

// BudgetCeiling extracts the largest numeric token from a budget range like
// "$1,000 - $2,500". The filter asks whether the top of the range clears the
// configured minimum. Returns 0 when no number can be read.
func BudgetCeiling(text string) float64 {
	values := numbers(text)
	if len(values) == 0 {
		return 0
	}
	max := values[0]
	for _, v := range values[1:] {
		if v > max {
			max = v
		}
	}
	return max
}

// BudgetFloor extracts the smallest numeric token from a budget range. Used
// for the suggested bid amount, the lowest plausible acceptable offer.
func BudgetFloor(text string) float64 {
	values := numbers(text)
	if len(values) == 0 {
		return 0
	}
	min := values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
	}
	return min
}

// HiringRatePercent reads a percentage like "46.67%". The not-yet-computed
// placeholder and unreadable text both yield 0.
func HiringRatePercent(text string) float64 {
	if strings.Contains(text, NotYetComputed) {
		return 0
	}
	match := numberPattern.FindString(strings.ReplaceAll(text, ",", ""))
	if match == "" {
		return 0
	}
	value, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0
	}
	return value
}

// DurationDays reads an execution duration like "5 أيام". The textual
// one-day idiom maps to 1; anything unreadable yields 0.
func DurationDays(text string) int {
	match := integerPattern.FindString(text)
	if match != "" {
		value, err := strconv.Atoi(match)
		if err == nil {
			return value
		}
	}
	if strings.Contains(text, oneDay) {
		return 1
	}
	return 0
}

// arabicMonths maps the marketplace's month names to calendar months.
// Locale extension is a table change, not a code change.
var arabicMonths = map[string]time.Month{
	"يناير":  time.January,
	"فبراير": time.February,
	"مارس":   time.March,
	"أبريل":  time.April,
	"مايو":   time.May,
	"يونيو":  time.June,
	"يوليو":  time.July,
	"أغسطس":  time.August,
	"سبتمبر": time.September,
	"أكتوبر": time.October,
	"نوفمبر": time.November,
	"ديسمبر": time.December,
}

// ClientAgeDays parses a localized "day monthname year" registration date
// and returns how many days ago that is relative to now. Returns -1 when the
// day, month or year cannot all be read.
func ClientAgeDays(text string, now time.Time) int {
	var (
		day, year int
		month     time.Month
	)
	for _, field := range strings.Fields(text) {
		if m, ok := arabicMonths[field]; ok {
			month = m
			continue
		}
		n, err := strconv.Atoi(strings.Trim(field, "،,"))
		if err != nil {
			continue
		}
		switch {
		case n >= 1000:
			year = n
		case n >= 1 && n <= 31 && day == 0:
			day = n
		}
	}
	if day == 0 || month == 0 || year == 0 {
		return -1
	}

	registered := time.Date(year, month, day, 0, 0, 0, 0, now.Location())
	days := int(now.Sub(registered).Hours() / 24)
	if days < 0 {
		days = -days
	}
	return days
}

func numbers(text string) []float64 {
	matches := numberPattern.FindAllString(strings.ReplaceAll(text, ",", ""), -1)
	if len(matches) == 0 {
		return nil
	}
	values := make([]float64, 0, len(matches))
	for _, match := range matches {
		value, err := strconv.ParseFloat(match, 64)
		if err != nil {
			continue
		}
		values = append(values, value)
	}
	return values
}

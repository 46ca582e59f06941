package parser

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerdesk/statement-parser/internal/models"
)

var monthAbbrevs = map[string]time.Month{
	"JAN": time.January, "FEB": time.February, "MAR": time.March,
	"APR": time.April, "MAY": time.May, "JUN": time.June,
	"JUL": time.July, "AUG": time.August, "SEP": time.September,
	"OCT": time.October, "NOV": time.November, "DEC": time.December,
}

// monthFromAbbrev resolves a 3-letter month abbreviation, any case.
func monthFromAbbrev(s string) (time.Month, bool) {
	if len(s) < 3 {
		return 0, false
	}
	m, ok := monthAbbrevs[strings.ToUpper(s[:3])]
	return m, ok
}

// resolveDate combines a month/day with the statement anchor and returns
// the ISO date. Statements span a year boundary in two ways: a December
// transaction on a January statement belongs to the prior year, and a
// January transaction on a December statement to the following year.
func resolveDate(month time.Month, day int, anchor models.Period) (string, bool) {
	year := anchor.Year
	if month == time.December && anchor.Month == time.January {
		year--
	} else if month == time.January && anchor.Month == time.December {
		year++
	}
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Month() != month || t.Day() != day {
		// Normalization moved the date: the day doesn't exist in that month.
		return "", false
	}
	return t.Format("2006-01-02"), true
}

var (
	amountToken = regexp.MustCompile(`([\d,]+\.\d{2})`)
	spaceRun    = regexp.MustCompile(`\s+`)
)

// firstAmountIn extracts the first monetary token in s, or zero when none.
func firstAmountIn(s string) decimal.Decimal {
	m := amountToken.FindStringSubmatch(s)
	if m == nil {
		return decimal.Zero
	}
	a, err := models.ParseAmount(m[1])
	if err != nil {
		return decimal.Zero
	}
	return a.Decimal
}

// normalizeSpace collapses whitespace runs to single spaces and trims.
func normalizeSpace(s string) string {
	return strings.TrimSpace(spaceRun.ReplaceAllString(s, " "))
}

// containsAny reports whether the upper-cased haystack contains any needle.
func containsAny(upper string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(upper, n) {
			return true
		}
	}
	return false
}

// startsWithAny reports whether the upper-cased text begins with any prefix.
func startsWithAny(upper string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(upper, p) {
			return true
		}
	}
	return false
}

// rawMonthDay formats a month/day pair the way it appeared on the page,
// used when the anchor year produces no valid calendar date.
func rawMonthDay(mon string, day int) string {
	return fmt.Sprintf("%s%02d", strings.ToUpper(mon[:3]), day)
}

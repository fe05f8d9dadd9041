package parsers

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// timeNow is swapped out in tests to pin the unparseable-date fallback.
var timeNow = time.Now

// ParseNumber converts a currency-formatted field into a float64. Currency
// symbols, thousands separators, percent signs and whitespace are stripped,
// and accounting-style parenthesized values read as negative. Anything that
// still fails to parse yields 0 — for these exports a missing number is
// data, not an error.
func ParseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}

	s = strings.Map(func(r rune) rune {
		switch r {
		case '$', '€', '£', ',', '%', ' ', '\t':
			return -1
		}
		return r
	}, s)

	value, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	if negative {
		value = -value
	}
	return value
}

var (
	mdyPattern = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})`)
	isoPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)
)

// fallbackDateLayouts are tried in order for date shapes outside the two
// common brokerage forms.
var fallbackDateLayouts = []string{
	"January 2, 2006",
	"Jan 2, 2006",
	"2006/01/02",
	"01-02-2006",
	"2 Jan 2006",
	time.RFC1123,
}

// NormalizeDate converts a brokerage date string to canonical YYYY-MM-DD.
//
// MM/DD/YYYY is rewritten directly with zero padding — handing it to a
// general parser risks locale-dependent day/month swapping. An already-ISO
// value keeps its date prefix unchanged (trailing time components are cut).
// Other shapes go through a best-effort layout list. When every
// interpretation fails the current date is used; historical ordering built
// on a fabricated date is a known imprecision of this fallback.
func NormalizeDate(s string) string {
	s = strings.TrimSpace(s)

	if m := mdyPattern.FindStringSubmatch(s); m != nil {
		month, _ := strconv.Atoi(m[1])
		day, _ := strconv.Atoi(m[2])
		return m[3] + "-" + pad2(month) + "-" + pad2(day)
	}

	if isoPattern.MatchString(s) {
		return s[:10]
	}

	for _, layout := range fallbackDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}

	return timeNow().Format("2006-01-02")
}

func pad2(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

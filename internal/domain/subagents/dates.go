package subagents

import (
	"strconv"
	"strings"
	"time"
)

var spanishMonthAbbrev = map[string]time.Month{
	"ene": time.January, "feb": time.February, "mar": time.March, "abr": time.April,
	"may": time.May, "jun": time.June, "jul": time.July, "ago": time.August,
	"sep": time.September, "oct": time.October, "nov": time.November, "dic": time.December,
}

// ParseConduceDate reads the dates found on scanned conduce reports: "2024-05-03",
// "3-may-24", "3 mayo 2024" or "3-may" (in contextYear).
func ParseConduceDate(s string, contextYear int) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true
	}
	normalized := strings.NewReplacer(".", "-", " ", "-").Replace(strings.ToLower(s))
	parts := strings.Split(normalized, "-")

	var year int
	switch len(parts) {
	case 3:
		y, err := strconv.Atoi(parts[2])
		if err != nil {
			return time.Time{}, false
		}
		if len(parts[2]) == 2 {
			y += 2000
		}
		year = y
	case 2:
		year = contextYear
	default:
		return time.Time{}, false
	}

	day, err := strconv.Atoi(parts[0])
	if err != nil || len(parts[1]) < 3 {
		return time.Time{}, false
	}
	month, ok := spanishMonthAbbrev[parts[1][:3]]
	if !ok {
		return time.Time{}, false
	}
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || t.Month() != month {
		return time.Time{}, false
	}
	return t, true
}

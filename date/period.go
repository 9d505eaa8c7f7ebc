package date

import (
	"fmt"
	"strings"
	"time"
)

// Period is a trailing reporting window ending now.
type Period int

const (
	Day Period = iota
	Week
	Month
	Year
	All
)

func (p Period) String() string {
	switch p {
	case Day:
		return "1D"
	case Week:
		return "1W"
	case Month:
		return "1M"
	case Year:
		return "1Y"
	case All:
		return "ALL"
	default:
		panic(fmt.Sprintf("unknown period %d", p))
	}
}

// Periods lists the periods in display order.
var Periods = []Period{Day, Week, Month, Year, All}

// ParsePeriod accepts the short tokens ("1D", "1W", "1M", "1Y", "ALL") and
// their long names.
func ParsePeriod(p string) (Period, error) {
	switch strings.ToUpper(strings.TrimSpace(p)) {
	case "1D", "DAY", "DAILY":
		return Day, nil
	case "1W", "WEEK", "WEEKLY":
		return Week, nil
	case "1M", "MONTH", "MONTHLY":
		return Month, nil
	case "1Y", "YEAR", "YEARLY":
		return Year, nil
	case "ALL", "":
		return All, nil
	default:
		return All, fmt.Errorf("unknown period %q", p)
	}
}

// Since returns the lower bound of the window ending at now, computed by
// calendar subtraction. Day starts at midnight of now's day; All has no bound.
func (p Period) Since(now time.Time) (since time.Time, bounded bool) {
	switch p {
	case Day:
		y, m, d := now.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, now.Location()), true
	case Week:
		return now.AddDate(0, 0, -7), true
	case Month:
		return now.AddDate(0, -1, 0), true
	case Year:
		return now.AddDate(-1, 0, 0), true
	default:
		return time.Time{}, false
	}
}

// Contains reports whether t falls in the window of p ending at now.
//
// Day compares calendar days in now's location; the other periods keep
// everything at or after the lower bound, including times after now.
func (p Period) Contains(now, t time.Time) bool {
	if p == Day {
		return Of(t.In(now.Location())) == Of(now)
	}
	since, bounded := p.Since(now)
	if !bounded {
		return true
	}
	return !t.Before(since)
}

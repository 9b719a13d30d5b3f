package collector

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// EarliestHistory stands in for "max" at sources that need an explicit start date.
var EarliestHistory = time.Date(2016, 1, 1, 0, 0, 0, 0, time.UTC)

var rangeRe = regexp.MustCompile(`^(\d+)(d|wk|mo|y)$`)

// rangeStart converts a Yahoo-style range such as "6mo" into a start time
// relative to now. It also reports the day count for "Nd" ranges.
func rangeStart(rng string, now time.Time) (start time.Time, days int, err error) {
	switch rng {
	case "max":
		return EarliestHistory, 0, nil
	case "ytd":
		return time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location()), 0, nil
	}
	m := rangeRe.FindStringSubmatch(rng)
	if m == nil {
		return time.Time{}, 0, fmt.Errorf("unsupported range %q", rng)
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return time.Time{}, 0, fmt.Errorf("unsupported range %q", rng)
	}
	switch m[2] {
	case "d":
		return now.AddDate(0, 0, -n), n, nil
	case "wk":
		return now.AddDate(0, 0, -7*n), 0, nil
	case "mo":
		return now.AddDate(0, -n, 0), 0, nil
	default:
		return now.AddDate(-n, 0, 0), 0, nil
	}
}

package transform

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

const (
	minYear = 1900
	maxYear = 2100
)

var (
	dayFirst  = regexp.MustCompile(`^(\d{1,2})([/-])(\d{1,2})([/-])(\d{4})$`)
	yearFirst = regexp.MustCompile(`^(\d{4})([-/])(\d{1,2})([-/])(\d{1,2})$`)
	isoTime   = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})[T ]\d{2}:\d{2}(?::\d{2}(?:\.\d+)?)?(?:Z|[+-]\d{2}:?\d{2})?$`)
)

// Date parses dd/mm/yyyy, dd-mm-yyyy, yyyy-mm-dd, yyyy/mm/dd and ISO date-times.
// Date-times keep the calendar date as written; zones are not applied
func Date(v any) pgtype.Date {
	s, ok := v.(string)
	if !ok || IsNullToken(s) {
		return pgtype.Date{}
	}
	s = strings.TrimSpace(s)

	var y, m, d string
	if g := dayFirst.FindStringSubmatch(s); g != nil && g[2] == g[4] {
		d, m, y = g[1], g[3], g[5]
	} else if g := yearFirst.FindStringSubmatch(s); g != nil && g[2] == g[4] {
		y, m, d = g[1], g[3], g[5]
	} else if g := isoTime.FindStringSubmatch(s); g != nil {
		y, m, d = g[1], g[2], g[3]
	} else {
		return pgtype.Date{}
	}

	t, ok := civil(y, m, d)
	if !ok {
		return pgtype.Date{}
	}
	return pgtype.Date{Time: t, Valid: true}
}

// civil builds a UTC midnight date, rejecting rollovers like 31/02
func civil(ys, ms, ds string) (time.Time, bool) {
	y, _ := strconv.Atoi(ys)
	m, _ := strconv.Atoi(ms)
	d, _ := strconv.Atoi(ds)
	if y < minYear || y > maxYear || m < 1 || m > 12 || d < 1 {
		return time.Time{}, false
	}
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	if t.Day() != d || int(t.Month()) != m {
		return time.Time{}, false
	}
	return t, true
}

// FormatDate renders a date as yyyy-mm-dd, or "" when null
func FormatDate(d pgtype.Date) string {
	if !d.Valid {
		return ""
	}
	return d.Time.Format(time.DateOnly)
}

package bizhours

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// HolidaySet is an immutable set of non-working dates plus the range of
// dates the calendar is known to be complete for.
type HolidaySet struct {
	dates    map[Date]struct{}
	from, to Date
}

// NewHolidaySet builds a set whose coverage spans the full calendar years
// of its earliest and latest holidays.
func NewHolidaySet(dates ...Date) HolidaySet {
	s := HolidaySet{dates: make(map[Date]struct{}, len(dates))}
	for _, d := range dates {
		s.dates[d] = struct{}{}
		if s.from.IsZero() || d.Year < s.from.Year {
			s.from = Date{Year: d.Year, Month: time.January, Day: 1}
		}
		if s.to.IsZero() || d.Year > s.to.Year {
			s.to = Date{Year: d.Year, Month: time.December, Day: 31}
		}
	}
	return s
}

// ParseHolidays parses "2006-01-02" strings, trimming blanks and skipping
// empty entries. Every malformed entry is reported in the returned error.
func ParseHolidays(values []string) (HolidaySet, error) {
	var (
		dates []Date
		errs  []error
	)
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		// iTop returns dates with a time part on some versions.
		if len(v) > len(dateLayout) {
			v = v[:len(dateLayout)]
		}
		d, err := ParseDate(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("holiday %q: %w", v, err))
			continue
		}
		dates = append(dates, d)
	}
	if len(errs) > 0 {
		return HolidaySet{}, errors.Join(errs...)
	}
	return NewHolidaySet(dates...), nil
}

// WithCoverage returns a copy of s that declares [from, to] as covered.
func (s HolidaySet) WithCoverage(from, to Date) HolidaySet {
	s.from, s.to = from, to
	return s
}

func (s HolidaySet) Contains(d Date) bool {
	_, ok := s.dates[d]
	return ok
}

func (s HolidaySet) Len() int {
	return len(s.dates)
}

// Coverage returns the covered range; both ends are zero for an empty calendar.
func (s HolidaySet) Coverage() (from, to Date) {
	return s.from, s.to
}

// Covers reports whether d lies inside the covered range.
func (s HolidaySet) Covers(d Date) bool {
	if s.from.IsZero() || s.to.IsZero() {
		return false
	}
	return !d.Before(s.from) && !d.After(s.to)
}

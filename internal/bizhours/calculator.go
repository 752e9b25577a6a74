package bizhours

import (
	"fmt"
	"strings"
	"time"
)

// EndDayPolicy decides whether hours on a non-business end date count.
type EndDayPolicy int

const (
	// EndDayBusinessOnly counts nothing on a non-business end date.
	EndDayBusinessOnly EndDayPolicy = iota
	// EndDayElapsed counts hours since window open on the end date even
	// when that date is a weekend or holiday. It reproduces the legacy
	// report numbers but is not monotonic across weekends.
	EndDayElapsed
)

// ParseEndDayPolicy accepts "business_only" (or empty) and "elapsed".
func ParseEndDayPolicy(s string) (EndDayPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "business_only", "business-only":
		return EndDayBusinessOnly, nil
	case "elapsed":
		return EndDayElapsed, nil
	}
	return EndDayBusinessOnly, fmt.Errorf("unknown end day policy %q", s)
}

func (p EndDayPolicy) String() string {
	if p == EndDayElapsed {
		return "elapsed"
	}
	return "business_only"
}

// Case identifies which start-day rule produced a Breakdown.
type Case string

const (
	CaseStartNonBusiness Case = "start_non_business"
	CaseStartAfterClose  Case = "start_after_close"
	CaseSameDay          Case = "same_day"
	CaseMultiDay         Case = "multi_day"
)

// Breakdown is the additive decomposition of an interval.
type Breakdown struct {
	Case              Case
	FirstDayHours     int
	LastDayHours      int
	InbetweenHours    int
	InbetweenDays     int
	EndDayNonBusiness bool
}

func (b Breakdown) Total() int {
	return b.FirstDayHours + b.LastDayHours + b.InbetweenHours
}

// Calculator computes business hours for a fixed window and holiday set.
// It holds no mutable state and is safe for concurrent use.
type Calculator struct {
	window   Window
	holidays HolidaySet
	endDay   EndDayPolicy
}

type Option func(*Calculator)

func WithEndDayPolicy(p EndDayPolicy) Option {
	return func(c *Calculator) {
		c.endDay = p
	}
}

// NewCalculator re-validates the window so a zero Window cannot slip through.
func NewCalculator(w Window, holidays HolidaySet, opts ...Option) (*Calculator, error) {
	if _, err := NewWindow(w.StartHour, w.EndHour); err != nil {
		return nil, err
	}
	c := &Calculator{window: w, holidays: holidays}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Calculator) Window() Window {
	return c.window
}

func (c *Calculator) Holidays() HolidaySet {
	return c.holidays
}

func (c *Calculator) EndDayPolicy() EndDayPolicy {
	return c.endDay
}

// IsBusinessDay reports whether d is neither a weekend day nor a holiday.
func (c *Calculator) IsBusinessDay(d Date) bool {
	return !isWeekend(d) && !c.holidays.Contains(d)
}

// BusinessDaysBetween counts business days in [from, to] inclusive.
// It returns 0 when from is after to.
func (c *Calculator) BusinessDaysBetween(from, to Date) int {
	count := 0
	for d := from; !d.After(to); d = d.AddDays(1) {
		if c.IsBusinessDay(d) {
			count++
		}
	}
	return count
}

// Hours returns the whole business hours between start and end.
func (c *Calculator) Hours(start, end time.Time) (int, error) {
	b, err := c.Breakdown(start, end)
	if err != nil {
		return 0, err
	}
	return b.Total(), nil
}

// Breakdown decomposes [start, end] into first-day, intervening-day and
// last-day contributions. Only the date and clock hour of each timestamp
// are used; end is read in start's location.
func (c *Calculator) Breakdown(start, end time.Time) (Breakdown, error) {
	if end.Before(start) {
		return Breakdown{}, &OrderError{Start: start, End: end}
	}
	end = end.In(start.Location())

	w := c.window
	startDay, endDay := DateOf(start), DateOf(end)
	sameDay := startDay == endDay

	effStart := start.Hour()
	if effStart < w.StartHour {
		effStart = w.StartHour
	}

	var b Breakdown
	if !sameDay {
		b.InbetweenDays = c.BusinessDaysBetween(startDay.AddDays(1), endDay.AddDays(-1))
		b.InbetweenHours = b.InbetweenDays * w.HoursPerDay()
	}

	switch {
	case !c.IsBusinessDay(startDay):
		b.Case = CaseStartNonBusiness
	case start.Hour() >= w.EndHour:
		b.Case = CaseStartAfterClose
	case sameDay:
		b.Case = CaseSameDay
		if h := w.clamp(end.Hour()) - effStart; h > 0 {
			b.FirstDayHours = h
		}
		return b, nil
	default:
		b.Case = CaseMultiDay
		b.FirstDayHours = w.EndHour - effStart
	}

	// The start date is also the end date here and it contributes nothing.
	if sameDay {
		return b, nil
	}

	b.EndDayNonBusiness = !c.IsBusinessDay(endDay)
	if b.EndDayNonBusiness && c.endDay == EndDayBusinessOnly {
		return b, nil
	}
	b.LastDayHours = w.clamp(end.Hour()) - w.StartHour
	return b, nil
}

// Gaps returns a warning for each distinct date of [start, end] endpoints
// that falls outside the holiday calendar's coverage.
func (c *Calculator) Gaps(start, end time.Time) []*CalendarGapWarning {
	from, to := c.holidays.Coverage()
	empty := from.IsZero() || to.IsZero()

	var warnings []*CalendarGapWarning
	seen := make(map[Date]struct{}, 2)
	for _, t := range []time.Time{start, end.In(start.Location())} {
		d := DateOf(t)
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		if c.holidays.Covers(d) {
			continue
		}
		warnings = append(warnings, &CalendarGapWarning{Date: d, Coverage: [2]Date{from, to}, Empty: empty})
	}
	return warnings
}

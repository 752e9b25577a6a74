package bizhours

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidWindow is matched by every ConfigError.
	ErrInvalidWindow = errors.New("invalid business window")
	// ErrEndBeforeStart is matched by every OrderError.
	ErrEndBeforeStart = errors.New("end is before start")
)

// ConfigError reports business window bounds that cannot describe a working day.
type ConfigError struct {
	StartHour int
	EndHour   int
	Reason    string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid business window [%d,%d): %s", e.StartHour, e.EndHour, e.Reason)
}

func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidWindow
}

// OrderError reports a record whose end timestamp precedes its start.
type OrderError struct {
	Start time.Time
	End   time.Time
}

func (e *OrderError) Error() string {
	return fmt.Sprintf("end %s is before start %s", e.End.Format(time.RFC3339), e.Start.Format(time.RFC3339))
}

func (e *OrderError) Is(target error) bool {
	return target == ErrEndBeforeStart
}

// CalendarGapWarning flags a date the holiday calendar does not cover.
// Business-day classification for such a date only reflects weekends.
type CalendarGapWarning struct {
	Date     Date
	Coverage [2]Date
	Empty    bool
}

func (w *CalendarGapWarning) Error() string {
	if w.Empty {
		return fmt.Sprintf("holiday calendar is empty, %s classified by weekday only", w.Date)
	}
	return fmt.Sprintf("date %s is outside holiday calendar coverage %s..%s", w.Date, w.Coverage[0], w.Coverage[1])
}

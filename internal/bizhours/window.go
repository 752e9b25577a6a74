package bizhours

import "fmt"

// Window is the daily working period [StartHour, EndHour).
type Window struct {
	StartHour int
	EndHour   int
}

// NewWindow validates the bounds and returns the window.
func NewWindow(startHour, endHour int) (Window, error) {
	switch {
	case startHour < 0 || startHour > 24:
		return Window{}, &ConfigError{StartHour: startHour, EndHour: endHour, Reason: "start hour outside 0..24"}
	case endHour < 0 || endHour > 24:
		return Window{}, &ConfigError{StartHour: startHour, EndHour: endHour, Reason: "end hour outside 0..24"}
	case startHour >= endHour:
		return Window{}, &ConfigError{StartHour: startHour, EndHour: endHour, Reason: "start hour must be before end hour"}
	}
	return Window{StartHour: startHour, EndHour: endHour}, nil
}

func (w Window) HoursPerDay() int {
	return w.EndHour - w.StartHour
}

// Contains reports whether the clock hour falls inside the window.
func (w Window) Contains(hour int) bool {
	return hour >= w.StartHour && hour < w.EndHour
}

// clamp pins a clock hour into [StartHour, EndHour].
func (w Window) clamp(hour int) int {
	if hour < w.StartHour {
		return w.StartHour
	}
	if hour > w.EndHour {
		return w.EndHour
	}
	return hour
}

func (w Window) String() string {
	return fmt.Sprintf("%02d:00-%02d:00", w.StartHour, w.EndHour)
}

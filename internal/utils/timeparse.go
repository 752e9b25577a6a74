package utils

import (
	"time"
)

var dateLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseDateFlexible tries the common iTop and spreadsheet timestamp layouts.
// An empty string yields the zero time and no error.
func ParseDateFlexible(s string) (time.Time, error) {
	return ParseDateFlexibleIn(s, time.UTC)
}

// ParseDateFlexibleIn is ParseDateFlexible with layouts lacking a zone read in loc.
func ParseDateFlexibleIn(s string, loc *time.Location) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	var t time.Time
	var err error
	for _, layout := range dateLayouts {
		t, err = time.ParseInLocation(layout, s, loc)
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

package session

import (
	"fmt"
	"slices"
	"time"
)

const (
	DateLayout  = "2006-01-02"
	MonthLayout = "2006-01"
	// ClockLayout renders start and end times, 24-hour like en-GB.
	ClockLayout = "15:04:05"
)

// Session is one study interval bound to a calendar day.
type Session struct {
	ID        int64    `json:"id"`
	Date      string   `json:"date"`
	StartTime *string  `json:"startTime"`
	EndTime   *string  `json:"endTime"`
	Notes     string   `json:"notes"`
	Duration  int64    `json:"duration"` // seconds
	Running   bool     `json:"running"`
	Tags      []string `json:"tags"`
}

// Clone returns a deep copy so callers cannot reach into the collection.
func (s Session) Clone() Session {
	c := s
	if s.StartTime != nil {
		v := *s.StartTime
		c.StartTime = &v
	}
	if s.EndTime != nil {
		v := *s.EndTime
		c.EndTime = &v
	}
	c.Tags = slices.Clone(s.Tags)
	if c.Tags == nil {
		c.Tags = []string{}
	}
	return c
}

// Display is the per-session stopwatch string, e.g. "02:05".
func (s Session) Display() string {
	return Clock(s.Duration)
}

// ParseDate validates a YYYY-MM-DD day.
func ParseDate(date string) (time.Time, error) {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q: want YYYY-MM-DD", ErrInvalidInput, date)
	}
	return t, nil
}

// ParseMonth validates a YYYY-MM month.
func ParseMonth(yearMonth string) (time.Time, error) {
	t, err := time.Parse(MonthLayout, yearMonth)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: month %q: want YYYY-MM", ErrInvalidInput, yearMonth)
	}
	return t, nil
}

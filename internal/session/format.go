package session

import "fmt"

// Clock renders seconds as MM:SS. Minutes are not capped at 59.
func Clock(secs int64) string {
	if secs < 0 {
		secs = 0
	}
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

// HoursMinutes splits seconds into whole hours and minutes; leftover seconds
// are dropped.
func HoursMinutes(secs int64) (hours, minutes int64) {
	if secs < 0 {
		return 0, 0
	}
	return secs / 3600, (secs % 3600) / 60
}

// FormatHM renders totals, e.g. "1h 5m".
func FormatHM(secs int64) string {
	h, m := HoursMinutes(secs)
	return fmt.Sprintf("%dh %dm", h, m)
}

// FormatMS renders a single session's duration, e.g. "2m 5s".
func FormatMS(secs int64) string {
	if secs < 0 {
		secs = 0
	}
	return fmt.Sprintf("%dm %ds", secs/60, secs%60)
}

// OrDash returns the clock string or "--" when it is unset.
func OrDash(v *string) string {
	if v == nil || *v == "" {
		return "--"
	}
	return *v
}

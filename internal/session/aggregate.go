package session

// Total sums Duration over sessions.
func Total(sessions []Session) int64 {
	var sum int64
	for _, s := range sessions {
		sum += s.Duration
	}
	return sum
}

// DailyTotals groups Duration by date.
func DailyTotals(sessions []Session) map[string]int64 {
	totals := make(map[string]int64)
	for _, s := range sessions {
		totals[s.Date] += s.Duration
	}
	return totals
}

// DailyTotal is the day bucket total in seconds.
func (s *Store) DailyTotal(date string) int64 {
	return Total(s.ListByDate(date))
}

// MonthlyTotal is the month bucket total in seconds.
func (s *Store) MonthlyTotal(yearMonth string) int64 {
	return Total(s.ListByMonth(yearMonth))
}

// ActiveDays reports which days of the month have at least one session.
func (s *Store) ActiveDays(yearMonth string) map[string]bool {
	days := make(map[string]bool)
	for _, sess := range s.ListByMonth(yearMonth) {
		days[sess.Date] = true
	}
	return days
}

package domain

import (
	"fmt"
	"time"
)

// dateKeyLayout is the calendar-day layout used for range queries.
const dateKeyLayout = "2006-01-02"

// DateKey is a calendar day in YYYY-MM-DD form. Keys order lexically.
type DateKey string

// DateKeyOf returns the day t falls on, in t's own location.
func DateKeyOf(t time.Time) DateKey {
	return DateKey(t.Format(dateKeyLayout))
}

// ParseDateKey validates a YYYY-MM-DD string.
func ParseDateKey(s string) (DateKey, error) {
	if _, err := time.Parse(dateKeyLayout, s); err != nil {
		return "", fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return DateKey(s), nil
}

// DateRange is an inclusive span of days.
type DateRange struct {
	Start DateKey
	End   DateKey
}

// Contains reports whether k falls within the range.
func (r DateRange) Contains(k DateKey) bool {
	return k >= r.Start && k <= r.End
}

// TodayRange covers the single day of now.
func TodayRange(now time.Time) DateRange {
	k := DateKeyOf(now)
	return DateRange{Start: k, End: k}
}

// WeekRange covers Monday through Sunday of the week containing now.
// Sunday belongs to the week that started six days earlier.
func WeekRange(now time.Time) DateRange {
	weekday := int(now.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	start := time.Date(now.Year(), now.Month(), now.Day()-(weekday-1), 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 0, 6)
	return DateRange{Start: DateKeyOf(start), End: DateKeyOf(end)}
}

// MonthRange covers the first through last day of now's calendar month.
func MonthRange(now time.Time) DateRange {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 1, -1)
	return DateRange{Start: DateKeyOf(start), End: DateKeyOf(end)}
}

// Period names a predefined stats range.
type Period string

const (
	PeriodToday Period = "today"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

// ParsePeriod validates a period name.
func ParsePeriod(s string) (Period, error) {
	switch p := Period(s); p {
	case PeriodToday, PeriodWeek, PeriodMonth:
		return p, nil
	}
	return "", fmt.Errorf("invalid period %q: must be one of today, week, month", s)
}

// Range resolves the period relative to now.
func (p Period) Range(now time.Time) DateRange {
	switch p {
	case PeriodWeek:
		return WeekRange(now)
	case PeriodMonth:
		return MonthRange(now)
	default:
		return TodayRange(now)
	}
}

// Stats is a rollup of completed sessions.
type Stats struct {
	Completed    int
	FocusMinutes int
	BreakMinutes int
}

// Aggregate rolls up completed sessions that started within r.
// Skipped, abandoned and open sessions are ignored.
func Aggregate(sessions []Session, r DateRange) Stats {
	var st Stats
	for _, s := range sessions {
		if !s.IsCompleted() || !r.Contains(s.DateKey()) {
			continue
		}
		if s.IsWork() {
			st.Completed++
			st.FocusMinutes += s.DurationMinutes
		} else {
			st.BreakMinutes += s.DurationMinutes
		}
	}
	return st
}

// LedgerSummary describes the whole ledger for export headers.
type LedgerSummary struct {
	TotalSessions     int
	CompletedSessions int
	FocusMinutes      int
	BreakMinutes      int
	// Span is nil for an empty ledger.
	Span *DateRange
}

// Summarize computes totals over every session regardless of date.
func Summarize(sessions []Session) LedgerSummary {
	sum := LedgerSummary{TotalSessions: len(sessions)}
	var first, last DateKey
	for i, s := range sessions {
		k := s.DateKey()
		if i == 0 || k < first {
			first = k
		}
		if i == 0 || k > last {
			last = k
		}
		if !s.IsCompleted() {
			continue
		}
		sum.CompletedSessions++
		if s.IsWork() {
			sum.FocusMinutes += s.DurationMinutes
		} else {
			sum.BreakMinutes += s.DurationMinutes
		}
	}
	if len(sessions) > 0 {
		sum.Span = &DateRange{Start: first, End: last}
	}
	return sum
}

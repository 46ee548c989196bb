package domain

import (
	"testing"
	"time"
)

func TestWeekRange(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want DateRange
	}{
		{"monday", time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC), DateRange{"2026-03-09", "2026-03-15"}},
		{"wednesday", time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC), DateRange{"2026-03-09", "2026-03-15"}},
		{"sunday belongs to the previous monday", time.Date(2026, 3, 15, 23, 59, 0, 0, time.UTC), DateRange{"2026-03-09", "2026-03-15"}},
		{"across months", time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC), DateRange{"2026-03-30", "2026-04-05"}},
		{"across years", time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC), DateRange{"2025-12-29", "2026-01-04"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WeekRange(tt.now); got != tt.want {
				t.Errorf("WeekRange(%v) = %v, want %v", tt.now, got, tt.want)
			}
		})
	}
}

func TestMonthRange(t *testing.T) {
	tests := []struct {
		now  time.Time
		want DateRange
	}{
		{time.Date(2026, 2, 14, 0, 0, 0, 0, time.UTC), DateRange{"2026-02-01", "2026-02-28"}},
		{time.Date(2028, 2, 29, 0, 0, 0, 0, time.UTC), DateRange{"2028-02-01", "2028-02-29"}},
		{time.Date(2026, 12, 31, 23, 0, 0, 0, time.UTC), DateRange{"2026-12-01", "2026-12-31"}},
	}

	for _, tt := range tests {
		if got := MonthRange(tt.now); got != tt.want {
			t.Errorf("MonthRange(%v) = %v, want %v", tt.now, got, tt.want)
		}
	}
}

func TestParsePeriod(t *testing.T) {
	for _, s := range []string{"today", "week", "month"} {
		if _, err := ParsePeriod(s); err != nil {
			t.Errorf("ParsePeriod(%q) error = %v", s, err)
		}
	}
	if _, err := ParsePeriod("year"); err == nil {
		t.Error("ParsePeriod(year) should fail")
	}

	now := time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC)
	if got := PeriodToday.Range(now); got != (DateRange{"2026-03-11", "2026-03-11"}) {
		t.Errorf("PeriodToday.Range() = %v", got)
	}
}

func TestParseDateKey(t *testing.T) {
	if k, err := ParseDateKey("2026-03-11"); err != nil || k != "2026-03-11" {
		t.Errorf("ParseDateKey() = %v, %v", k, err)
	}
	for _, bad := range []string{"2026-3-11", "11/03/2026", "2026-02-30", ""} {
		if _, err := ParseDateKey(bad); err == nil {
			t.Errorf("ParseDateKey(%q) should fail", bad)
		}
	}
}

func testSession(phase Phase, minutes int, d Disposition, started time.Time) Session {
	s := NewSession(phase, minutes*60, nil, nil, started)
	if d != DispositionOpen {
		s.Finish(d, started.Add(time.Duration(minutes)*time.Minute))
	}
	return s
}

func TestAggregate(t *testing.T) {
	day := time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC)
	sessions := []Session{
		testSession(PhaseWork, 25, DispositionCompleted, day),
		testSession(PhaseShortBreak, 5, DispositionCompleted, day),
		testSession(PhaseWork, 25, DispositionSkipped, day),
		testSession(PhaseWork, 25, DispositionAbandoned, day),
		testSession(PhaseWork, 25, DispositionOpen, day),
		testSession(PhaseLongBreak, 15, DispositionCompleted, day.AddDate(0, 0, -1)),
		testSession(PhaseWork, 50, DispositionCompleted, day.AddDate(0, 0, -1)),
	}

	got := Aggregate(sessions, TodayRange(day))
	want := Stats{Completed: 1, FocusMinutes: 25, BreakMinutes: 5}
	if got != want {
		t.Errorf("Aggregate(today) = %+v, want %+v", got, want)
	}

	got = Aggregate(sessions, WeekRange(day))
	want = Stats{Completed: 2, FocusMinutes: 75, BreakMinutes: 20}
	if got != want {
		t.Errorf("Aggregate(week) = %+v, want %+v", got, want)
	}

	if got := Aggregate(nil, WeekRange(day)); got != (Stats{}) {
		t.Errorf("Aggregate(nil) = %+v, want zero", got)
	}
}

func TestSummarize(t *testing.T) {
	if sum := Summarize(nil); sum.Span != nil || sum.TotalSessions != 0 {
		t.Errorf("Summarize(nil) = %+v, want empty", sum)
	}

	day := time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC)
	sessions := []Session{
		testSession(PhaseWork, 25, DispositionCompleted, day),
		testSession(PhaseShortBreak, 5, DispositionSkipped, day.AddDate(0, 0, -3)),
		testSession(PhaseShortBreak, 5, DispositionCompleted, day.AddDate(0, 0, -1)),
	}

	sum := Summarize(sessions)
	if sum.TotalSessions != 3 || sum.CompletedSessions != 2 {
		t.Errorf("Summarize() counts = %d/%d, want 3/2", sum.TotalSessions, sum.CompletedSessions)
	}
	if sum.FocusMinutes != 25 || sum.BreakMinutes != 5 {
		t.Errorf("Summarize() minutes = %d/%d, want 25/5", sum.FocusMinutes, sum.BreakMinutes)
	}
	if sum.Span == nil || *sum.Span != (DateRange{"2026-03-08", "2026-03-11"}) {
		t.Errorf("Summarize().Span = %v, want 2026-03-08..2026-03-11", sum.Span)
	}
}

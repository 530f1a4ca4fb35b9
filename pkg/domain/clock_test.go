package domain

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestClockQuarterOffset(t *testing.T) {
	cases := []struct {
		now  time.Time
		want int
	}{
		{date(2024, time.May, 15), 44},
		{date(2024, time.April, 1), 0},
		{date(2024, time.January, 31), 30},
		{date(2024, time.December, 31), 91},
	}
	for _, tc := range cases {
		c := NewClock(tc.now)
		if c.QuarterOffset != tc.want {
			t.Fatalf("QuarterOffset(%s) = %d, want %d", tc.now.Format(DateFormat), c.QuarterOffset, tc.want)
		}
	}
}

func TestClockAge(t *testing.T) {
	c := NewClock(date(2024, time.June, 1))
	if got := c.Age(date(2009, time.June, 15)); got != 14 {
		t.Fatalf("Age = %d, want 14", got)
	}
	if got := c.AgeEOY(date(2009, time.June, 15)); got != 15 {
		t.Fatalf("AgeEOY = %d, want 15", got)
	}
}

func TestClockDays(t *testing.T) {
	c := NewClock(date(2024, time.June, 1))
	if got := c.DaysSince(date(2024, time.May, 1)); got != 31 {
		t.Fatalf("DaysSince = %d, want 31", got)
	}
	if got := c.DaysUntil(date(2024, time.June, 11)); got != 10 {
		t.Fatalf("DaysUntil = %d, want 10", got)
	}
	if got := c.DaysUntil(date(2024, time.May, 1)); got != -31 {
		t.Fatalf("DaysUntil past = %d, want -31", got)
	}
}

func TestClockNewStarter(t *testing.T) {
	c := NewClock(date(2024, time.June, 1))
	if !c.NewStarter(date(2024, time.May, 1), 90) {
		t.Fatalf("expected joiner within grace to be a new starter")
	}
	if c.NewStarter(date(2023, time.June, 1), 90) {
		t.Fatalf("expected joiner outside grace not to be a new starter")
	}
}

package utils

import "time"

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (s SystemClock) Now() time.Time {
	return time.Now()
}

type MockClock struct {
	FixedNow time.Time
}

func (m *MockClock) Now() time.Time {
	return m.FixedNow
}

func (m *MockClock) SetNow(now time.Time) {
	m.FixedNow = now
}

// AddDays moves the mock clock by the given number of calendar days.
func (m *MockClock) AddDays(days int) {
	m.FixedNow = m.FixedNow.AddDate(0, 0, days)
}

// DateOf returns the calendar date of t (in t's own location) as midnight UTC.
// Purchase dates are stored this way so the time of day never leaks into day arithmetic.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween counts the calendar-day boundaries crossed going from `from` to `to`.
// Both instants are reduced to their calendar dates first, so 23:59 -> 00:01 is one day
// and a DST transition never produces a fractional day. The result is negative when
// `to` is on an earlier date.
func DaysBetween(from, to time.Time) int {
	return int(DateOf(to).Sub(DateOf(from)).Hours() / 24)
}

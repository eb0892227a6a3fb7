package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDaysBetween(t *testing.T) {
	warsaw, err := time.LoadLocation("Europe/Warsaw")
	if err != nil {
		t.Skipf("timezone data not available: %v", err)
	}

	tests := []struct {
		name string
		from time.Time
		to   time.Time
		want int
	}{
		{
			name: "same instant",
			from: time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC),
			to:   time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC),
			want: 0,
		},
		{
			name: "crossing midnight counts as one day",
			from: time.Date(2024, 5, 10, 23, 59, 0, 0, time.UTC),
			to:   time.Date(2024, 5, 11, 0, 1, 0, 0, time.UTC),
			want: 1,
		},
		{
			name: "almost two full days on the next calendar day is one day",
			from: time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC),
			to:   time.Date(2024, 5, 11, 23, 59, 0, 0, time.UTC),
			want: 1,
		},
		{
			name: "future date is negative",
			from: time.Date(2024, 5, 12, 0, 0, 0, 0, time.UTC),
			to:   time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC),
			want: -2,
		},
		{
			name: "across a DST change",
			from: time.Date(2024, 3, 30, 0, 0, 0, 0, time.UTC),
			to:   time.Date(2024, 4, 1, 0, 30, 0, 0, warsaw),
			want: 2,
		},
		{
			name: "across a leap day",
			from: time.Date(2024, 2, 28, 0, 0, 0, 0, time.UTC),
			to:   time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC),
			want: 2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DaysBetween(tt.from, tt.to))
		})
	}
}

func TestDateOf(t *testing.T) {
	warsaw, err := time.LoadLocation("Europe/Warsaw")
	if err != nil {
		t.Skipf("timezone data not available: %v", err)
	}

	// 00:30 in Warsaw is still the previous day in UTC; the local calendar date wins
	local := time.Date(2024, 6, 2, 0, 30, 0, 0, warsaw)

	assert.Equal(t, time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC), DateOf(local))
}

func TestMockClock_AddDays(t *testing.T) {
	clock := &MockClock{FixedNow: time.Date(2024, 1, 31, 10, 0, 0, 0, time.UTC)}

	clock.AddDays(1)

	assert.Equal(t, time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC), clock.Now())
}

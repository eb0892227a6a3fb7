package test_utils

import (
	"time"

	"github.com/mystuff/mystuff/internal/utils"
)

// Today is the fixed "now" used across tests.
var Today = time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC)

// DaysAgo returns the calendar date n days before Today.
func DaysAgo(n int) time.Time {
	return utils.DateOf(Today.AddDate(0, 0, -n))
}

// NewTestClock returns a clock frozen at Today.
func NewTestClock() *utils.MockClock {
	return &utils.MockClock{FixedNow: Today}
}

package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseEventDate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
		valid bool
	}{
		{"valid date", "15-01-2026", time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC), true},
		{"single digit padded", "05-03-2026", time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC), true},
		{"month out of range", "31-13-2026", time.Time{}, false},
		{"wrong order", "2026-01-15", time.Time{}, false},
		{"garbage", "not-a-date", time.Time{}, false},
		{"empty", "", time.Time{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, valid := ParseEventDate(tt.input)
			assert.Equal(t, tt.valid, valid)
			if tt.valid {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestWeekStart(t *testing.T) {
	// 2026-01-06 is a Tuesday.
	tuesday := time.Date(2026, 1, 6, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		date   time.Time
		anchor time.Weekday
		want   time.Time
	}{
		{"anchor day maps to itself", tuesday, time.Tuesday, tuesday},
		{"day after anchor", tuesday.AddDate(0, 0, 1), time.Tuesday, tuesday},
		{"last day of span", tuesday.AddDate(0, 0, 6), time.Tuesday, tuesday},
		{"next span starts new week", tuesday.AddDate(0, 0, 7), time.Tuesday, tuesday.AddDate(0, 0, 7)},
		{"day before anchor rolls back", tuesday.AddDate(0, 0, -1), time.Tuesday, tuesday.AddDate(0, 0, -7)},
		{"monday anchor", tuesday, time.Monday, tuesday.AddDate(0, 0, -1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WeekStart(tt.date, tt.anchor))
		})
	}
}

func TestWeekLabel(t *testing.T) {
	start := time.Date(2026, 1, 6, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2026-01-06", WeekLabel(start))
}

package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func mustTime(t *testing.T, value string) time.Time {
	parsed, err := time.Parse("2006-01-02 15:04", value)
	if err != nil {
		t.Fatalf("bad test time %q: %v", value, err)
	}
	return parsed
}

func TestOverlaps(t *testing.T) {
	cases := []struct {
		name                           string
		aStart, aEnd, bStart, bEnd     string
		expected                       bool
	}{
		{"identical", "2026-03-01 10:00", "2026-03-01 12:00", "2026-03-01 10:00", "2026-03-01 12:00", true},
		{"partial overlap", "2026-03-01 10:00", "2026-03-01 12:00", "2026-03-01 11:00", "2026-03-01 13:00", true},
		{"contained", "2026-03-01 10:00", "2026-03-01 14:00", "2026-03-01 11:00", "2026-03-01 12:00", true},
		{"touching ends is free", "2026-03-01 10:00", "2026-03-01 12:00", "2026-03-01 12:00", "2026-03-01 14:00", false},
		{"touching starts is free", "2026-03-01 12:00", "2026-03-01 14:00", "2026-03-01 10:00", "2026-03-01 12:00", false},
		{"disjoint", "2026-03-01 10:00", "2026-03-01 11:00", "2026-03-01 13:00", "2026-03-01 14:00", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Overlaps(
				mustTime(t, tc.aStart), mustTime(t, tc.aEnd),
				mustTime(t, tc.bStart), mustTime(t, tc.bEnd))
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestWithinOperatingHours(t *testing.T) {
	// 08:00-20:00 operating window
	err := WithinOperatingHours(
		mustTime(t, "2026-03-01 10:00"), mustTime(t, "2026-03-01 12:00"), 8, 20)
	assert.NoError(t, err)

	err = WithinOperatingHours(
		mustTime(t, "2026-03-01 07:00"), mustTime(t, "2026-03-01 09:00"), 8, 20)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "before operating hours")

	err = WithinOperatingHours(
		mustTime(t, "2026-03-01 19:00"), mustTime(t, "2026-03-01 21:00"), 8, 20)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "after operating hours")
}

func TestWithinOperatingHoursMultiDay(t *testing.T) {
	// A span across midnight always leaves the operating window of some day
	err := WithinOperatingHours(
		mustTime(t, "2026-03-01 19:00"), mustTime(t, "2026-03-02 10:00"), 8, 20)
	assert.Error(t, err)

	// Full-day window allows a multi-day span
	err = WithinOperatingHours(
		mustTime(t, "2026-03-01 00:00"), mustTime(t, "2026-03-03 00:00"), 0, 24)
	assert.NoError(t, err)

	// Each day checked independently: second day violates
	err = WithinOperatingHours(
		mustTime(t, "2026-03-01 08:00"), mustTime(t, "2026-03-02 21:00"), 8, 24)
	assert.NoError(t, err)
	err = WithinOperatingHours(
		mustTime(t, "2026-03-01 08:00"), mustTime(t, "2026-03-02 21:00"), 8, 20)
	assert.Error(t, err)
}

func TestFreeHourSlots(t *testing.T) {
	date := mustTime(t, "2026-03-01 00:00")
	busy := []Window{
		{Start: mustTime(t, "2026-03-01 10:00"), End: mustTime(t, "2026-03-01 12:00")},
	}

	slots := FreeHourSlots(date, 8, 14, busy)

	// 08-09, 09-10, 12-13, 13-14
	assert.Len(t, slots, 4)
	assert.Equal(t, 8.0, slots[0].StartHour)
	assert.Equal(t, 9.0, slots[1].StartHour)
	assert.Equal(t, 12.0, slots[2].StartHour)
	assert.Equal(t, 13.0, slots[3].StartHour)
}

func TestFreeHourSlotsFractionalOpeningHour(t *testing.T) {
	date := mustTime(t, "2026-03-01 00:00")

	// Открытие в 8:30: первый целый слот — 09-10, и каждый предложенный
	// слот проходит проверку часов работы
	slots := FreeHourSlots(date, 8.5, 12, nil)

	assert.Len(t, slots, 3)
	assert.Equal(t, 9.0, slots[0].StartHour)
	for _, slot := range slots {
		start := date.Add(time.Duration(slot.StartHour * float64(time.Hour)))
		end := date.Add(time.Duration(slot.EndHour * float64(time.Hour)))
		assert.NoError(t, WithinOperatingHours(start, end, 8.5, 12))
	}
}

func TestFreeHourSlotsNoBookings(t *testing.T) {
	date := mustTime(t, "2026-03-01 00:00")
	slots := FreeHourSlots(date, 8, 20, nil)
	assert.Len(t, slots, 12)
}

func TestOccurrencesDaily(t *testing.T) {
	start := mustTime(t, "2026-03-01 10:00")
	count := 3

	occ := Occurrences(start, "daily", &count, nil)

	assert.Len(t, occ, 3)
	assert.Equal(t, start.AddDate(0, 0, 1), occ[0])
	assert.Equal(t, start.AddDate(0, 0, 2), occ[1])
	assert.Equal(t, start.AddDate(0, 0, 3), occ[2])
}

func TestOccurrencesWeekly(t *testing.T) {
	start := mustTime(t, "2026-03-01 10:00")
	count := 2

	occ := Occurrences(start, "weekly", &count, nil)

	assert.Len(t, occ, 2)
	assert.Equal(t, start.AddDate(0, 0, 7), occ[0])
	assert.Equal(t, start.AddDate(0, 0, 14), occ[1])
}

func TestOccurrencesMonthly(t *testing.T) {
	start := mustTime(t, "2026-03-01 10:00")
	count := 2

	occ := Occurrences(start, "monthly", &count, nil)

	assert.Len(t, occ, 2)
	assert.Equal(t, start.AddDate(0, 1, 0), occ[0])
	assert.Equal(t, start.AddDate(0, 2, 0), occ[1])
}

func TestOccurrencesEndDateStop(t *testing.T) {
	start := mustTime(t, "2026-03-01 10:00")
	end := mustTime(t, "2026-03-03 23:00")

	occ := Occurrences(start, "daily", nil, &end)

	// +1 and +2 days fit, +3 is past the end date
	assert.Len(t, occ, 2)
}

func TestFormatHour(t *testing.T) {
	assert.Equal(t, "08:00", FormatHour(8))
	assert.Equal(t, "14:30", FormatHour(14.5))
	assert.Equal(t, "22:00", FormatHour(22))
}

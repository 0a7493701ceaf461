// Package schedule holds the time-range rules shared by booking validation,
// availability queries and recurrence generation.
package schedule

import (
	"fmt"
	"math"
	"time"
)

// Overlaps reports whether two half-open intervals [aStart, aEnd) and
// [bStart, bEnd) share any instant.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// HourOf returns the time of day as a fractional hour (14:30 -> 14.5).
func HourOf(t time.Time) float64 {
	return float64(t.Hour()) + float64(t.Minute())/60.0 + float64(t.Second())/3600.0
}

// FormatHour renders a fractional hour as HH:MM.
func FormatHour(hour float64) string {
	h := int(hour)
	m := int((hour - float64(h)) * 60)
	return fmt.Sprintf("%02d:%02d", h, m)
}

// WithinOperatingHours checks every day the booking touches: the portion of
// [start, end) falling on that day must sit inside [opStart, opEnd] hours.
// Returns a descriptive error for the first violating day.
func WithinOperatingHours(start, end time.Time, opStart, opEnd float64) error {
	if !end.After(start) {
		return fmt.Errorf("end must be after start")
	}

	day := startOfDay(start)
	for day.Before(end) {
		nextDay := day.AddDate(0, 0, 1)

		segStart := start
		if segStart.Before(day) {
			segStart = day
		}
		segEnd := end
		if segEnd.After(nextDay) {
			segEnd = nextDay
		}

		from := HourOf(segStart)
		to := HourOf(segEnd)
		if to == 0 && segEnd.Equal(nextDay) {
			to = 24.0
		}

		if from < opStart {
			return fmt.Errorf("start time %s on %s is before operating hours (%s)",
				FormatHour(from), day.Format("2006-01-02"), FormatHour(opStart))
		}
		if to > opEnd {
			return fmt.Errorf("end time %s on %s is after operating hours (%s)",
				FormatHour(to), day.Format("2006-01-02"), FormatHour(opEnd))
		}

		day = nextDay
	}

	return nil
}

// Window is an occupied interval used when computing free slots.
type Window struct {
	Start time.Time
	End   time.Time
}

// Slot is a free interval within operating hours, in fractional hours.
type Slot struct {
	StartHour float64
	EndHour   float64
}

// FreeHourSlots generates the 1-hour slots of a day that do not overlap any
// busy window. Slots run on whole hours; a fractional opening hour rounds up
// to the next full hour so every offered slot fits the operating window.
func FreeHourSlots(date time.Time, opStart, opEnd float64, busy []Window) []Slot {
	day := startOfDay(date)
	var slots []Slot

	for hour := int(math.Ceil(opStart)); hour+1 <= int(opEnd); hour++ {
		slotStart := day.Add(time.Duration(hour) * time.Hour)
		slotEnd := slotStart.Add(time.Hour)

		free := true
		for _, w := range busy {
			if Overlaps(slotStart, slotEnd, w.Start, w.End) {
				free = false
				break
			}
		}
		if free {
			slots = append(slots, Slot{StartHour: float64(hour), EndHour: float64(hour + 1)})
		}
	}

	return slots
}

// NextOccurrence steps a start time forward by one recurrence interval.
// Monthly steps by calendar month, daily/weekly by fixed day counts.
func NextOccurrence(start time.Time, recurrenceType string, step int) time.Time {
	switch recurrenceType {
	case "daily":
		return start.AddDate(0, 0, step)
	case "weekly":
		return start.AddDate(0, 0, 7*step)
	case "monthly":
		return start.AddDate(0, step, 0)
	default:
		return start
	}
}

// Occurrences lists the candidate child start times for a recurring booking:
// start+1 interval, start+2 intervals, ... until count occurrences or until
// an occurrence would start after endDate (whichever is given).
func Occurrences(start time.Time, recurrenceType string, count *int, endDate *time.Time) []time.Time {
	var result []time.Time
	for i := 1; ; i++ {
		if count != nil && i > *count {
			break
		}
		next := NextOccurrence(start, recurrenceType, i)
		if endDate != nil && next.After(*endDate) {
			break
		}
		if count == nil && endDate == nil {
			break
		}
		result = append(result, next)
	}
	return result
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

package testdate

import (
	"time"

	"cloud.google.com/go/civil"
)

// MaxRangeMonths caps the span of a single bulk generation.
const MaxRangeMonths = 6

// AddMonths moves d by n calendar months, clamping the day to the length of the target month:
// Aug 31 + 6 months is Feb 28 (or Feb 29 in leap years), never early March.
func AddMonths(d civil.Date, n int) civil.Date {
	total := int(d.Month) - 1 + n
	year := d.Year + floorDiv(total, 12)
	month := time.Month(total - floorDiv(total, 12)*12 + 1)

	day := d.Day
	if last := daysIn(year, month); day > last {
		day = last
	}
	return civil.Date{Year: year, Month: month, Day: day}
}

func daysIn(year int, month time.Month) int {
	// day 0 of the next month is the last day of this one
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// checkRange rejects inverted ranges and ranges longer than MaxRangeMonths.
func checkRange(start, end civil.Date) error {
	if start.After(end) {
		return ErrInvalidRange
	}
	if end.After(AddMonths(start, MaxRangeMonths)) {
		return ErrRangeTooLarge
	}
	return nil
}

// expandRange lists every day of [start, end] that is not before today,
// and how many days were dropped for being in the past.
func expandRange(start, end, today civil.Date) (days []civil.Date, past int) {
	days = make([]civil.Date, 0, end.DaysSince(start)+1)
	for d := start; !d.After(end); d = d.AddDays(1) {
		if d.Before(today) {
			past++
			continue
		}
		days = append(days, d)
	}
	return days, past
}

package course

import (
	"math"
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

// DisplayStatus is the enrollment status shown to visitors.
type DisplayStatus string

const (
	DisplayOpen        DisplayStatus = "Open"
	DisplayClosingSoon DisplayStatus = "Closing soon"
	DisplayClosed      DisplayStatus = "Closed"
	DisplayOpenSoon    DisplayStatus = "Applications open soon"
)

// closingSoonDays is how many days before the deadline a course starts "Closing soon".
const closingSoonDays = 7

// DeriveStatus computes what visitors see from the stored status and the application deadline.
// The deadline is inclusive: applications close at 23:59:59 of that day in now's location.
// It never changes stored data.
func DeriveStatus(stored Status, deadline string, now time.Time) DisplayStatus {
	fallback := DisplayOpenSoon
	if stored != "" {
		fallback = DisplayStatus(stored)
	}

	end, ok := deadlineEnd(deadline, now.Location())
	if !ok {
		return fallback
	}
	if now.After(end) {
		return DisplayClosed
	}
	days := int(math.Ceil(end.Sub(now).Hours() / 24))
	if days > 0 && days <= closingSoonDays {
		return DisplayClosingSoon
	}
	return fallback
}

// deadlineEnd is the last second of the deadline day, or false when the deadline is unknown.
func deadlineEnd(deadline string, loc *time.Location) (time.Time, bool) {
	deadline = strings.TrimSpace(deadline)
	if deadline == "" || strings.EqualFold(deadline, DeadlineTBD) {
		return time.Time{}, false
	}
	d, err := civil.ParseDate(deadline)
	if err != nil {
		return time.Time{}, false
	}
	return time.Date(d.Year, d.Month, d.Day, 23, 59, 59, 0, loc), true
}

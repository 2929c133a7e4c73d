package course

import (
	"testing"
	"time"
)

func TestDeriveStatus(t *testing.T) {
	noon := time.Date(2024, time.June, 10, 12, 0, 0, 0, time.UTC)
	lastSecond := time.Date(2024, time.June, 10, 23, 59, 59, 0, time.UTC)

	tests := []struct {
		name     string
		stored   Status
		deadline string
		now      time.Time
		want     DisplayStatus
	}{
		{name: "5 days left", stored: StatusOpen, deadline: "2024-06-15", now: noon, want: DisplayClosingSoon},
		{name: "deadline passed", stored: StatusOpen, deadline: "2024-06-01", now: noon, want: DisplayClosed},
		{name: "far deadline", stored: StatusOpen, deadline: "2024-08-01", now: noon, want: DisplayOpen},
		{name: "no status no deadline", now: noon, want: DisplayOpenSoon},
		{name: "TBD keeps stored", stored: StatusClosed, deadline: "TBD", now: noon, want: DisplayClosed},
		{name: "tbd any case", stored: StatusOpen, deadline: "tbd", now: noon, want: DisplayOpen},
		{name: "TBD no status", deadline: DeadlineTBD, now: noon, want: DisplayOpenSoon},
		{name: "unparseable deadline", deadline: "next spring", now: noon, want: DisplayOpenSoon},
		{name: "deadline is today", stored: StatusOpen, deadline: "2024-06-10", now: noon, want: DisplayClosingSoon},
		{name: "deadline day last second", stored: StatusOpen, deadline: "2024-06-10", now: lastSecond, want: DisplayOpen},
		{name: "day after deadline", stored: StatusOpen, deadline: "2024-06-09", now: noon, want: DisplayClosed},
		{name: "7 days and a half", stored: StatusOpen, deadline: "2024-06-17", now: noon, want: DisplayOpen},
		{name: "exactly 7 days", stored: StatusOpen, deadline: "2024-06-17", now: lastSecond, want: DisplayClosingSoon},
		{name: "closed but far deadline", stored: StatusClosed, deadline: "2024-08-01", now: noon, want: DisplayClosed},
		{name: "open soon past deadline", stored: StatusOpenSoon, deadline: "2024-05-01", now: noon, want: DisplayClosed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveStatus(tt.stored, tt.deadline, tt.now); got != tt.want {
				t.Errorf("DeriveStatus() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDeriveStatus_localEndOfDay(t *testing.T) {
	yerevan := time.FixedZone("AMT", 4*60*60)

	// 20:00 UTC on the deadline day is already the next day in UTC+4
	now := time.Date(2024, time.June, 10, 20, 0, 0, 0, time.UTC).In(yerevan)
	if got := DeriveStatus(StatusOpen, "2024-06-10", now); got != DisplayClosed {
		t.Errorf("DeriveStatus() = %q, want %q", got, DisplayClosed)
	}
}

package testdate

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
)

func date(y, m, d int) civil.Date {
	return civil.Date{Year: y, Month: time.Month(m), Day: d}
}

func TestAddMonths(t *testing.T) {
	tests := []struct {
		name string
		d    civil.Date
		n    int
		want civil.Date
	}{
		{name: "same day of month", d: date(2024, 1, 15), n: 6, want: date(2024, 7, 15)},
		{name: "clamped to february", d: date(2023, 8, 31), n: 6, want: date(2024, 2, 29)},
		{name: "clamped to non leap february", d: date(2024, 8, 31), n: 6, want: date(2025, 2, 28)},
		{name: "clamped to 30 day month", d: date(2024, 3, 31), n: 6, want: date(2024, 9, 30)},
		{name: "year rollover", d: date(2024, 10, 10), n: 6, want: date(2025, 4, 10)},
		{name: "leap day forward", d: date(2024, 2, 29), n: 12, want: date(2025, 2, 28)},
		{name: "backwards", d: date(2024, 3, 31), n: -1, want: date(2024, 2, 29)},
		{name: "backwards across year", d: date(2024, 1, 15), n: -13, want: date(2022, 12, 15)},
		{name: "zero", d: date(2024, 5, 5), n: 0, want: date(2024, 5, 5)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AddMonths(tt.d, tt.n); got != tt.want {
				t.Errorf("AddMonths(%s, %d) = %s, want %s", tt.d, tt.n, got, tt.want)
			}
		})
	}
}

func TestCheckRange(t *testing.T) {
	tests := []struct {
		name       string
		start, end civil.Date
		wantErr    error
	}{
		{name: "single day", start: date(2024, 7, 1), end: date(2024, 7, 1)},
		{name: "exactly six months", start: date(2024, 6, 10), end: date(2024, 12, 10)},
		{name: "six months and a day", start: date(2024, 6, 10), end: date(2024, 12, 11), wantErr: ErrRangeTooLarge},
		{name: "clamped boundary", start: date(2024, 8, 31), end: date(2025, 2, 28)},
		{name: "past clamped boundary", start: date(2024, 8, 31), end: date(2025, 3, 1), wantErr: ErrRangeTooLarge},
		{name: "inverted", start: date(2024, 7, 2), end: date(2024, 7, 1), wantErr: ErrInvalidRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := checkRange(tt.start, tt.end); err != tt.wantErr {
				t.Errorf("checkRange() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestExpandRange(t *testing.T) {
	today := date(2024, 6, 10)
	tests := []struct {
		name       string
		start, end civil.Date
		wantDays   int
		wantPast   int
		wantFirst  civil.Date
	}{
		{name: "future", start: date(2024, 7, 1), end: date(2024, 7, 3), wantDays: 3, wantFirst: date(2024, 7, 1)},
		{name: "starts three days ago", start: date(2024, 6, 7), end: date(2024, 6, 12), wantDays: 3, wantPast: 3, wantFirst: today},
		{name: "starts yesterday", start: date(2024, 6, 9), end: date(2024, 6, 9), wantPast: 1},
		{name: "includes leap day", start: date(2028, 2, 28), end: date(2028, 3, 1), wantDays: 3, wantFirst: date(2028, 2, 28)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			days, past := expandRange(tt.start, tt.end, today)
			if len(days) != tt.wantDays || past != tt.wantPast {
				t.Fatalf("expandRange() = %d days, %d past, want %d, %d", len(days), past, tt.wantDays, tt.wantPast)
			}
			if tt.wantDays > 0 && days[0] != tt.wantFirst {
				t.Errorf("expandRange() first day = %s, want %s", days[0], tt.wantFirst)
			}
		})
	}

	days, _ := expandRange(date(2028, 2, 28), date(2028, 3, 1), today)
	if days[1] != date(2028, 2, 29) {
		t.Errorf("expandRange() skipped the leap day, got %s", days[1])
	}
}

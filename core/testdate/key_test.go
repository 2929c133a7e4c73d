package testdate

import (
	"testing"

	"cloud.google.com/go/civil"
)

func TestEncodeKey(t *testing.T) {
	date := civil.Date{Year: 2024, Month: 7, Day: 1}
	if got := EncodeKey(ExamTOEFL, date); got != "toefl_2024-07-01" {
		t.Errorf("EncodeKey() = %q, want %q", got, "toefl_2024-07-01")
	}
}

func TestKeyRoundTrip(t *testing.T) {
	start := civil.Date{Year: 2023, Month: 12, Day: 25}
	seen := make(map[string]struct{})
	for _, exam := range ExamTypes {
		for d := start; d.Before(start.AddDays(400)); d = d.AddDays(1) {
			key := EncodeKey(exam, d)
			if _, dup := seen[key]; dup {
				t.Fatalf("EncodeKey(%s, %s) = %q collides", exam, d, key)
			}
			seen[key] = struct{}{}

			gotExam, gotDate, err := DecodeKey(key)
			if err != nil {
				t.Fatalf("DecodeKey(%q) error = %v", key, err)
			}
			if gotExam != exam || gotDate != d {
				t.Errorf("DecodeKey(%q) = (%s, %s), want (%s, %s)", key, gotExam, gotDate, exam, d)
			}
		}
	}
}

func TestDecodeKey_malformed(t *testing.T) {
	tests := []string{
		"",
		"toefl",
		"_2024-07-01",
		"toefl-2024-07-01",
		"ielts_2024-07-01",
		"TOEFL_2024-07-01",
		"toefl_2024-7-1",
		"toefl_2024-02-30",
		"toefl_2024-07-01_x",
	}
	for _, key := range tests {
		t.Run(key, func(t *testing.T) {
			if _, _, err := DecodeKey(key); err != ErrMalformedKey {
				t.Errorf("DecodeKey(%q) error = %v, want %v", key, err, ErrMalformedKey)
			}
		})
	}
}

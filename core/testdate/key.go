package testdate

import (
	"strings"

	"cloud.google.com/go/civil"
)

const keySep = "_"

// EncodeKey returns the identity of the (exam, date) pair, eg. "toefl_2024-07-01".
// Exam types never contain the separator and ISO dates are fixed width, so distinct pairs never collide.
func EncodeKey(exam ExamType, date civil.Date) string {
	return string(exam) + keySep + date.String()
}

// DecodeKey is the inverse of EncodeKey.
func DecodeKey(key string) (ExamType, civil.Date, error) {
	i := strings.Index(key, keySep)
	if i <= 0 {
		return "", civil.Date{}, ErrMalformedKey
	}
	exam := ExamType(key[:i])
	if !exam.IsValid() {
		return "", civil.Date{}, ErrMalformedKey
	}
	raw := key[i+len(keySep):]
	if len(raw) != len("2006-01-02") {
		return "", civil.Date{}, ErrMalformedKey
	}
	date, err := civil.ParseDate(raw)
	if err != nil {
		return "", civil.Date{}, ErrMalformedKey
	}
	return exam, date, nil
}

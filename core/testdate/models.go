package testdate

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/pkg/errors"

	"github.com/examcenter/backend/core"
)

// ExamType is one of the exams the center administers.
type ExamType string

const (
	ExamTOEFL ExamType = "toefl"
	ExamGRE   ExamType = "gre"
	ExamACT   ExamType = "act"
)

var ExamTypes = []ExamType{ExamTOEFL, ExamGRE, ExamACT}

func (e ExamType) IsValid() bool {
	switch e {
	case ExamTOEFL, ExamGRE, ExamACT:
		return true
	}
	return false
}

func ParseExamType(s string) (ExamType, error) {
	e := ExamType(core.CleanString(s, true /* lower */))
	if !e.IsValid() {
		return "", ErrUnknownExam
	}
	return e, nil
}

// State is the lifecycle position of a TestDate.
type State int

const (
	StateActive State = iota
	StateDeleted
)

func (s State) String() string {
	if s == StateDeleted {
		return "deleted"
	}
	return "active"
}

// TestDate is one exam offering on one calendar day.
// Exam and Date never change once the record exists.
type TestDate struct {
	Exam      ExamType   `json:"exam"`
	Date      civil.Date `json:"date"`
	Sessions  int        `json:"sessions"`
	Note      string     `json:"note,omitempty"`
	IsActive  bool       `json:"is_active"`
	DeletedAt *time.Time `json:"deleted_at"`
	CreatedAt time.Time  `json:"created_at"` // UTC
	UpdatedAt time.Time  `json:"updated_at"` // UTC
	CreatedBy string     `json:"created_by,omitempty"`
	UpdatedBy string     `json:"updated_by,omitempty"`
}

func (td TestDate) Key() string { return EncodeKey(td.Exam, td.Date) }

func (td TestDate) State() State {
	if td.DeletedAt != nil {
		return StateDeleted
	}
	return StateActive
}

func (td TestDate) IsDeleted() bool { return td.State() == StateDeleted }

// Delete moves an active record to StateDeleted. Deleting a deleted record changes nothing.
func (td TestDate) Delete(at time.Time, actor string) TestDate {
	if td.IsDeleted() {
		return td
	}
	at = at.UTC()
	td.DeletedAt = &at
	td.UpdatedAt = at
	td.UpdatedBy = actor
	return td
}

// Restore brings a deleted record back with fresh sessions and note.
// CreatedAt and CreatedBy keep their original values.
func (td TestDate) Restore(sessions int, note string, at time.Time, actor string) TestDate {
	td.DeletedAt = nil
	td.Sessions = sessions
	td.Note = note
	td.IsActive = true
	td.UpdatedAt = at.UTC()
	td.UpdatedBy = actor
	return td
}

// Patch holds the mutable fields of a live record; nil fields are left unchanged.
type Patch struct {
	Sessions  *int
	IsActive  *bool
	UpdatedAt time.Time
	UpdatedBy string
}

func (p Patch) Apply(td TestDate) TestDate {
	if p.Sessions != nil {
		td.Sessions = *p.Sessions
	}
	if p.IsActive != nil {
		td.IsActive = *p.IsActive
	}
	td.UpdatedAt = p.UpdatedAt.UTC()
	td.UpdatedBy = p.UpdatedBy
	return td
}

// Update contains the fields an admin may change on a live TestDate.
type Update struct {
	Sessions *int  `json:"sessions" validate:"omitempty,oneof=1 2"`
	IsActive *bool `json:"is_active"`
}

// NewTestDate contains information needed to create a single TestDate.
type NewTestDate struct {
	Exam     ExamType `json:"exam" validate:"required,oneof=toefl gre act"`
	Date     string   `json:"date" validate:"required,isodate"`
	Sessions int      `json:"sessions" validate:"required,oneof=1 2"`
	Note     string   `json:"note" validate:"max=500"`
}

func (nt *NewTestDate) Clean() {
	nt.Exam = ExamType(core.CleanString(string(nt.Exam), true /* lower */))
	nt.Date = core.CleanString(nt.Date)
	nt.Note = core.CleanString(nt.Note)
}

// BulkTestDates describes a contiguous range of days to publish for one exam.
type BulkTestDates struct {
	Exam      ExamType `json:"exam" validate:"required,oneof=toefl gre act"`
	StartDate string   `json:"start_date" validate:"required,isodate"`
	EndDate   string   `json:"end_date" validate:"required,isodate"`
	Sessions  int      `json:"sessions" validate:"required,oneof=1 2"`
	Note      string   `json:"note" validate:"max=500"`
}

func (bt *BulkTestDates) Clean() {
	bt.Exam = ExamType(core.CleanString(string(bt.Exam), true /* lower */))
	bt.StartDate = core.CleanString(bt.StartDate)
	bt.EndDate = core.CleanString(bt.EndDate)
	bt.Note = core.CleanString(bt.Note)
}

// BulkResult counts what happened to every day of a bulk range.
type BulkResult struct {
	Created          int `json:"created"`
	DuplicateSkipped int `json:"duplicate_skipped"`
	PastSkipped      int `json:"past_skipped"`
}

// QueryFilter selects the TestDates of one exam. Zero From/To leave the range open.
type QueryFilter struct {
	Exam           ExamType
	From           civil.Date
	To             civil.Date
	ActiveOnly     bool
	IncludeDeleted bool
}

// Match reports whether td passes every filter condition.
func (f QueryFilter) Match(td TestDate) bool {
	if td.Exam != f.Exam {
		return false
	}
	if td.IsDeleted() && !f.IncludeDeleted {
		return false
	}
	if f.ActiveOnly && (!td.IsActive || td.IsDeleted()) {
		return false
	}
	if f.From.IsValid() && td.Date.Before(f.From) {
		return false
	}
	if f.To.IsValid() && td.Date.After(f.To) {
		return false
	}
	return true
}

func parseDate(field, s string) (civil.Date, error) {
	d, err := civil.ParseDate(s)
	if err != nil {
		return civil.Date{}, core.NewValidationError(
			errors.Wrap(err, "parsing "+field),
			core.FieldError{Field: field, Error: field + " must be a valid date in YYYY-MM-DD format"},
		)
	}
	return d, nil
}

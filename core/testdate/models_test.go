package testdate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTestDate_lifecycle(t *testing.T) {
	created := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	td := TestDate{
		Exam:      ExamGRE,
		Date:      date(2024, 7, 1),
		Sessions:  2,
		Note:      "morning only",
		IsActive:  false,
		CreatedAt: created,
		UpdatedAt: created,
		CreatedBy: "alice@example.com",
		UpdatedBy: "alice@example.com",
	}
	assert.Equal(t, StateActive, td.State())

	deletedAt := created.Add(time.Hour)
	deleted := td.Delete(deletedAt, "bob@example.com")
	assert.Equal(t, StateDeleted, deleted.State())
	assert.Equal(t, deletedAt, *deleted.DeletedAt)
	assert.Equal(t, "bob@example.com", deleted.UpdatedBy)

	again := deleted.Delete(deletedAt.Add(time.Hour), "carol@example.com")
	assert.Equal(t, deleted, again, "deleting twice must not move deleted_at")

	restoredAt := deletedAt.Add(24 * time.Hour)
	restored := deleted.Restore(1, "", restoredAt, "carol@example.com")
	assert.Equal(t, StateActive, restored.State())
	assert.Nil(t, restored.DeletedAt)
	assert.True(t, restored.IsActive)
	assert.Equal(t, 1, restored.Sessions)
	assert.Equal(t, "", restored.Note)
	assert.Equal(t, created, restored.CreatedAt)
	assert.Equal(t, "alice@example.com", restored.CreatedBy)
	assert.Equal(t, restoredAt, restored.UpdatedAt)
	assert.Equal(t, td.Key(), restored.Key())
}

func TestQueryFilter_Match(t *testing.T) {
	at := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	live := TestDate{Exam: ExamTOEFL, Date: date(2024, 7, 2), IsActive: true}
	hidden := TestDate{Exam: ExamTOEFL, Date: date(2024, 7, 2)}
	gone := TestDate{Exam: ExamTOEFL, Date: date(2024, 7, 2), IsActive: true, DeletedAt: &at}

	tests := []struct {
		name   string
		filter QueryFilter
		td     TestDate
		want   bool
	}{
		{name: "live", filter: QueryFilter{Exam: ExamTOEFL}, td: live, want: true},
		{name: "other exam", filter: QueryFilter{Exam: ExamACT}, td: live},
		{name: "inactive listed", filter: QueryFilter{Exam: ExamTOEFL}, td: hidden, want: true},
		{name: "inactive excluded", filter: QueryFilter{Exam: ExamTOEFL, ActiveOnly: true}, td: hidden},
		{name: "deleted excluded", filter: QueryFilter{Exam: ExamTOEFL}, td: gone},
		{name: "deleted included", filter: QueryFilter{Exam: ExamTOEFL, IncludeDeleted: true}, td: gone, want: true},
		{name: "deleted never active", filter: QueryFilter{Exam: ExamTOEFL, IncludeDeleted: true, ActiveOnly: true}, td: gone},
		{name: "from inclusive", filter: QueryFilter{Exam: ExamTOEFL, From: date(2024, 7, 2)}, td: live, want: true},
		{name: "before from", filter: QueryFilter{Exam: ExamTOEFL, From: date(2024, 7, 3)}, td: live},
		{name: "to inclusive", filter: QueryFilter{Exam: ExamTOEFL, To: date(2024, 7, 2)}, td: live, want: true},
		{name: "after to", filter: QueryFilter{Exam: ExamTOEFL, To: date(2024, 7, 1)}, td: live},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Match(tt.td); got != tt.want {
				t.Errorf("Match() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseExamType(t *testing.T) {
	tests := []struct {
		in      string
		want    ExamType
		wantErr bool
	}{
		{in: "toefl", want: ExamTOEFL},
		{in: " GRE ", want: ExamGRE},
		{in: "Act", want: ExamACT},
		{in: "ielts", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseExamType(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseExamType() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseExamType() = %q, want %q", got, tt.want)
			}
		})
	}
}

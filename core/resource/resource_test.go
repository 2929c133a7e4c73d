package resource

import (
	"testing"
	"time"
)

func TestPickBest(t *testing.T) {
	t0 := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	resources := []Resource{
		{ID: "form-old", Category: CategoryApplicationForm, Order: 1, UpdatedAt: t0},
		{ID: "form-new", Category: CategoryApplicationForm, Order: 1, UpdatedAt: t0.Add(time.Hour)},
		{ID: "form-late", Category: CategoryApplicationForm, Order: 5, UpdatedAt: t0.Add(48 * time.Hour)},
		{ID: "task", Category: CategoryPreInterviewTask, Order: 3, UpdatedAt: t0},
		{ID: "task-first", Category: CategoryPreInterviewTask, Order: 0, UpdatedAt: t0},
		{ID: "misc", Category: CategoryOther, Order: -1, UpdatedAt: t0},
	}

	tests := []struct {
		cat    Category
		wantID string
	}{
		{cat: CategoryApplicationForm, wantID: "form-new"},
		{cat: CategoryPreInterviewTask, wantID: "task-first"},
		{cat: CategoryOther, wantID: "misc"},
	}
	for _, tt := range tests {
		t.Run(string(tt.cat), func(t *testing.T) {
			got := pickBest(resources, tt.cat)
			if got == nil || got.ID != tt.wantID {
				t.Errorf("pickBest(%s) = %v, want %s", tt.cat, got, tt.wantID)
			}
		})
	}

	if got := pickBest(resources[3:], CategoryApplicationForm); got != nil {
		t.Errorf("pickBest() = %v, want nil", got)
	}
}

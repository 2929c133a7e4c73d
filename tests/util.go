package testutil

import (
	"context"
	"testing"
	"time"

	"cloud.google.com/go/civil"

	"github.com/examcenter/backend/core"
	"github.com/examcenter/backend/core/course"
	"github.com/examcenter/backend/core/resource"
	"github.com/examcenter/backend/core/testdate"
	"github.com/examcenter/backend/core/trainer"
)

const DefaultActor = "seed@example.com"

// NewConfig returns a config suited to tests: in-memory storage, quiet server, fixed secret.
func NewConfig() *core.Config {
	conf := &core.Config{
		Env:               "TEST",
		TestMode:          true,
		AppName:           "Exam Center",
		SecretKey:         "test-secret",
		TimeZone:          "UTC",
		FrontendBaseURL:   "http://localhost:3000",
		AdminEmails:       "admin@example.com, Second@Example.com",
		ContactRecipients: "desk@example.com",
	}
	conf.Server.JWTExpirationDelta = time.Hour
	conf.Server.JWTRefreshExpirationDelta = 24 * time.Hour
	conf.Server.DisableReqLogs = true
	conf.Database.Engine = "memory"
	return conf
}

func CreateTestDate(
	t *testing.T,
	repo testdate.Repository,
	exam testdate.ExamType,
	date civil.Date,
	sessions int,
	isActive bool,
) testdate.TestDate {
	now := time.Now().UTC()
	td := testdate.TestDate{
		Exam:      exam,
		Date:      date,
		Sessions:  sessions,
		IsActive:  isActive,
		CreatedAt: now,
		UpdatedAt: now,
		CreatedBy: DefaultActor,
		UpdatedBy: DefaultActor,
	}
	if _, err := repo.UpsertTestDate(context.Background(), td); err != nil {
		t.Fatalf("CreateTestDate() failed: %v", err)
	}
	td, err := repo.GetTestDate(context.Background(), exam, date)
	if err != nil {
		t.Fatalf("CreateTestDate() failed: %v", err)
	}
	return td
}

func CreateCourse(
	t *testing.T,
	repo course.Repository,
	format course.Format,
	start, end civil.Date,
	deadline string,
	status course.Status,
) course.Course {
	now := time.Now().UTC()
	c, err := repo.CreateCourse(context.Background(), course.Course{
		Format:              format,
		StartDate:           start,
		EndDate:             end,
		Schedule:            "Mon/Wed 18:00-20:00",
		PriceAMD:            120000,
		ApplicationDeadline: deadline,
		Status:              status,
		CreatedAt:           now,
		UpdatedAt:           now,
	})
	if err != nil {
		t.Fatalf("CreateCourse() failed: %v", err)
	}
	return c
}

func CreateTrainer(t *testing.T, repo trainer.Repository, name, photoPath string, order int, isActive bool) trainer.Trainer {
	now := time.Now().UTC()
	tr, err := repo.CreateTrainer(context.Background(), trainer.Trainer{
		Name:      name,
		TitleLine: "Certified " + name,
		PhotoPath: photoPath,
		Order:     order,
		IsActive:  isActive,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateTrainer() failed: %v", err)
	}
	return tr
}

func CreateResource(
	t *testing.T,
	repo resource.Repository,
	cat resource.Category,
	title, filePath string,
	order int,
	isActive bool,
	updatedAt ...time.Time,
) resource.Resource {
	tstamp := time.Now().UTC()
	if len(updatedAt) > 0 {
		tstamp = updatedAt[0].UTC()
	}
	r, err := repo.CreateResource(context.Background(), resource.Resource{
		Category:  cat,
		Title:     title,
		FilePath:  filePath,
		Order:     order,
		IsActive:  isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	})
	if err != nil {
		t.Fatalf("CreateResource() failed: %v", err)
	}
	return r
}

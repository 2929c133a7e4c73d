package course

import (
	"context"
	"errors"
	"time"

	"cloud.google.com/go/civil"
	pkgerrors "github.com/pkg/errors"
)

var (
	NowFunc = time.Now // mockable

	// errors
	ErrNotFound       = errors.New("course not found")
	ErrEndBeforeStart = errors.New("end_date must not be before start_date")
)

type (
	Repository interface {
		CreateCourse(ctx context.Context, c Course) (Course, error)
		// QueryCourses returns every course ordered by start date.
		QueryCourses(ctx context.Context) ([]Course, error)
		GetCourse(ctx context.Context, id string) (Course, error)
		UpdateCourse(ctx context.Context, c Course) (Course, error)
		DeleteCourse(ctx context.Context, id string) error
	}

	Service interface {
		Create(ctx context.Context, nc NewCourse) (Course, error)
		QueryAll(ctx context.Context) ([]Course, error)
		// Listings decorates every course with the status visitors see right now.
		Listings(ctx context.Context) ([]Listing, error)
		GetByID(ctx context.Context, id string) (Course, error)
		Update(ctx context.Context, orig Course, uc UpdateCourse) (Course, error)
		Delete(ctx context.Context, id string) error
	}

	service struct {
		repo Repository
		loc  *time.Location
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, loc *time.Location) Service {
	if loc == nil {
		loc = time.Local
	}
	return &service{repo: repo, loc: loc}
}

func (svc *service) Create(ctx context.Context, nc NewCourse) (Course, error) {
	now := NowFunc().UTC()
	start, _ := civil.ParseDate(nc.StartDate)
	end, _ := civil.ParseDate(nc.EndDate)
	c := Course{
		Format:                       nc.Format,
		StartDate:                    start,
		EndDate:                      end,
		Schedule:                     nc.Schedule,
		PriceAMD:                     nc.PriceAMD,
		ApplicationDeadline:          nc.ApplicationDeadline,
		Status:                       nc.Status,
		Seats:                        nc.Seats,
		EarlyBirdApplicationDeadline: nc.EarlyBirdApplicationDeadline,
		EarlyBirdDiscountAMD:         nc.EarlyBirdDiscountAMD,
		PaymentDeadline:              nc.PaymentDeadline,
		EarlyBirdPaymentDeadline:     nc.EarlyBirdPaymentDeadline,
		CreatedAt:                    now,
		UpdatedAt:                    now,
	}
	return svc.repo.CreateCourse(ctx, c)
}

func (svc *service) QueryAll(ctx context.Context) ([]Course, error) {
	return svc.repo.QueryCourses(ctx)
}

func (svc *service) Listings(ctx context.Context) ([]Listing, error) {
	courses, err := svc.repo.QueryCourses(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "querying courses")
	}
	now := NowFunc().In(svc.loc)
	listings := make([]Listing, 0, len(courses))
	for _, c := range courses {
		listings = append(listings, Listing{
			Course:        c,
			DisplayStatus: DeriveStatus(c.Status, c.ApplicationDeadline, now),
		})
	}
	return listings, nil
}

func (svc *service) GetByID(ctx context.Context, id string) (Course, error) {
	return svc.repo.GetCourse(ctx, id)
}

func (svc *service) Update(ctx context.Context, orig Course, uc UpdateCourse) (Course, error) {
	c := uc.Apply(orig)
	c.UpdatedAt = NowFunc().UTC()
	return svc.repo.UpdateCourse(ctx, c)
}

func (svc *service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteCourse(ctx, id)
}

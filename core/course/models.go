package course

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/go-playground/validator/v10"

	"github.com/examcenter/backend/core"
)

type Format string

const (
	FormatFullTime Format = "Full-time"
	FormatPartTime Format = "Part-time"
)

// Status is the enrollment status an admin stores on a course.
type Status string

const (
	StatusOpen     Status = "Open"
	StatusClosed   Status = "Closed"
	StatusOpenSoon Status = "Applications open soon"
)

var Statuses = []Status{StatusOpen, StatusClosed, StatusOpenSoon}

func (s Status) IsValid() bool {
	for _, st := range Statuses {
		if s == st {
			return true
		}
	}
	return false
}

// DeadlineTBD marks an application deadline that is not known yet.
const DeadlineTBD = "TBD"

type Course struct {
	ID                           string     `json:"id"`
	Format                       Format     `json:"format"`
	StartDate                    civil.Date `json:"start_date"`
	EndDate                      civil.Date `json:"end_date"`
	Schedule                     string     `json:"schedule"`
	PriceAMD                     int        `json:"price_amd"`
	ApplicationDeadline          string     `json:"application_deadline"` // YYYY-MM-DD or TBD
	Status                       Status     `json:"status"`
	Seats                        *int       `json:"seats,omitempty"`
	EarlyBirdApplicationDeadline string     `json:"early_bird_application_deadline,omitempty"`
	EarlyBirdDiscountAMD         *int       `json:"early_bird_discount_amd,omitempty"`
	PaymentDeadline              string     `json:"payment_deadline,omitempty"`
	EarlyBirdPaymentDeadline     string     `json:"early_bird_payment_deadline,omitempty"`
	CreatedAt                    time.Time  `json:"created_at"` // UTC
	UpdatedAt                    time.Time  `json:"updated_at"` // UTC
}

// HasEarlyBird reports whether the course advertises an early-bird offer.
func (c Course) HasEarlyBird() bool {
	return c.EarlyBirdApplicationDeadline != "" && c.EarlyBirdDiscountAMD != nil
}

// Listing is a course as shown on the public site.
type Listing struct {
	Course
	DisplayStatus DisplayStatus `json:"display_status"`
}

// NewCourse contains information needed to create a new Course.
type NewCourse struct {
	Format                       Format `json:"format" validate:"required,oneof=Full-time Part-time"`
	StartDate                    string `json:"start_date" validate:"required,isodate"`
	EndDate                      string `json:"end_date" validate:"required,isodate"`
	Schedule                     string `json:"schedule" validate:"max=200"`
	PriceAMD                     int    `json:"price_amd" validate:"min=0"`
	ApplicationDeadline          string `json:"application_deadline" validate:"required,deadline"`
	Status                       Status `json:"status" validate:"required,coursestatus"`
	Seats                        *int   `json:"seats" validate:"omitempty,min=0"`
	EarlyBirdApplicationDeadline string `json:"early_bird_application_deadline" validate:"omitempty,isodate"`
	EarlyBirdDiscountAMD         *int   `json:"early_bird_discount_amd" validate:"omitempty,min=0"`
	PaymentDeadline              string `json:"payment_deadline" validate:"omitempty,isodate"`
	EarlyBirdPaymentDeadline     string `json:"early_bird_payment_deadline" validate:"omitempty,isodate"`
}

func (nc *NewCourse) Validate(validate *validator.Validate) error {
	nc.Schedule = core.CleanString(nc.Schedule)
	nc.ApplicationDeadline = core.CleanString(nc.ApplicationDeadline)
	if err := validate.Struct(nc); err != nil {
		return err
	}
	return checkDates(nc.StartDate, nc.EndDate)
}

// UpdateCourse defines what information may be provided to modify an existing Course.
// Nil fields keep their current value; empty optional deadlines clear them.
type UpdateCourse struct {
	Format                       *Format `json:"format" validate:"omitempty,oneof=Full-time Part-time"`
	StartDate                    *string `json:"start_date" validate:"omitempty,isodate"`
	EndDate                      *string `json:"end_date" validate:"omitempty,isodate"`
	Schedule                     *string `json:"schedule" validate:"omitempty,max=200"`
	PriceAMD                     *int    `json:"price_amd" validate:"omitempty,min=0"`
	ApplicationDeadline          *string `json:"application_deadline" validate:"omitempty,deadline"`
	Status                       *Status `json:"status" validate:"omitempty,coursestatus"`
	Seats                        *int    `json:"seats" validate:"omitempty,min=0"`
	EarlyBirdApplicationDeadline *string `json:"early_bird_application_deadline" validate:"omitempty,isodate"`
	EarlyBirdDiscountAMD         *int    `json:"early_bird_discount_amd" validate:"omitempty,min=0"`
	PaymentDeadline              *string `json:"payment_deadline" validate:"omitempty,isodate"`
	EarlyBirdPaymentDeadline     *string `json:"early_bird_payment_deadline" validate:"omitempty,isodate"`
}

func (uc *UpdateCourse) Validate(validate *validator.Validate, orig Course) error {
	if err := validate.Struct(uc); err != nil {
		return err
	}
	start, end := orig.StartDate.String(), orig.EndDate.String()
	if uc.StartDate != nil {
		start = *uc.StartDate
	}
	if uc.EndDate != nil {
		end = *uc.EndDate
	}
	return checkDates(start, end)
}

// Apply returns orig with every provided field overwritten.
func (uc UpdateCourse) Apply(orig Course) Course {
	c := orig
	if uc.Format != nil {
		c.Format = *uc.Format
	}
	if uc.StartDate != nil {
		c.StartDate, _ = civil.ParseDate(*uc.StartDate)
	}
	if uc.EndDate != nil {
		c.EndDate, _ = civil.ParseDate(*uc.EndDate)
	}
	if uc.Schedule != nil {
		c.Schedule = core.CleanString(*uc.Schedule)
	}
	if uc.PriceAMD != nil {
		c.PriceAMD = *uc.PriceAMD
	}
	if uc.ApplicationDeadline != nil {
		c.ApplicationDeadline = core.CleanString(*uc.ApplicationDeadline)
	}
	if uc.Status != nil {
		c.Status = *uc.Status
	}
	if uc.Seats != nil {
		c.Seats = uc.Seats
	}
	if uc.EarlyBirdApplicationDeadline != nil {
		c.EarlyBirdApplicationDeadline = *uc.EarlyBirdApplicationDeadline
	}
	if uc.EarlyBirdDiscountAMD != nil {
		c.EarlyBirdDiscountAMD = uc.EarlyBirdDiscountAMD
	}
	if uc.PaymentDeadline != nil {
		c.PaymentDeadline = *uc.PaymentDeadline
	}
	if uc.EarlyBirdPaymentDeadline != nil {
		c.EarlyBirdPaymentDeadline = *uc.EarlyBirdPaymentDeadline
	}
	return c
}

func checkDates(start, end string) error {
	s, err := civil.ParseDate(start)
	if err != nil {
		return core.NewValidationError(err, core.FieldError{Field: "start_date", Error: "start_date must be a valid date in YYYY-MM-DD format"})
	}
	e, err := civil.ParseDate(end)
	if err != nil {
		return core.NewValidationError(err, core.FieldError{Field: "end_date", Error: "end_date must be a valid date in YYYY-MM-DD format"})
	}
	if e.Before(s) {
		return core.NewValidationError(ErrEndBeforeStart, core.FieldError{Field: "end_date", Error: ErrEndBeforeStart.Error()})
	}
	return nil
}

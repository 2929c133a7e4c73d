package sqlxrepos

import (
	"context"
	"time"

	"cloud.google.com/go/civil"
	"github.com/jmoiron/sqlx"
	"github.com/volatiletech/null/v8"

	"github.com/examcenter/backend/core"
	"github.com/examcenter/backend/core/course"
)

type courseRow struct {
	ID                           string      `db:"id"`
	Format                       string      `db:"format"`
	StartDate                    time.Time   `db:"start_date"`
	EndDate                      time.Time   `db:"end_date"`
	Schedule                     string      `db:"schedule"`
	PriceAMD                     int         `db:"price_amd"`
	ApplicationDeadline          string      `db:"application_deadline"`
	Status                       string      `db:"status"`
	Seats                        null.Int    `db:"seats"`
	EarlyBirdApplicationDeadline null.String `db:"early_bird_application_deadline"`
	EarlyBirdDiscountAMD         null.Int    `db:"early_bird_discount_amd"`
	PaymentDeadline              null.String `db:"payment_deadline"`
	EarlyBirdPaymentDeadline     null.String `db:"early_bird_payment_deadline"`
	CreatedAt                    time.Time   `db:"created_at"`
	UpdatedAt                    time.Time   `db:"updated_at"`
}

// courseArgs is the named-parameter view of a course.
type courseArgs struct {
	courseRow
	Start string `db:"start"`
	End   string `db:"end"`
}

func newCourseArgs(c course.Course) courseArgs {
	return courseArgs{
		courseRow: courseRow{
			ID:                           c.ID,
			Format:                       string(c.Format),
			Schedule:                     c.Schedule,
			PriceAMD:                     c.PriceAMD,
			ApplicationDeadline:          c.ApplicationDeadline,
			Status:                       string(c.Status),
			Seats:                        null.IntFromPtr(c.Seats),
			EarlyBirdApplicationDeadline: optString(c.EarlyBirdApplicationDeadline),
			EarlyBirdDiscountAMD:         null.IntFromPtr(c.EarlyBirdDiscountAMD),
			PaymentDeadline:              optString(c.PaymentDeadline),
			EarlyBirdPaymentDeadline:     optString(c.EarlyBirdPaymentDeadline),
			CreatedAt:                    c.CreatedAt.UTC(),
			UpdatedAt:                    c.UpdatedAt.UTC(),
		},
		Start: c.StartDate.String(),
		End:   c.EndDate.String(),
	}
}

func (row courseRow) toCourse() course.Course {
	return course.Course{
		ID:                           row.ID,
		Format:                       course.Format(row.Format),
		StartDate:                    civil.DateOf(row.StartDate),
		EndDate:                      civil.DateOf(row.EndDate),
		Schedule:                     row.Schedule,
		PriceAMD:                     row.PriceAMD,
		ApplicationDeadline:          row.ApplicationDeadline,
		Status:                       course.Status(row.Status),
		Seats:                        row.Seats.Ptr(),
		EarlyBirdApplicationDeadline: row.EarlyBirdApplicationDeadline.String,
		EarlyBirdDiscountAMD:         row.EarlyBirdDiscountAMD.Ptr(),
		PaymentDeadline:              row.PaymentDeadline.String,
		EarlyBirdPaymentDeadline:     row.EarlyBirdPaymentDeadline.String,
		CreatedAt:                    row.CreatedAt.UTC(),
		UpdatedAt:                    row.UpdatedAt.UTC(),
	}
}

func optString(s string) null.String { return null.NewString(s, s != "") }

const courseColumns = `id, format, start_date, end_date, schedule, price_amd, application_deadline, status, seats,
	early_bird_application_deadline, early_bird_discount_amd, payment_deadline, early_bird_payment_deadline,
	created_at, updated_at`

type courseRepository struct {
	db core.DBExecutor
}

var _ course.Repository = (*courseRepository)(nil)

func NewCourseRepository(db core.DBExecutor) course.Repository {
	return &courseRepository{db: db}
}

func (repo *courseRepository) CreateCourse(ctx context.Context, c course.Course) (course.Course, error) {
	c.ID = newID()
	const q = `
		INSERT INTO courses (` + courseColumns + `)
		VALUES (:id, :format, :start, :end, :schedule, :price_amd, :application_deadline, :status, :seats,
			:early_bird_application_deadline, :early_bird_discount_amd, :payment_deadline, :early_bird_payment_deadline,
			:created_at, :updated_at)`

	if _, err := sqlx.NamedExecContext(ctx, repo.db, q, newCourseArgs(c)); err != nil {
		return course.Course{}, core.NewUnavailableError(err, "inserting course")
	}
	return c, nil
}

func (repo *courseRepository) QueryCourses(ctx context.Context) ([]course.Course, error) {
	q := `SELECT ` + courseColumns + ` FROM courses` + core.OrderBy(
		core.DBOrdering{Field: "start_date", Ascending: true},
		core.DBOrdering{Field: "id", Ascending: true},
	)
	var rows []courseRow
	if err := repo.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, core.NewUnavailableError(err, "querying courses")
	}
	courses := make([]course.Course, 0, len(rows))
	for _, row := range rows {
		courses = append(courses, row.toCourse())
	}
	return courses, nil
}

func (repo *courseRepository) GetCourse(ctx context.Context, id string) (course.Course, error) {
	var row courseRow
	q := `SELECT ` + courseColumns + ` FROM courses WHERE id = $1`
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		return course.Course{}, trapNoRowsErr(err, course.ErrNotFound, "getting course")
	}
	return row.toCourse(), nil
}

func (repo *courseRepository) UpdateCourse(ctx context.Context, c course.Course) (course.Course, error) {
	const q = `
		UPDATE courses SET
			format = :format, start_date = :start, end_date = :end, schedule = :schedule,
			price_amd = :price_amd, application_deadline = :application_deadline, status = :status, seats = :seats,
			early_bird_application_deadline = :early_bird_application_deadline,
			early_bird_discount_amd = :early_bird_discount_amd,
			payment_deadline = :payment_deadline,
			early_bird_payment_deadline = :early_bird_payment_deadline,
			updated_at = :updated_at
		WHERE id = :id`

	res, err := sqlx.NamedExecContext(ctx, repo.db, q, newCourseArgs(c))
	if err != nil {
		return course.Course{}, core.NewUnavailableError(err, "updating course")
	}
	if err = checkAffected(res, course.ErrNotFound, "updating course"); err != nil {
		return course.Course{}, err
	}
	return c, nil
}

func (repo *courseRepository) DeleteCourse(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return core.NewUnavailableError(err, "deleting course")
	}
	return checkAffected(res, course.ErrNotFound, "deleting course")
}

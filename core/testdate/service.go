package testdate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/go-playground/validator/v10"
	pkgerrors "github.com/pkg/errors"

	"github.com/examcenter/backend/core"
)

var (
	NowFunc = time.Now // mockable

	// errors
	ErrNotFound        = errors.New("test date not found")
	ErrUnknownExam     = errors.New("unknown exam type")
	ErrMalformedKey    = errors.New("malformed test date key")
	ErrInvalidRange    = errors.New("start date must not be after end date")
	ErrRangeTooLarge   = fmt.Errorf("date range cannot exceed %d months", MaxRangeMonths)
	ErrBadSessions     = errors.New("sessions must be 1 or 2")
	ErrNothingToUpdate = errors.New("nothing to update")
)

type (
	Repository interface {
		// UpsertTestDate inserts td, or restores in place the deleted record holding its key.
		// It reports false, and changes nothing, when a live record already holds the key.
		UpsertTestDate(ctx context.Context, td TestDate) (bool, error)
		// GetTestDate returns the record whatever its state.
		GetTestDate(ctx context.Context, exam ExamType, date civil.Date) (TestDate, error)
		// UpdateTestDate applies p to a live record; deleted records are ErrNotFound.
		UpdateTestDate(ctx context.Context, exam ExamType, date civil.Date, p Patch) (TestDate, error)
		// DeleteTestDate soft deletes a record; already deleted records are left untouched.
		DeleteTestDate(ctx context.Context, exam ExamType, date civil.Date, at time.Time, actor string) error
		// QueryTestDates returns the matching records ordered by date.
		QueryTestDates(ctx context.Context, filter QueryFilter) ([]TestDate, error)
	}

	// Cache holds public calendar ranges. Implementations swallow their own failures:
	// a broken cache degrades to a miss, never to an error.
	Cache interface {
		// Get also returns the current generation of exam, hit or miss.
		Get(ctx context.Context, exam ExamType, from, to civil.Date) ([]TestDate, uint64, bool)
		// Set stores dates read under gen. It is a no-op once exam has been invalidated since.
		Set(ctx context.Context, exam ExamType, from, to civil.Date, gen uint64, dates []TestDate)
		// Invalidate drops every cached range of exam.
		Invalidate(ctx context.Context, exam ExamType)
	}

	Service interface {
		// Create publishes a single day. It reports false when the day already exists.
		Create(ctx context.Context, nt NewTestDate, actor string) (bool, error)
		// Generate publishes every day of a range. Days applied before a failure stay applied.
		Generate(ctx context.Context, bt BulkTestDates, actor string) (BulkResult, error)
		// Update applies every non-nil field of u in a single write.
		Update(ctx context.Context, exam ExamType, date civil.Date, u Update, actor string) (TestDate, error)
		UpdateSessions(ctx context.Context, exam ExamType, date civil.Date, sessions int, actor string) (TestDate, error)
		SetActive(ctx context.Context, exam ExamType, date civil.Date, isActive bool, actor string) (TestDate, error)
		Delete(ctx context.Context, exam ExamType, date civil.Date, actor string) error
		Query(ctx context.Context, filter QueryFilter) ([]TestDate, error)
		// Calendar returns the bookable days of exam; zero bounds default to the next MaxRangeMonths.
		Calendar(ctx context.Context, exam ExamType, from, to civil.Date) ([]TestDate, error)
		Today() civil.Date
	}

	service struct {
		repo   Repository
		cache  Cache
		logger core.Logger
		loc    *time.Location
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, cache Cache, logger core.Logger, loc *time.Location) Service {
	if cache == nil {
		cache = nopCache{}
	}
	if loc == nil {
		loc = time.Local
	}
	return &service{repo: repo, cache: cache, logger: logger, loc: loc}
}

func (nt *NewTestDate) Validate(validate *validator.Validate) error {
	nt.Clean()
	return validate.Struct(nt)
}

func (u *Update) Validate(validate *validator.Validate) error {
	if u.Sessions == nil && u.IsActive == nil {
		return core.NewValidationError(ErrNothingToUpdate)
	}
	return validate.Struct(u)
}

func (bt *BulkTestDates) Validate(validate *validator.Validate) error {
	bt.Clean()
	return validate.Struct(bt)
}

// Today is the current calendar day in the service location.
func (svc *service) Today() civil.Date {
	return civil.DateOf(NowFunc().In(svc.loc))
}

func (svc *service) upsert(ctx context.Context, exam ExamType, date civil.Date, sessions int, note, actor string) (bool, error) {
	now := NowFunc().UTC()
	td := TestDate{
		Exam:      exam,
		Date:      date,
		Sessions:  sessions,
		Note:      note,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
		CreatedBy: actor,
		UpdatedBy: actor,
	}
	return svc.repo.UpsertTestDate(ctx, td)
}

func (svc *service) Create(ctx context.Context, nt NewTestDate, actor string) (bool, error) {
	if !nt.Exam.IsValid() {
		return false, invalidExam()
	}
	if err := checkSessions(nt.Sessions); err != nil {
		return false, err
	}
	date, err := parseDate("date", nt.Date)
	if err != nil {
		return false, err
	}

	created, err := svc.upsert(ctx, nt.Exam, date, nt.Sessions, nt.Note, actor)
	if err != nil {
		return false, pkgerrors.Wrap(err, "upserting test date")
	}
	if created {
		svc.cache.Invalidate(ctx, nt.Exam)
	}
	return created, nil
}

func (svc *service) Generate(ctx context.Context, bt BulkTestDates, actor string) (BulkResult, error) {
	var res BulkResult

	if !bt.Exam.IsValid() {
		return res, invalidExam()
	}
	if err := checkSessions(bt.Sessions); err != nil {
		return res, err
	}
	start, err := parseDate("start_date", bt.StartDate)
	if err != nil {
		return res, err
	}
	end, err := parseDate("end_date", bt.EndDate)
	if err != nil {
		return res, err
	}
	if err = checkRange(start, end); err != nil {
		return res, core.NewValidationError(err, core.FieldError{Field: "end_date", Error: err.Error()})
	}

	days, past := expandRange(start, end, svc.Today())
	res.PastSkipped = past

	defer func() {
		if res.Created > 0 {
			svc.cache.Invalidate(ctx, bt.Exam)
		}
	}()

	for _, day := range days {
		created, err := svc.upsert(ctx, bt.Exam, day, bt.Sessions, bt.Note, actor)
		if err != nil {
			svc.logger.Warn(
				fmt.Sprintf("bulk generation of %s stopped at %s", bt.Exam, day),
				err,
				map[string]interface{}{"created": res.Created, "duplicate_skipped": res.DuplicateSkipped},
			)
			return res, pkgerrors.Wrapf(err, "upserting %s", EncodeKey(bt.Exam, day))
		}
		if created {
			res.Created++
		} else {
			res.DuplicateSkipped++
		}
	}
	return res, nil
}

func (svc *service) update(ctx context.Context, exam ExamType, date civil.Date, p Patch) (TestDate, error) {
	p.UpdatedAt = NowFunc().UTC()
	td, err := svc.repo.UpdateTestDate(ctx, exam, date, p)
	if err != nil {
		return TestDate{}, err
	}
	svc.cache.Invalidate(ctx, exam)
	return td, nil
}

func (svc *service) Update(ctx context.Context, exam ExamType, date civil.Date, u Update, actor string) (TestDate, error) {
	if u.Sessions == nil && u.IsActive == nil {
		return TestDate{}, core.NewValidationError(ErrNothingToUpdate)
	}
	if u.Sessions != nil {
		if err := checkSessions(*u.Sessions); err != nil {
			return TestDate{}, err
		}
	}
	return svc.update(ctx, exam, date, Patch{Sessions: u.Sessions, IsActive: u.IsActive, UpdatedBy: actor})
}

func (svc *service) UpdateSessions(ctx context.Context, exam ExamType, date civil.Date, sessions int, actor string) (TestDate, error) {
	return svc.Update(ctx, exam, date, Update{Sessions: &sessions}, actor)
}

func (svc *service) SetActive(ctx context.Context, exam ExamType, date civil.Date, isActive bool, actor string) (TestDate, error) {
	return svc.Update(ctx, exam, date, Update{IsActive: &isActive}, actor)
}

func (svc *service) Delete(ctx context.Context, exam ExamType, date civil.Date, actor string) error {
	if err := svc.repo.DeleteTestDate(ctx, exam, date, NowFunc().UTC(), actor); err != nil {
		return err
	}
	svc.cache.Invalidate(ctx, exam)
	return nil
}

func (svc *service) Query(ctx context.Context, filter QueryFilter) ([]TestDate, error) {
	if !filter.Exam.IsValid() {
		return nil, invalidExam()
	}
	return svc.repo.QueryTestDates(ctx, filter)
}

func (svc *service) Calendar(ctx context.Context, exam ExamType, from, to civil.Date) ([]TestDate, error) {
	if !exam.IsValid() {
		return nil, invalidExam()
	}
	if !from.IsValid() {
		from = svc.Today()
	}
	if !to.IsValid() {
		to = AddMonths(from, MaxRangeMonths)
	}
	if from.After(to) {
		return nil, core.NewValidationError(ErrInvalidRange, core.FieldError{Field: "to", Error: ErrInvalidRange.Error()})
	}

	dates, gen, ok := svc.cache.Get(ctx, exam, from, to)
	if ok {
		return dates, nil
	}
	dates, err := svc.repo.QueryTestDates(ctx, QueryFilter{Exam: exam, From: from, To: to, ActiveOnly: true})
	if err != nil {
		return nil, pkgerrors.Wrap(err, "querying calendar")
	}
	svc.cache.Set(ctx, exam, from, to, gen, dates)
	return dates, nil
}

func checkSessions(n int) error {
	if n != 1 && n != 2 {
		return core.NewValidationError(ErrBadSessions, core.FieldError{Field: "sessions", Error: ErrBadSessions.Error()})
	}
	return nil
}

func invalidExam() error {
	return core.NewValidationError(ErrUnknownExam, core.FieldError{Field: "exam", Error: ErrUnknownExam.Error()})
}

type nopCache struct{}

func (nopCache) Get(context.Context, ExamType, civil.Date, civil.Date) ([]TestDate, uint64, bool) {
	return nil, 0, false
}
func (nopCache) Set(context.Context, ExamType, civil.Date, civil.Date, uint64, []TestDate) {}
func (nopCache) Invalidate(context.Context, ExamType)                                      {}

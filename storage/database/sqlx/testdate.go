package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/examcenter/backend/core"
	"github.com/examcenter/backend/core/testdate"
)

type testDateRow struct {
	Key       string      `db:"key"`
	Exam      string      `db:"exam"`
	Date      time.Time   `db:"date"`
	Sessions  int         `db:"sessions"`
	Note      null.String `db:"note"`
	IsActive  bool        `db:"is_active"`
	DeletedAt null.Time   `db:"deleted_at"`
	CreatedAt time.Time   `db:"created_at"`
	UpdatedAt time.Time   `db:"updated_at"`
	CreatedBy null.String `db:"created_by"`
	UpdatedBy null.String `db:"updated_by"`
}

func (row testDateRow) toTestDate() testdate.TestDate {
	td := testdate.TestDate{
		Exam:      testdate.ExamType(row.Exam),
		Date:      civil.DateOf(row.Date),
		Sessions:  row.Sessions,
		Note:      row.Note.String,
		IsActive:  row.IsActive,
		CreatedAt: row.CreatedAt.UTC(),
		UpdatedAt: row.UpdatedAt.UTC(),
		CreatedBy: row.CreatedBy.String,
		UpdatedBy: row.UpdatedBy.String,
	}
	if row.DeletedAt.Valid {
		at := row.DeletedAt.Time.UTC()
		td.DeletedAt = &at
	}
	return td
}

const testDateColumns = `key, exam, date, sessions, note, is_active, deleted_at, created_at, updated_at, created_by, updated_by`

type testDateRepository struct {
	db core.DBExecutor
}

var _ testdate.Repository = (*testDateRepository)(nil)

func NewTestDateRepository(db core.DBExecutor) testdate.Repository {
	return &testDateRepository{db: db}
}

// UpsertTestDate runs as one statement: the conflict arm only fires on a deleted row,
// so a live row yields no RETURNING row.
func (repo *testDateRepository) UpsertTestDate(ctx context.Context, td testdate.TestDate) (bool, error) {
	const q = `
		INSERT INTO test_dates (` + testDateColumns + `)
		VALUES ($1, $2, $3::date, $4, $5, TRUE, NULL, $6, $7, $8, $9)
		ON CONFLICT (key) DO UPDATE SET
			sessions = EXCLUDED.sessions,
			note = EXCLUDED.note,
			is_active = TRUE,
			deleted_at = NULL,
			updated_at = EXCLUDED.updated_at,
			updated_by = EXCLUDED.updated_by
		WHERE test_dates.deleted_at IS NOT NULL
		RETURNING key`

	var key string
	err := repo.db.QueryRowxContext(
		ctx, q,
		td.Key(), string(td.Exam), td.Date.String(), td.Sessions,
		null.NewString(td.Note, td.Note != ""), td.CreatedAt, td.UpdatedAt,
		null.NewString(td.CreatedBy, td.CreatedBy != ""), null.NewString(td.UpdatedBy, td.UpdatedBy != ""),
	).Scan(&key)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, core.NewUnavailableError(err, "upserting test date")
	}
	return true, nil
}

func (repo *testDateRepository) GetTestDate(ctx context.Context, exam testdate.ExamType, date civil.Date) (testdate.TestDate, error) {
	var row testDateRow
	q := `SELECT ` + testDateColumns + ` FROM test_dates WHERE key = $1`
	if err := repo.db.GetContext(ctx, &row, q, testdate.EncodeKey(exam, date)); err != nil {
		return testdate.TestDate{}, trapNoRowsErr(err, testdate.ErrNotFound, "getting test date")
	}
	return row.toTestDate(), nil
}

func (repo *testDateRepository) UpdateTestDate(ctx context.Context, exam testdate.ExamType, date civil.Date, p testdate.Patch) (testdate.TestDate, error) {
	sets := []string{"updated_at = $2", "updated_by = $3"}
	args := []interface{}{testdate.EncodeKey(exam, date), p.UpdatedAt.UTC(), null.NewString(p.UpdatedBy, p.UpdatedBy != "")}
	if p.Sessions != nil {
		args = append(args, *p.Sessions)
		sets = append(sets, fmt.Sprintf("sessions = $%d", len(args)))
	}
	if p.IsActive != nil {
		args = append(args, *p.IsActive)
		sets = append(sets, fmt.Sprintf("is_active = $%d", len(args)))
	}

	q := `UPDATE test_dates SET ` + strings.Join(sets, ", ") +
		` WHERE key = $1 AND deleted_at IS NULL RETURNING ` + testDateColumns

	var row testDateRow
	if err := repo.db.GetContext(ctx, &row, q, args...); err != nil {
		return testdate.TestDate{}, trapNoRowsErr(err, testdate.ErrNotFound, "updating test date")
	}
	return row.toTestDate(), nil
}

func (repo *testDateRepository) DeleteTestDate(ctx context.Context, exam testdate.ExamType, date civil.Date, at time.Time, actor string) error {
	key := testdate.EncodeKey(exam, date)
	const q = `
		UPDATE test_dates SET deleted_at = $2, updated_at = $2, updated_by = $3
		WHERE key = $1 AND deleted_at IS NULL`

	res, err := repo.db.ExecContext(ctx, q, key, at.UTC(), null.NewString(actor, actor != ""))
	if err != nil {
		return core.NewUnavailableError(err, "deleting test date")
	}
	if err = checkAffected(res, testdate.ErrNotFound, "deleting test date"); err == testdate.ErrNotFound {
		// already deleted rows are fine, missing ones are not
		var exists bool
		if err = repo.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM test_dates WHERE key = $1)`, key); err != nil {
			return core.NewUnavailableError(err, "deleting test date")
		}
		if !exists {
			return testdate.ErrNotFound
		}
		return nil
	}
	return err
}

func (repo *testDateRepository) QueryTestDates(ctx context.Context, filter testdate.QueryFilter) ([]testdate.TestDate, error) {
	conds := []string{"exam = $1"}
	args := []interface{}{string(filter.Exam)}
	if !filter.IncludeDeleted || filter.ActiveOnly {
		conds = append(conds, "deleted_at IS NULL")
	}
	if filter.ActiveOnly {
		conds = append(conds, "is_active")
	}
	if filter.From.IsValid() {
		args = append(args, filter.From.String())
		conds = append(conds, fmt.Sprintf("date >= $%d::date", len(args)))
	}
	if filter.To.IsValid() {
		args = append(args, filter.To.String())
		conds = append(conds, fmt.Sprintf("date <= $%d::date", len(args)))
	}

	q := `SELECT ` + testDateColumns + ` FROM test_dates WHERE ` + strings.Join(conds, " AND ") +
		core.OrderBy(core.DBOrdering{Field: "date", Ascending: true})

	var rows []testDateRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, core.NewUnavailableError(err, "querying test dates")
	}
	dates := make([]testdate.TestDate, 0, len(rows))
	for _, row := range rows {
		dates = append(dates, row.toTestDate())
	}
	return dates, nil
}

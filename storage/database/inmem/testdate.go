package inmemdb

import (
	"context"
	"sort"
	"time"

	"cloud.google.com/go/civil"

	"github.com/examcenter/backend/core/testdate"
)

type testDateRepository struct {
	db *testDateTable
}

var _ testdate.Repository = (*testDateRepository)(nil)

func NewTestDateRepository(db *DB) testdate.Repository {
	return &testDateRepository{db: db.testDate}
}

// UpsertTestDate checks and writes under the same lock, so concurrent upserts of one key create it once.
func (repo *testDateRepository) UpsertTestDate(_ context.Context, td testdate.TestDate) (bool, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	key := td.Key()
	existing, ok := repo.db.table[key]
	switch {
	case !ok:
		repo.db.table[key] = td
		return true, nil
	case existing.IsDeleted():
		repo.db.table[key] = existing.Restore(td.Sessions, td.Note, td.UpdatedAt, td.UpdatedBy)
		return true, nil
	default:
		return false, nil
	}
}

func (repo *testDateRepository) GetTestDate(_ context.Context, exam testdate.ExamType, date civil.Date) (testdate.TestDate, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if td, ok := repo.db.table[testdate.EncodeKey(exam, date)]; ok {
		return td, nil
	}
	return testdate.TestDate{}, testdate.ErrNotFound
}

func (repo *testDateRepository) UpdateTestDate(_ context.Context, exam testdate.ExamType, date civil.Date, p testdate.Patch) (testdate.TestDate, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	key := testdate.EncodeKey(exam, date)
	td, ok := repo.db.table[key]
	if !ok || td.IsDeleted() {
		return testdate.TestDate{}, testdate.ErrNotFound
	}
	td = p.Apply(td)
	repo.db.table[key] = td
	return td, nil
}

func (repo *testDateRepository) DeleteTestDate(_ context.Context, exam testdate.ExamType, date civil.Date, at time.Time, actor string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	key := testdate.EncodeKey(exam, date)
	td, ok := repo.db.table[key]
	if !ok {
		return testdate.ErrNotFound
	}
	repo.db.table[key] = td.Delete(at, actor)
	return nil
}

func (repo *testDateRepository) QueryTestDates(_ context.Context, filter testdate.QueryFilter) ([]testdate.TestDate, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	dates := make([]testdate.TestDate, 0)
	for _, td := range repo.db.table {
		if filter.Match(td) {
			dates = append(dates, td)
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Date.Before(dates[j].Date) })
	return dates, nil
}

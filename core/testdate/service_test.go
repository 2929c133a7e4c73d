package testdate_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/examcenter/backend/core"
	"github.com/examcenter/backend/core/testdate"
	logsvc "github.com/examcenter/backend/services/logger"
	"github.com/examcenter/backend/storage/cache"
	inmemdb "github.com/examcenter/backend/storage/database/inmem"
)

const actor = "admin@example.com"

var errStoreDown = errors.New("store down")

// flakyRepository fails every upsert after the first okUpserts.
type flakyRepository struct {
	testdate.Repository
	okUpserts int
	upserts   int
}

func (repo *flakyRepository) UpsertTestDate(ctx context.Context, td testdate.TestDate) (bool, error) {
	repo.upserts++
	if repo.upserts > repo.okUpserts {
		return false, core.NewUnavailableError(errStoreDown, "upserting")
	}
	return repo.Repository.UpsertTestDate(ctx, td)
}

// countingCache records invalidations on top of a MemoryCache.
type countingCache struct {
	*cache.MemoryCache
	invalidations int
}

func (c *countingCache) Invalidate(ctx context.Context, exam testdate.ExamType) {
	c.invalidations++
	c.MemoryCache.Invalidate(ctx, exam)
}

// hookedRepository counts updates and runs onQuery once, before the next query reads the store.
type hookedRepository struct {
	testdate.Repository
	updates int
	onQuery func()
}

func (repo *hookedRepository) UpdateTestDate(ctx context.Context, exam testdate.ExamType, date civil.Date, p testdate.Patch) (testdate.TestDate, error) {
	repo.updates++
	return repo.Repository.UpdateTestDate(ctx, exam, date, p)
}

func (repo *hookedRepository) QueryTestDates(ctx context.Context, filter testdate.QueryFilter) ([]testdate.TestDate, error) {
	dates, err := repo.Repository.QueryTestDates(ctx, filter)
	if repo.onQuery != nil {
		hook := repo.onQuery
		repo.onQuery = nil
		hook()
	}
	return dates, err
}

func freezeToday(t *testing.T, y int, m time.Month, d int) {
	t.Helper()
	now := time.Date(y, m, d, 10, 30, 0, 0, time.UTC)
	testdate.NowFunc = func() time.Time { return now }
	t.Cleanup(func() { testdate.NowFunc = time.Now })
}

func newService(repo testdate.Repository, c testdate.Cache) testdate.Service {
	return testdate.NewService(repo, c, logsvc.NewDiscardLogger(), time.UTC)
}

func day(y int, m time.Month, d int) civil.Date { return civil.Date{Year: y, Month: m, Day: d} }

func TestService_Create(t *testing.T) {
	freezeToday(t, 2024, time.June, 10)
	ctx := context.Background()
	repo := inmemdb.NewTestDateRepository(inmemdb.NewDB())
	svc := newService(repo, nil)

	nt := testdate.NewTestDate{Exam: testdate.ExamTOEFL, Date: "2024-07-01", Sessions: 2, Note: "bring ID"}

	created, err := svc.Create(ctx, nt, actor)
	require.NoError(t, err)
	assert.True(t, created, "first upsert creates")

	first, err := repo.GetTestDate(ctx, testdate.ExamTOEFL, day(2024, 7, 1))
	require.NoError(t, err)

	nt.Sessions = 1
	created, err = svc.Create(ctx, nt, "other@example.com")
	require.NoError(t, err)
	assert.False(t, created, "second upsert reports a duplicate")

	second, err := repo.GetTestDate(ctx, testdate.ExamTOEFL, day(2024, 7, 1))
	require.NoError(t, err)
	assert.Equal(t, first, second, "a duplicate upsert must not change data")
	assert.Equal(t, 2, second.Sessions)
	assert.Equal(t, actor, second.CreatedBy)
}

func TestService_Create_invalid(t *testing.T) {
	svc := newService(inmemdb.NewTestDateRepository(inmemdb.NewDB()), nil)

	tests := []struct {
		name      string
		nt        testdate.NewTestDate
		wantField string
	}{
		{name: "unknown exam", nt: testdate.NewTestDate{Exam: "ielts", Date: "2024-07-01", Sessions: 1}, wantField: "exam"},
		{name: "three sessions", nt: testdate.NewTestDate{Exam: testdate.ExamGRE, Date: "2024-07-01", Sessions: 3}, wantField: "sessions"},
		{name: "bad date", nt: testdate.NewTestDate{Exam: testdate.ExamGRE, Date: "07/01/2024", Sessions: 1}, wantField: "date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.nt, actor)
			var verr *core.ValidationError
			require.True(t, errors.As(err, &verr), "Create() error = %v, want a validation error", err)
			require.Len(t, verr.Fields, 1)
			assert.Equal(t, tt.wantField, verr.Fields[0].Field)
		})
	}
}

func TestService_DeleteAndRestore(t *testing.T) {
	freezeToday(t, 2024, time.June, 10)
	ctx := context.Background()
	repo := inmemdb.NewTestDateRepository(inmemdb.NewDB())
	svc := newService(repo, nil)
	d := day(2024, 7, 1)

	_, err := svc.Create(ctx, testdate.NewTestDate{Exam: testdate.ExamACT, Date: d.String(), Sessions: 2, Note: "old"}, "first@example.com")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, testdate.ExamACT, d, actor))
	deleted, err := repo.GetTestDate(ctx, testdate.ExamACT, d)
	require.NoError(t, err)
	require.True(t, deleted.IsDeleted())

	// deleting again keeps the first deletion time
	testdate.NowFunc = func() time.Time { return time.Date(2024, 6, 11, 0, 0, 0, 0, time.UTC) }
	require.NoError(t, svc.Delete(ctx, testdate.ExamACT, d, actor))
	again, _ := repo.GetTestDate(ctx, testdate.ExamACT, d)
	assert.Equal(t, deleted.DeletedAt, again.DeletedAt)

	_, err = svc.UpdateSessions(ctx, testdate.ExamACT, d, 1, actor)
	assert.Equal(t, testdate.ErrNotFound, err, "updating a deleted day")
	_, err = svc.SetActive(ctx, testdate.ExamACT, d, false, actor)
	assert.Equal(t, testdate.ErrNotFound, err, "toggling a deleted day")

	dates, err := svc.Query(ctx, testdate.QueryFilter{Exam: testdate.ExamACT})
	require.NoError(t, err)
	assert.Empty(t, dates)

	created, err := svc.Create(ctx, testdate.NewTestDate{Exam: testdate.ExamACT, Date: d.String(), Sessions: 1}, actor)
	require.NoError(t, err)
	assert.True(t, created, "recreating a deleted day counts as created")

	dates, err = svc.Query(ctx, testdate.QueryFilter{Exam: testdate.ExamACT})
	require.NoError(t, err)
	require.Len(t, dates, 1)
	restored := dates[0]
	assert.Nil(t, restored.DeletedAt)
	assert.Equal(t, 1, restored.Sessions)
	assert.Equal(t, "", restored.Note)
	assert.Equal(t, "first@example.com", restored.CreatedBy)
	assert.Equal(t, deleted.CreatedAt, restored.CreatedAt)
}

func TestService_Delete_missing(t *testing.T) {
	svc := newService(inmemdb.NewTestDateRepository(inmemdb.NewDB()), nil)
	err := svc.Delete(context.Background(), testdate.ExamGRE, day(2024, 7, 1), actor)
	assert.Equal(t, testdate.ErrNotFound, err)
}

func TestService_UpdateSessionsAndSetActive(t *testing.T) {
	freezeToday(t, 2024, time.June, 10)
	ctx := context.Background()
	svc := newService(inmemdb.NewTestDateRepository(inmemdb.NewDB()), nil)
	d := day(2024, 7, 1)
	_, err := svc.Create(ctx, testdate.NewTestDate{Exam: testdate.ExamGRE, Date: d.String(), Sessions: 1}, actor)
	require.NoError(t, err)

	td, err := svc.UpdateSessions(ctx, testdate.ExamGRE, d, 2, "editor@example.com")
	require.NoError(t, err)
	assert.Equal(t, 2, td.Sessions)
	assert.Equal(t, "editor@example.com", td.UpdatedBy)

	_, err = svc.UpdateSessions(ctx, testdate.ExamGRE, d, 0, actor)
	assert.True(t, errors.Is(err, testdate.ErrBadSessions), "UpdateSessions() error = %v", err)

	td, err = svc.SetActive(ctx, testdate.ExamGRE, d, false, actor)
	require.NoError(t, err)
	assert.False(t, td.IsActive)
	assert.Equal(t, 2, td.Sessions)

	_, err = svc.UpdateSessions(ctx, testdate.ExamGRE, day(2024, 7, 2), 2, actor)
	assert.Equal(t, testdate.ErrNotFound, err)
}

func TestService_Update(t *testing.T) {
	freezeToday(t, 2024, time.June, 10)
	ctx := context.Background()
	repo := &hookedRepository{Repository: inmemdb.NewTestDateRepository(inmemdb.NewDB())}
	svc := newService(repo, nil)
	d := day(2024, 7, 1)
	_, err := svc.Create(ctx, testdate.NewTestDate{Exam: testdate.ExamACT, Date: d.String(), Sessions: 1}, actor)
	require.NoError(t, err)

	sessions, isActive := 2, false
	td, err := svc.Update(ctx, testdate.ExamACT, d, testdate.Update{Sessions: &sessions, IsActive: &isActive}, "editor@example.com")
	require.NoError(t, err)
	assert.Equal(t, 2, td.Sessions)
	assert.False(t, td.IsActive)
	assert.Equal(t, "editor@example.com", td.UpdatedBy)
	assert.Equal(t, 1, repo.updates, "both fields are applied in one write")

	bad := 3
	_, err = svc.Update(ctx, testdate.ExamACT, d, testdate.Update{Sessions: &bad, IsActive: &isActive}, actor)
	assert.True(t, errors.Is(err, testdate.ErrBadSessions), "Update() error = %v", err)
	_, err = svc.Update(ctx, testdate.ExamACT, d, testdate.Update{}, actor)
	assert.True(t, errors.Is(err, testdate.ErrNothingToUpdate), "Update() error = %v", err)
	assert.Equal(t, 1, repo.updates, "rejected updates never reach the store")

	stored, err := repo.GetTestDate(ctx, testdate.ExamACT, d)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Sessions)
}

func TestService_Generate(t *testing.T) {
	freezeToday(t, 2024, time.June, 10)

	tests := []struct {
		name    string
		bt      testdate.BulkTestDates
		want    testdate.BulkResult
		wantErr error
	}{
		{
			name: "six months from today",
			bt:   testdate.BulkTestDates{Exam: testdate.ExamGRE, StartDate: "2024-06-10", EndDate: "2024-12-10", Sessions: 1},
			want: testdate.BulkResult{Created: 184},
		},
		{
			name:    "six months and a day",
			bt:      testdate.BulkTestDates{Exam: testdate.ExamGRE, StartDate: "2024-06-10", EndDate: "2024-12-11", Sessions: 1},
			wantErr: testdate.ErrRangeTooLarge,
		},
		{
			name:    "inverted",
			bt:      testdate.BulkTestDates{Exam: testdate.ExamGRE, StartDate: "2024-07-03", EndDate: "2024-07-01", Sessions: 1},
			wantErr: testdate.ErrInvalidRange,
		},
		{
			name: "start three days ago",
			bt:   testdate.BulkTestDates{Exam: testdate.ExamGRE, StartDate: "2024-06-07", EndDate: "2024-06-11", Sessions: 2},
			want: testdate.BulkResult{Created: 2, PastSkipped: 3},
		},
		{
			name: "only past days",
			bt:   testdate.BulkTestDates{Exam: testdate.ExamGRE, StartDate: "2024-06-01", EndDate: "2024-06-09", Sessions: 2},
			want: testdate.BulkResult{PastSkipped: 9},
		},
		{
			name:    "bad sessions",
			bt:      testdate.BulkTestDates{Exam: testdate.ExamGRE, StartDate: "2024-07-01", EndDate: "2024-07-03", Sessions: 0},
			wantErr: testdate.ErrBadSessions,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &flakyRepository{Repository: inmemdb.NewTestDateRepository(inmemdb.NewDB()), okUpserts: 1000}
			svc := newService(repo, nil)

			got, err := svc.Generate(context.Background(), tt.bt, actor)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Generate() error = %v, wantErr %v", err, tt.wantErr)
			}
			assert.Equal(t, tt.want, got)
			if tt.wantErr != nil {
				assert.Zero(t, repo.upserts, "validation errors must abort before any write")
			} else {
				assert.Equal(t, got.Created+got.DuplicateSkipped, repo.upserts, "past days must not reach the store")
			}
		})
	}
}

func TestService_Generate_endToEnd(t *testing.T) {
	freezeToday(t, 2024, time.June, 10)
	ctx := context.Background()
	svc := newService(inmemdb.NewTestDateRepository(inmemdb.NewDB()), nil)
	bt := testdate.BulkTestDates{Exam: testdate.ExamTOEFL, StartDate: "2024-07-01", EndDate: "2024-07-03", Sessions: 1}

	res, err := svc.Generate(ctx, bt, actor)
	require.NoError(t, err)
	assert.Equal(t, testdate.BulkResult{Created: 3}, res)

	res, err = svc.Generate(ctx, bt, actor)
	require.NoError(t, err)
	assert.Equal(t, testdate.BulkResult{DuplicateSkipped: 3}, res)

	require.NoError(t, svc.Delete(ctx, testdate.ExamTOEFL, day(2024, 7, 2), actor))
	dates, err := svc.Query(ctx, testdate.QueryFilter{Exam: testdate.ExamTOEFL})
	require.NoError(t, err)
	assert.Len(t, dates, 2)

	res, err = svc.Generate(ctx, bt, actor)
	require.NoError(t, err)
	assert.Equal(t, testdate.BulkResult{Created: 1, DuplicateSkipped: 2}, res)

	dates, err = svc.Query(ctx, testdate.QueryFilter{Exam: testdate.ExamTOEFL})
	require.NoError(t, err)
	require.Len(t, dates, 3)
	for i, want := range []civil.Date{day(2024, 7, 1), day(2024, 7, 2), day(2024, 7, 3)} {
		assert.Equal(t, want, dates[i].Date, "dates are ordered")
	}
}

func TestService_Generate_storeFailure(t *testing.T) {
	freezeToday(t, 2024, time.June, 10)
	ctx := context.Background()
	inner := inmemdb.NewTestDateRepository(inmemdb.NewDB())
	repo := &flakyRepository{Repository: inner, okUpserts: 2}
	c := &countingCache{MemoryCache: cache.NewMemoryCache(time.Minute)}
	svc := newService(repo, c)

	res, err := svc.Generate(ctx, testdate.BulkTestDates{Exam: testdate.ExamTOEFL, StartDate: "2024-07-01", EndDate: "2024-07-05", Sessions: 1}, actor)
	require.Error(t, err)
	assert.True(t, core.IsUnavailable(err), "Generate() error = %v, want unavailable", err)
	assert.Equal(t, testdate.BulkResult{Created: 2}, res)
	assert.Equal(t, 3, repo.upserts, "generation stops at the first failure")
	assert.Equal(t, 1, c.invalidations, "partial writes still invalidate the calendar")

	// days written before the failure stay written
	dates, err := inner.QueryTestDates(ctx, testdate.QueryFilter{Exam: testdate.ExamTOEFL})
	require.NoError(t, err)
	assert.Len(t, dates, 2)
}

func TestService_Calendar(t *testing.T) {
	freezeToday(t, 2024, time.June, 10)
	ctx := context.Background()
	repo := inmemdb.NewTestDateRepository(inmemdb.NewDB())
	c := &countingCache{MemoryCache: cache.NewMemoryCache(time.Hour)}
	svc := newService(repo, c)

	_, err := svc.Generate(ctx, testdate.BulkTestDates{Exam: testdate.ExamTOEFL, StartDate: "2024-06-08", EndDate: "2024-06-14", Sessions: 2}, actor)
	require.NoError(t, err)
	_, err = svc.Create(ctx, testdate.NewTestDate{Exam: testdate.ExamTOEFL, Date: "2024-12-11", Sessions: 1}, actor)
	require.NoError(t, err)
	_, err = svc.SetActive(ctx, testdate.ExamTOEFL, day(2024, 6, 12), false, actor)
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, testdate.ExamTOEFL, day(2024, 6, 13), actor))

	dates, err := svc.Calendar(ctx, testdate.ExamTOEFL, civil.Date{}, civil.Date{})
	require.NoError(t, err)
	got := make([]civil.Date, 0, len(dates))
	for _, td := range dates {
		got = append(got, td.Date)
	}
	// 2024-12-11 is past the default six month window, 06-12 is inactive and 06-13 deleted
	assert.Equal(t, []civil.Date{day(2024, 6, 10), day(2024, 6, 11), day(2024, 6, 14)}, got)

	cached, _, ok := c.Get(ctx, testdate.ExamTOEFL, day(2024, 6, 10), day(2024, 12, 10))
	require.True(t, ok, "calendar reads through the cache")
	assert.Equal(t, dates, cached)

	_, err = svc.UpdateSessions(ctx, testdate.ExamTOEFL, day(2024, 6, 14), 1, actor)
	require.NoError(t, err)
	_, _, ok = c.Get(ctx, testdate.ExamTOEFL, day(2024, 6, 10), day(2024, 12, 10))
	assert.False(t, ok, "writes invalidate the cached calendar")

	dates, err = svc.Calendar(ctx, testdate.ExamTOEFL, day(2024, 6, 14), day(2024, 6, 14))
	require.NoError(t, err)
	require.Len(t, dates, 1)
	assert.Equal(t, 1, dates[0].Sessions)

	_, err = svc.Calendar(ctx, testdate.ExamTOEFL, day(2024, 7, 2), day(2024, 7, 1))
	assert.True(t, errors.Is(err, testdate.ErrInvalidRange), "Calendar() error = %v", err)
}

func TestService_Calendar_writeDuringFill(t *testing.T) {
	freezeToday(t, 2024, time.June, 10)
	ctx := context.Background()
	repo := &hookedRepository{Repository: inmemdb.NewTestDateRepository(inmemdb.NewDB())}
	svc := newService(repo, cache.NewMemoryCache(time.Hour))
	from, to := day(2024, 7, 1), day(2024, 7, 31)

	// the day is published after the store was read but before the result is cached
	repo.onQuery = func() {
		created, err := svc.Create(ctx, testdate.NewTestDate{Exam: testdate.ExamGRE, Date: "2024-07-15", Sessions: 1}, actor)
		require.NoError(t, err)
		require.True(t, created)
	}

	first, err := svc.Calendar(ctx, testdate.ExamGRE, from, to)
	require.NoError(t, err)
	assert.Empty(t, first)

	second, err := svc.Calendar(ctx, testdate.ExamGRE, from, to)
	require.NoError(t, err)
	require.Len(t, second, 1, "a fill that raced a write must not be cached")
	assert.Equal(t, day(2024, 7, 15), second[0].Date)
}

package cache

import (
	"context"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/examcenter/backend/core/testdate"
)

func freezeNow(t *testing.T) *time.Time {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	NowFunc = func() time.Time { return now }
	t.Cleanup(func() { NowFunc = time.Now })
	return &now
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	from := civil.Date{Year: 2024, Month: 7, Day: 1}
	to := civil.Date{Year: 2024, Month: 12, Day: 31}
	toefl := []testdate.TestDate{{Exam: testdate.ExamTOEFL, Date: from, Sessions: 2, IsActive: true}}
	gre := []testdate.TestDate{{Exam: testdate.ExamGRE, Date: from, Sessions: 1, IsActive: true}}
	now := freezeNow(t)

	c := NewMemoryCache(time.Minute)

	_, gen, ok := c.Get(ctx, testdate.ExamTOEFL, from, to)
	assert.False(t, ok, "empty cache hit")

	c.Set(ctx, testdate.ExamTOEFL, from, to, gen, toefl)
	_, greGen, _ := c.Get(ctx, testdate.ExamGRE, from, to)
	c.Set(ctx, testdate.ExamGRE, from, to, greGen, gre)

	got, _, ok := c.Get(ctx, testdate.ExamTOEFL, from, to)
	assert.True(t, ok)
	assert.Equal(t, toefl, got)

	_, _, ok = c.Get(ctx, testdate.ExamTOEFL, from, to.AddDays(-1))
	assert.False(t, ok, "different range must miss")

	c.Invalidate(ctx, testdate.ExamTOEFL)
	_, _, ok = c.Get(ctx, testdate.ExamTOEFL, from, to)
	assert.False(t, ok, "invalidated exam must miss")
	_, _, ok = c.Get(ctx, testdate.ExamGRE, from, to)
	assert.True(t, ok, "other exams stay cached")

	*now = now.Add(2 * time.Minute)
	_, _, ok = c.Get(ctx, testdate.ExamGRE, from, to)
	assert.False(t, ok, "expired entry must miss")
	assert.Zero(t, c.Len(), "expired entry is dropped on read")
}

func TestMemoryCache_staleGeneration(t *testing.T) {
	ctx := context.Background()
	from := civil.Date{Year: 2024, Month: 7, Day: 1}
	to := from.AddDays(30)
	freezeNow(t)

	c := NewMemoryCache(time.Minute)
	_, gen, ok := c.Get(ctx, testdate.ExamACT, from, to)
	require.False(t, ok)

	// a write lands between the read and the fill
	c.Invalidate(ctx, testdate.ExamACT)
	c.Set(ctx, testdate.ExamACT, from, to, gen, nil)
	_, newGen, ok := c.Get(ctx, testdate.ExamACT, from, to)
	assert.False(t, ok, "fill read under an older generation must be dropped")
	assert.Equal(t, gen+1, newGen)

	c.Set(ctx, testdate.ExamACT, from, to, newGen, nil)
	_, _, ok = c.Get(ctx, testdate.ExamACT, from, to)
	assert.True(t, ok)
}

func TestMemoryCache_bounded(t *testing.T) {
	ctx := context.Background()
	from := civil.Date{Year: 2024, Month: 7, Day: 1}
	now := freezeNow(t)

	c := NewMemoryCacheSize(time.Minute, 3)
	for i := 0; i < 5; i++ {
		c.Set(ctx, testdate.ExamGRE, from, from.AddDays(i), 0, nil)
	}
	assert.Equal(t, 3, c.Len(), "a full cache skips new ranges")

	// refreshing a held range is always allowed
	c.Set(ctx, testdate.ExamGRE, from, from, 0, nil)
	_, _, ok := c.Get(ctx, testdate.ExamGRE, from, from)
	assert.True(t, ok)

	*now = now.Add(2 * time.Minute)
	c.Set(ctx, testdate.ExamGRE, from, from.AddDays(10), 0, nil)
	assert.Equal(t, 1, c.Len(), "expired ranges are swept to make room")
	_, _, ok = c.Get(ctx, testdate.ExamGRE, from, from.AddDays(10))
	assert.True(t, ok)
}

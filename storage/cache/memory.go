package cache

import (
	"context"
	"sync"
	"time"

	"cloud.google.com/go/civil"

	"github.com/examcenter/backend/core/testdate"
)

var NowFunc = time.Now // mockable

// DefaultMaxEntries bounds a MemoryCache built with a zero capacity.
const DefaultMaxEntries = 1024

type (
	rangeKey struct {
		exam     testdate.ExamType
		from, to civil.Date
	}

	entry struct {
		dates   []testdate.TestDate
		expires time.Time
	}
)

// MemoryCache is a process-local calendar cache with a fixed TTL.
// Each exam carries a generation that Invalidate bumps; Set drops fills
// read under an older generation.
type MemoryCache struct {
	mu         sync.Mutex
	ttl        time.Duration
	maxEntries int
	entries    map[rangeKey]entry
	gens       map[testdate.ExamType]uint64
}

var _ testdate.Cache = (*MemoryCache)(nil)

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return NewMemoryCacheSize(ttl, DefaultMaxEntries)
}

// NewMemoryCacheSize is NewMemoryCache holding at most maxEntries ranges.
func NewMemoryCacheSize(ttl time.Duration, maxEntries int) *MemoryCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &MemoryCache{
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[rangeKey]entry),
		gens:       make(map[testdate.ExamType]uint64),
	}
}

// Len is the number of ranges held, expired ones included.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *MemoryCache) Get(_ context.Context, exam testdate.ExamType, from, to civil.Date) ([]testdate.TestDate, uint64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	gen := c.gens[exam]
	key := rangeKey{exam, from, to}
	e, ok := c.entries[key]
	if !ok {
		return nil, gen, false
	}
	if NowFunc().After(e.expires) {
		delete(c.entries, key)
		return nil, gen, false
	}
	return append([]testdate.TestDate(nil), e.dates...), gen, true
}

func (c *MemoryCache) Set(_ context.Context, exam testdate.ExamType, from, to civil.Date, gen uint64, dates []testdate.TestDate) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.gens[exam] != gen {
		return
	}
	key := rangeKey{exam, from, to}
	if _, ok := c.entries[key]; !ok && len(c.entries) >= c.maxEntries {
		c.evictExpired()
		if len(c.entries) >= c.maxEntries {
			return
		}
	}
	c.entries[key] = entry{
		dates:   append([]testdate.TestDate(nil), dates...),
		expires: NowFunc().Add(c.ttl),
	}
}

func (c *MemoryCache) Invalidate(_ context.Context, exam testdate.ExamType) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gens[exam]++
	for k := range c.entries {
		if k.exam == exam {
			delete(c.entries, k)
		}
	}
}

// evictExpired must be called with c.mu held.
func (c *MemoryCache) evictExpired() {
	now := NowFunc()
	for k, e := range c.entries {
		if now.After(e.expires) {
			delete(c.entries, k)
		}
	}
}

// Package cache keeps public calendar ranges close to the API.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/go-redis/redis/v8"

	"github.com/examcenter/backend/core"
	"github.com/examcenter/backend/core/testdate"
)

const keyPrefix = "calendar:"

// RedisCache namespaces every range key with a per-exam generation counter.
// Invalidate bumps the counter, orphaning old keys until their TTL evicts them.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger core.Logger
}

var _ testdate.Cache = (*RedisCache)(nil)

func NewRedisClient(conf *core.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     conf.Redis.Addr,
		Password: conf.Redis.Password,
		DB:       conf.Redis.DB,
	})
}

func NewRedisCache(client *redis.Client, conf *core.Config, logger core.Logger) *RedisCache {
	ttl := conf.Redis.TTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisCache{client: client, ttl: ttl, logger: logger}
}

func genKey(exam testdate.ExamType) string { return keyPrefix + "gen:" + string(exam) }

func redisKey(exam testdate.ExamType, gen uint64, from, to civil.Date) string {
	return fmt.Sprintf("%s%s:%d:%s:%s", keyPrefix, exam, gen, from, to)
}

func (c *RedisCache) generation(ctx context.Context, exam testdate.ExamType) (uint64, error) {
	gen, err := c.client.Get(ctx, genKey(exam)).Uint64()
	if err == redis.Nil {
		return 0, nil
	}
	return gen, err
}

func (c *RedisCache) Get(ctx context.Context, exam testdate.ExamType, from, to civil.Date) ([]testdate.TestDate, uint64, bool) {
	gen, err := c.generation(ctx, exam)
	if err != nil {
		c.logger.Warn("reading calendar cache generation", err)
		return nil, gen, false
	}
	key := redisKey(exam, gen, from, to)
	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, gen, false
	}
	if err != nil {
		c.logger.Warn("reading calendar cache", err)
		return nil, gen, false
	}

	var dates []testdate.TestDate
	if err = json.Unmarshal(data, &dates); err != nil {
		c.logger.Warn("decoding calendar cache entry "+key, err)
		return nil, gen, false
	}
	return dates, gen, true
}

// Set writes under gen, the generation Get returned. A fill that raced an
// Invalidate lands under an orphaned key.
func (c *RedisCache) Set(ctx context.Context, exam testdate.ExamType, from, to civil.Date, gen uint64, dates []testdate.TestDate) {
	data, err := json.Marshal(dates)
	if err != nil {
		c.logger.Warn("encoding calendar cache entry", err)
		return
	}
	if err = c.client.Set(ctx, redisKey(exam, gen, from, to), data, c.ttl).Err(); err != nil {
		c.logger.Warn("writing calendar cache", err)
	}
}

func (c *RedisCache) Invalidate(ctx context.Context, exam testdate.ExamType) {
	if err := c.client.Incr(ctx, genKey(exam)).Err(); err != nil {
		c.logger.Error("invalidating calendar cache of "+string(exam), err)
	}
}

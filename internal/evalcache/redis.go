package evalcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/park285/cheese-review/internal/review"
)

const (
	defaultTTL    = 7 * 24 * time.Hour
	defaultPrefix = "eval:"
)

// RedisStore keeps samples as JSON strings with a TTL.
type RedisStore struct {
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &RedisStore{rdb: rdb, ttl: ttl, prefix: defaultPrefix}
}

// NewRedisStoreFromURL dials redis://[:password@]host:port/db and pings it.
func NewRedisStoreFromURL(ctx context.Context, url string, ttl time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewRedisStore(rdb, ttl), nil
}

func (s *RedisStore) key(k string) string { return s.prefix + k }

func (s *RedisStore) Get(ctx context.Context, key string) (review.EvaluationSample, bool, error) {
	raw, err := s.rdb.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return review.EvaluationSample{}, false, nil
	}
	if err != nil {
		return review.EvaluationSample{}, false, err
	}
	var sample review.EvaluationSample
	if err := json.Unmarshal(raw, &sample); err != nil {
		return review.EvaluationSample{}, false, fmt.Errorf("decode cached sample: %w", err)
	}
	return sample, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, sample review.EvaluationSample) error {
	raw, err := json.Marshal(sample)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, s.key(key), raw, s.ttl).Err()
}

func (s *RedisStore) Close() error { return s.rdb.Close() }

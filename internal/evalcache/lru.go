package evalcache

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/park285/cheese-review/internal/review"
)

// LRUStore is an in-process, size-bounded layer.
type LRUStore struct {
	cache *lru.Cache[string, review.EvaluationSample]
}

func NewLRUStore(capacity int) (*LRUStore, error) {
	c, err := lru.New[string, review.EvaluationSample](capacity)
	if err != nil {
		return nil, err
	}
	return &LRUStore{cache: c}, nil
}

func (s *LRUStore) Get(_ context.Context, key string) (review.EvaluationSample, bool, error) {
	v, ok := s.cache.Get(key)
	return v, ok, nil
}

func (s *LRUStore) Set(_ context.Context, key string, sample review.EvaluationSample) error {
	s.cache.Add(key, sample)
	return nil
}

func (s *LRUStore) Len() int { return s.cache.Len() }

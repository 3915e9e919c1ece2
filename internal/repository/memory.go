package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/park285/cheese-review/internal/domain"
)

// memory is the in-process repository used when no database is configured.
type memory struct {
	mu      sync.RWMutex
	reviews map[string]*domain.Review
	order   []string
}

func NewMemory() Repository {
	return &memory{reviews: make(map[string]*domain.Review)}
}

func (m *memory) InsertReview(_ context.Context, r *domain.Review) error {
	if r == nil || r.ID == "" {
		return ErrReviewNotFound
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.reviews[r.ID]; exists {
		return ErrDuplicateReview
	}
	cp := *r
	m.reviews[r.ID] = &cp
	m.order = append(m.order, r.ID)
	return nil
}

func (m *memory) GetReview(_ context.Context, id string) (*domain.Review, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.reviews[id]
	if !ok {
		return nil, ErrReviewNotFound
	}
	cp := *r
	return &cp, nil
}

// RecentReviews orders by CreatedAt, newest first; ties keep the latest insert first.
func (m *memory) RecentReviews(_ context.Context, limit int) ([]*domain.Review, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	m.mu.RLock()
	items := make([]*domain.Review, 0, len(m.order))
	for i := len(m.order) - 1; i >= 0; i-- {
		cp := *m.reviews[m.order[i]]
		items = append(items, &cp)
	}
	m.mu.RUnlock()

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

// Package repository persists finished reviews.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/park285/cheese-review/internal/domain"
	"github.com/park285/cheese-review/internal/review"
)

var (
	ErrDuplicateReview = errors.New("review already exists")
	ErrReviewNotFound  = errors.New("review not found")
)

type Repository interface {
	InsertReview(ctx context.Context, r *domain.Review) error
	GetReview(ctx context.Context, id string) (*domain.Review, error)
	RecentReviews(ctx context.Context, limit int) ([]*domain.Review, error)
}

const defaultRecentLimit = 10

// FromSession flattens a loaded session into its stored form.
func FromSession(s *review.Session, source string, depth int) *domain.Review {
	moves := s.Moves()
	cls := s.Classifications()
	evals := s.Evaluations()
	sum := s.Summary()
	acc := s.Accuracy()

	out := &domain.Review{
		ID:            s.ID(),
		Source:        source,
		White:         s.Tag("White"),
		Black:         s.Tag("Black"),
		Result:        s.Tag("Result"),
		ECO:           s.Opening().Code,
		Opening:       s.Opening().Title,
		Depth:         depth,
		MovesUCI:      make([]string, len(moves)),
		MovesSAN:      make([]string, len(moves)),
		Labels:        make([]string, len(cls)),
		Evaluations:   make([]int, len(evals)),
		WhiteAccuracy: acc.White,
		BlackAccuracy: acc.Black,
		WhiteCounts:   countsByName(sum.White),
		BlackCounts:   countsByName(sum.Black),
		CreatedAt:     s.LoadedAt(),
	}
	for i, mv := range moves {
		out.MovesUCI[i] = mv.UCI()
		out.MovesSAN[i] = mv.SAN
	}
	for i, c := range cls {
		out.Labels[i] = c.Label.String()
	}
	for i, e := range evals {
		out.Evaluations[i] = e.Evaluation
	}
	if out.CreatedAt.IsZero() {
		out.CreatedAt = time.Now()
	}
	return out
}

func countsByName(s review.SideStats) map[string]int {
	out := make(map[string]int, len(s))
	for l, n := range s {
		out[l.String()] = n
	}
	return out
}

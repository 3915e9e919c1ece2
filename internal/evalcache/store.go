// Package evalcache memoizes position evaluations in front of a review.Evaluator.
package evalcache

import (
	"context"
	"strconv"
	"strings"

	"github.com/park285/cheese-review/internal/review"
)

// Store is one cache layer.
type Store interface {
	Get(ctx context.Context, key string) (review.EvaluationSample, bool, error)
	Set(ctx context.Context, key string, sample review.EvaluationSample) error
}

// Key identifies an evaluation by depth and the first four FEN fields. The move clocks
// are left out so transpositions share an entry.
func Key(fen string, depth int) string {
	fields := strings.Fields(fen)
	if len(fields) > 4 {
		fields = fields[:4]
	}
	return strconv.Itoa(depth) + "|" + strings.Join(fields, " ")
}

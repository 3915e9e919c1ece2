package chess

import (
	"strconv"

	"github.com/park285/cheese-review/internal/chess/uci"
	"github.com/park285/cheese-review/internal/review"
)

// MaxDepth caps requested search depths.
const MaxDepth = 30

// ClampDepth maps a requested depth into [1, MaxDepth]; <= 0 means review.DefaultDepth.
func ClampDepth(depth int) int {
	switch {
	case depth <= 0:
		return review.DefaultDepth
	case depth > MaxDepth:
		return MaxDepth
	default:
		return depth
	}
}

// AnalysisLimits is the fixed-depth search used for every evaluation.
func AnalysisLimits(depth int) uci.Limits {
	return uci.Limits{Depth: ClampDepth(depth)}
}

// FormatGoCommand renders the go command sent for depth.
func FormatGoCommand(depth int) string {
	return "go depth " + strconv.Itoa(ClampDepth(depth))
}

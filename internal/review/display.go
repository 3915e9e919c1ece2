package review

import (
	"math"
	"strconv"
)

const (
	evalBarClampCP = 1000
	evalBarMin     = 5.0
	evalBarMax     = 95.0
)

// EvalBar describes the vertical evaluation bar: WhiteShare is the percentage of the bar
// filled for White, Label the short text drawn on it.
type EvalBar struct {
	WhiteShare float64 `json:"white_share"`
	Label      string  `json:"label"`
}

// NewEvalBar maps a White-relative evaluation to bar geometry. Mate scores fill the bar
// completely for the mating side; centipawns are clamped to ±10 pawns and the result kept
// inside [5, 95] so neither side ever disappears.
func NewEvalBar(evaluation int, isMate bool) EvalBar {
	if isMate {
		share := 0.0
		if evaluation > 0 {
			share = 100
		}
		return EvalBar{WhiteShare: share, Label: "M" + strconv.Itoa(abs(evaluation))}
	}
	cp := evaluation
	if cp > evalBarClampCP {
		cp = evalBarClampCP
	}
	if cp < -evalBarClampCP {
		cp = -evalBarClampCP
	}
	share := 50 + float64(cp)/10
	share = math.Max(evalBarMin, math.Min(evalBarMax, share))
	return EvalBar{
		WhiteShare: share,
		Label:      strconv.FormatFloat(float64(abs(evaluation))/100, 'f', 1, 64),
	}
}

// FormatEvaluation renders "M3" for mate distances and pawns with two decimals otherwise.
func FormatEvaluation(evaluation int, isMate bool) string {
	if isMate {
		return "M" + strconv.Itoa(abs(evaluation))
	}
	return strconv.FormatFloat(float64(evaluation)/100, 'f', 2, 64)
}

// MovePair is one numbered row of the move list.
type MovePair struct {
	Number     int   `json:"number"`
	White      *Move `json:"white,omitempty"`
	Black      *Move `json:"black,omitempty"`
	WhiteIndex int   `json:"white_index"`
	BlackIndex int   `json:"black_index"`
}

// MovePairs groups plies as "1. e4 e5". The indices are the plies to Navigate to.
func MovePairs(moves []Move) []MovePair {
	out := make([]MovePair, 0, (len(moves)+1)/2)
	for i := 0; i < len(moves); i += 2 {
		w := moves[i]
		pair := MovePair{Number: i/2 + 1, White: &w, WhiteIndex: i, BlackIndex: i + 1}
		if i+1 < len(moves) {
			b := moves[i+1]
			pair.Black = &b
		}
		out = append(out, pair)
	}
	return out
}

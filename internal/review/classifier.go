package review

import "math"

// ClassifyInput carries everything the ladder looks at for one ply.
type ClassifyInput struct {
	PrevEval        int
	CurrEval        int
	RecommendedMove string
	PlayedMove      string
	IsMate          bool
	Side            Side
}

// moveFacts is the normalized view the ladder rules match against.
type moveFacts struct {
	delta      int
	prevEval   int
	engineMove bool
}

type ladderRule struct {
	label Label
	match func(f moveFacts) bool
}

// ladder is evaluated top to bottom and the first match wins. Later numeric bounds
// are looser than earlier ones, so reordering changes results.
var ladder = []ladderRule{
	{BrilliantMove, func(f moveFacts) bool { return f.engineMove && f.delta > 100 && abs(f.prevEval) < 50 }},
	{BestMove, func(f moveFacts) bool { return f.engineMove && f.delta > -15 }},
	{GreatMove, func(f moveFacts) bool { return !f.engineMove && f.delta > 80 }},
	{Excellent, func(f moveFacts) bool { return f.engineMove && f.delta > -40 }},
	{Good, func(f moveFacts) bool { return f.delta > -100 }},
	{Inaccuracy, func(f moveFacts) bool { return f.delta > -200 }},
	{Mistake, func(f moveFacts) bool { return f.delta > -350 }},
	{Blunder, func(moveFacts) bool { return true }},
}

// Classify maps one ply to a Classification. It never fails: Blunder is the floor.
func Classify(in ClassifyInput) Classification {
	if in.IsMate {
		return newClassification(GameOver)
	}
	f := factsOf(in)
	for _, r := range ladder {
		if r.match(f) {
			return newClassification(r.label)
		}
	}
	return newClassification(Blunder)
}

// factsOf normalizes the delta so that positive always favours the side that just moved.
func factsOf(in ClassifyInput) moveFacts {
	delta := swing(in.CurrEval, in.PrevEval)
	if in.Side == Black {
		delta = -delta
	}
	return moveFacts{
		delta:      delta,
		prevEval:   in.PrevEval,
		engineMove: in.RecommendedMove == in.PlayedMove,
	}
}

// ClassifyGame runs the classifier over every ply. prevEval starts at 0 and then tracks
// the raw evaluation of the previous sample.
func ClassifyGame(moves []Move, evaluations []EvaluationSample) ([]Classification, error) {
	if len(moves) != len(evaluations) {
		return nil, &AlignmentError{What: "evaluations", Want: len(moves), Got: len(evaluations)}
	}
	out := make([]Classification, len(moves))
	prevEval := 0
	for i, mv := range moves {
		sample := evaluations[i]
		out[i] = Classify(ClassifyInput{
			PrevEval:        prevEval,
			CurrEval:        sample.Evaluation,
			RecommendedMove: sample.RecommendedMove,
			PlayedMove:      mv.UCI(),
			IsMate:          sample.IsMate,
			Side:            SideOfPly(i),
		})
		prevEval = sample.Evaluation
	}
	return out, nil
}

// abs saturates at math.MaxInt instead of wrapping for math.MinInt.
func abs(v int) int {
	switch {
	case v == math.MinInt:
		return math.MaxInt
	case v < 0:
		return -v
	}
	return v
}

// swing returns curr - prev clamped to [-math.MaxInt, math.MaxInt], so it can be negated.
func swing(curr, prev int) int {
	d := curr - prev
	switch {
	case prev < 0 && d < curr:
		return math.MaxInt
	case prev > 0 && d > curr:
		return -math.MaxInt
	case d == math.MinInt:
		return -math.MaxInt
	}
	return d
}

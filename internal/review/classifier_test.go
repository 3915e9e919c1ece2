package review

import (
	"math"
	"testing"
)

func TestClassify_Scenarios(t *testing.T) {
	tests := []struct {
		name string
		in   ClassifyInput
		want Label
	}{
		{"flat engine move is best", ClassifyInput{PrevEval: 0, CurrEval: 0, RecommendedMove: "e2e4", PlayedMove: "e2e4", Side: White}, BestMove},
		{"delta -200 falls to mistake", ClassifyInput{PrevEval: 20, CurrEval: -180, RecommendedMove: "d2d4", PlayedMove: "g2g4", Side: White}, Mistake},
		{"mate overrides everything", ClassifyInput{PrevEval: -900, CurrEval: 3, IsMate: true, RecommendedMove: "a1a2", PlayedMove: "h7h8q", Side: Black}, GameOver},
		{"brilliant from near-equal", ClassifyInput{PrevEval: 30, CurrEval: 180, RecommendedMove: "f3g5", PlayedMove: "f3g5", Side: White}, BrilliantMove},
		{"engine swing from unbalanced is best", ClassifyInput{PrevEval: 60, CurrEval: 300, RecommendedMove: "f3g5", PlayedMove: "f3g5", Side: White}, BestMove},
		{"great non-engine gain", ClassifyInput{PrevEval: -300, CurrEval: -100, RecommendedMove: "e2e4", PlayedMove: "d2d4", Side: White}, GreatMove},
		{"engine move small loss is excellent", ClassifyInput{PrevEval: 0, CurrEval: -20, RecommendedMove: "e2e4", PlayedMove: "e2e4", Side: White}, Excellent},
		{"non-engine small loss is good", ClassifyInput{PrevEval: 0, CurrEval: -20, RecommendedMove: "e2e4", PlayedMove: "d2d4", Side: White}, Good},
		{"inaccuracy", ClassifyInput{PrevEval: 0, CurrEval: -150, RecommendedMove: "e2e4", PlayedMove: "a2a3", Side: White}, Inaccuracy},
		{"blunder", ClassifyInput{PrevEval: 0, CurrEval: -350, RecommendedMove: "e2e4", PlayedMove: "a2a3", Side: White}, Blunder},
		{"black delta is negated", ClassifyInput{PrevEval: 0, CurrEval: 400, RecommendedMove: "e7e5", PlayedMove: "a7a6", Side: Black}, Blunder},
		{"black improving is great", ClassifyInput{PrevEval: 100, CurrEval: -50, RecommendedMove: "e7e5", PlayedMove: "a7a6", Side: Black}, GreatMove},
		{"missing recommendation never counts as engine move", ClassifyInput{PrevEval: 0, CurrEval: 0, RecommendedMove: "", PlayedMove: "e2e4", Side: White}, Good},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.in)
			if got.Label != tt.want {
				t.Fatalf("Classify() = %v, want %v", got.Label, tt.want)
			}
			if got.Score != tt.want.Score() {
				t.Fatalf("score = %d, want %d", got.Score, tt.want.Score())
			}
		})
	}
}

func TestClassify_ScoreTable(t *testing.T) {
	want := map[Label]int{
		BrilliantMove: 100, BestMove: 100, GreatMove: 95, Excellent: 90, Good: 75,
		Inaccuracy: 50, Mistake: 25, Blunder: 5, GameOver: 100,
	}
	for l, score := range want {
		if l.Score() != score {
			t.Errorf("%v.Score() = %d, want %d", l, l.Score(), score)
		}
	}
}

func TestClassify_MateAlwaysGameOver(t *testing.T) {
	for _, prev := range []int{-5000, -1, 0, 49, 5000} {
		for _, curr := range []int{-30, -1, 0, 1, 30} {
			for _, played := range []string{"e2e4", "d2d4"} {
				got := Classify(ClassifyInput{PrevEval: prev, CurrEval: curr, RecommendedMove: "e2e4", PlayedMove: played, IsMate: true, Side: SideOfPly(curr & 1)})
				if got.Label != GameOver {
					t.Fatalf("prev=%d curr=%d played=%s: got %v, want GameOver", prev, curr, played, got.Label)
				}
			}
		}
	}
}

// Some rung always matches and Classify agrees with the first one.
func TestLadder_FirstMatchIsUnique(t *testing.T) {
	for _, engine := range []bool{true, false} {
		for delta := -1000; delta <= 1000; delta++ {
			f := moveFacts{delta: delta, prevEval: 200, engineMove: engine}
			var matched []Label
			for _, r := range ladder {
				if r.match(f) {
					matched = append(matched, r.label)
				}
			}
			if len(matched) == 0 {
				t.Fatalf("delta=%d engine=%v: no rung matched", delta, engine)
			}
			got := Classify(ClassifyInput{PrevEval: 200, CurrEval: 200 + delta, RecommendedMove: "x", PlayedMove: pick(engine, "x", "y"), Side: White})
			if got.Label != matched[0] {
				t.Fatalf("delta=%d engine=%v: Classify() = %v, first rung %v", delta, engine, got.Label, matched[0])
			}
			if matched[0] == BrilliantMove {
				t.Fatalf("delta=%d: brilliant must not match with |prevEval| >= 50", delta)
			}
		}
	}
}

func TestLadder_BoundariesAreExclusive(t *testing.T) {
	tests := []struct {
		delta  int
		engine bool
		want   Label
	}{
		{-15, true, Excellent},
		{-14, true, BestMove},
		{-40, true, Good},
		{-39, true, Excellent},
		{80, false, Good},
		{81, false, GreatMove},
		{-100, false, Inaccuracy},
		{-99, false, Good},
		{-200, false, Mistake},
		{-199, false, Inaccuracy},
		{-350, false, Blunder},
		{-349, false, Mistake},
	}
	for _, tt := range tests {
		got := Classify(ClassifyInput{PrevEval: 0, CurrEval: tt.delta, RecommendedMove: "a", PlayedMove: pick(tt.engine, "a", "b"), Side: White})
		if got.Label != tt.want {
			t.Errorf("delta=%d engine=%v: got %v, want %v", tt.delta, tt.engine, got.Label, tt.want)
		}
	}
}

func TestClassify_ExtremeValuesResolve(t *testing.T) {
	for _, v := range []int{math.MinInt32, math.MaxInt32, -350, 0} {
		got := Classify(ClassifyInput{PrevEval: 0, CurrEval: v, RecommendedMove: "a", PlayedMove: "b", Side: White})
		if _, ok := labelTable[got.Label]; !ok {
			t.Fatalf("CurrEval=%d produced unknown label %v", v, got.Label)
		}
	}
}

func TestClassify_ExtremePreviousEvaluation(t *testing.T) {
	tests := []struct {
		name string
		in   ClassifyInput
		want Label
	}{
		{"white climbs from min", ClassifyInput{PrevEval: math.MinInt, CurrEval: math.MaxInt, RecommendedMove: "a", PlayedMove: "b", Side: White}, GreatMove},
		{"white falls from max", ClassifyInput{PrevEval: math.MaxInt, CurrEval: math.MinInt, RecommendedMove: "a", PlayedMove: "b", Side: White}, Blunder},
		{"black gains from max", ClassifyInput{PrevEval: math.MaxInt, CurrEval: math.MinInt, RecommendedMove: "a", PlayedMove: "b", Side: Black}, GreatMove},
		{"black to min from zero", ClassifyInput{PrevEval: 0, CurrEval: math.MinInt, RecommendedMove: "a", PlayedMove: "b", Side: Black}, GreatMove},
		{"min prev is not near-equal", ClassifyInput{PrevEval: math.MinInt, CurrEval: 0, RecommendedMove: "a", PlayedMove: "a", Side: White}, BestMove},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.in); got.Label != tt.want {
				t.Fatalf("Classify() = %v, want %v", got.Label, tt.want)
			}
		})
	}
}

func TestSwing_Saturates(t *testing.T) {
	tests := []struct {
		curr, prev, want int
	}{
		{10, 4, 6},
		{math.MaxInt, math.MinInt, math.MaxInt},
		{math.MinInt, math.MaxInt, -math.MaxInt},
		{math.MinInt, 0, -math.MaxInt},
		{math.MinInt + 1, 1, -math.MaxInt},
		{math.MaxInt, -1, math.MaxInt},
	}
	for _, tt := range tests {
		if got := swing(tt.curr, tt.prev); got != tt.want {
			t.Errorf("swing(%d, %d) = %d, want %d", tt.curr, tt.prev, got, tt.want)
		}
	}
	if abs(math.MinInt) != math.MaxInt {
		t.Errorf("abs(MinInt) = %d", abs(math.MinInt))
	}
}

func TestClassifyGame_TracksPreviousEvaluation(t *testing.T) {
	moves := []Move{
		{From: "e2", To: "e4", Notation: "e2e4"},
		{From: "e7", To: "e5", Notation: "e7e5"},
		{From: "g1", To: "f3", Notation: "g1f3"},
	}
	evals := []EvaluationSample{
		{Evaluation: 30, RecommendedMove: "e2e4"},
		{Evaluation: 300, RecommendedMove: "c7c5"},
		{Evaluation: 270, RecommendedMove: "g1f3"},
	}
	got, err := ClassifyGame(moves, evals)
	if err != nil {
		t.Fatalf("ClassifyGame: %v", err)
	}
	want := []Label{BestMove, Mistake, Excellent}
	for i := range want {
		if got[i].Label != want[i] {
			t.Errorf("ply %d: got %v, want %v", i, got[i].Label, want[i])
		}
	}
}

func TestClassifyGame_Misaligned(t *testing.T) {
	_, err := ClassifyGame([]Move{{Notation: "e2e4"}}, nil)
	if err == nil {
		t.Fatalf("expected alignment error")
	}
}

func pick(cond bool, a, b string) string {
	if cond {
		return a
	}
	return b
}

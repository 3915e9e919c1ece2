package review

import "strings"

// Side identifies the player who made a move.
type Side string

const (
	White Side = "white"
	Black Side = "black"
)

// SideOfPly maps a 0-based ply to its mover. Ply 0 is White's first move.
func SideOfPly(ply int) Side {
	if ply%2 == 0 {
		return White
	}
	return Black
}

func (s Side) String() string { return string(s) }

// Square is an algebraic square name such as "e4".
type Square string

// Move is one played half-move. Notation is the UCI form (from+to+promotion),
// which is what the evaluation service recommends moves in.
type Move struct {
	Ply       int    `json:"ply"`
	Side      Side   `json:"side"`
	From      Square `json:"from"`
	To        Square `json:"to"`
	Promotion string `json:"promotion,omitempty"`
	Notation  string `json:"notation"`
	SAN       string `json:"san,omitempty"`
}

// UCI rebuilds the from+to+promotion text when Notation was not filled in.
func (m Move) UCI() string {
	if m.Notation != "" {
		return m.Notation
	}
	return strings.ToLower(string(m.From) + string(m.To) + m.Promotion)
}

// Snapshot is an opaque board-state identifier. In this repository it is a FEN string.
type Snapshot string

// EvaluationSample is the engine verdict for the position after one ply.
// Evaluation is White-relative centipawns, or the mate distance when IsMate is set.
type EvaluationSample struct {
	Evaluation      int    `json:"evaluation"`
	IsMate          bool   `json:"mate"`
	RecommendedMove string `json:"best_move,omitempty"`
}

// Game is what a GameSource produces for one raw input.
type Game struct {
	Moves     []Move
	Snapshots []Snapshot
	Tags      map[string]string
	Opening   Opening
}

// Opening names the ECO classification of a game, if known.
type Opening struct {
	Code  string `json:"code,omitempty"`
	Title string `json:"title,omitempty"`
}

// Positions returns the snapshots that get evaluated: every position after a move,
// i.e. the initial position is excluded.
func (g Game) Positions() []string {
	if len(g.Snapshots) <= 1 {
		return nil
	}
	out := make([]string, 0, len(g.Snapshots)-1)
	for _, s := range g.Snapshots[1:] {
		out = append(out, string(s))
	}
	return out
}

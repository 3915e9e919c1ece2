package reviewdto

import "time"

// PlyReport is one row of a review: the move, its verdict and the engine numbers behind it.
type PlyReport struct {
	Ply            int    `json:"ply"`
	Side           string `json:"side"`
	SAN            string `json:"san,omitempty"`
	Move           string `json:"move"`
	Label          string `json:"label"`
	Score          int    `json:"score"`
	Evaluation     int    `json:"evaluation"`
	Mate           bool   `json:"mate"`
	EvalText       string `json:"eval_text"`
	Recommended    string `json:"recommended,omitempty"`
	PositionBefore string `json:"fen_before"`
	PositionAfter  string `json:"fen_after"`
}

// ReviewReport is the full output of a game review.
type ReviewReport struct {
	ID            string            `json:"id"`
	Opening       string            `json:"opening,omitempty"`
	ECO           string            `json:"eco,omitempty"`
	Tags          map[string]string `json:"tags,omitempty"`
	WhiteAccuracy int               `json:"white_accuracy"`
	BlackAccuracy int               `json:"black_accuracy"`
	WhiteCounts   map[string]int    `json:"white_counts"`
	BlackCounts   map[string]int    `json:"black_counts"`
	Plies         []PlyReport       `json:"plies"`
	CreatedAt     time.Time         `json:"created_at"`
}

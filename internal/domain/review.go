package domain

import "time"

// Review is the persisted outcome of one game review.
type Review struct {
	ID            string
	Source        string
	White         string
	Black         string
	Result        string
	ECO           string
	Opening       string
	Depth         int
	MovesUCI      []string
	MovesSAN      []string
	Labels        []string
	Evaluations   []int
	WhiteAccuracy int
	BlackAccuracy int
	WhiteCounts   map[string]int
	BlackCounts   map[string]int
	CreatedAt     time.Time
}

// Plies is the number of half-moves reviewed.
func (r *Review) Plies() int { return len(r.MovesUCI) }

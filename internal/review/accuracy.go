package review

import "math"

// SideStats counts labels for one side. Build it with NewSideStats so every label is present.
type SideStats map[Label]int

// NewSideStats returns a table with every label at zero.
func NewSideStats() SideStats {
	s := make(SideStats, len(labels))
	for _, l := range labels {
		s[l] = 0
	}
	return s
}

// Total is the number of plies counted.
func (s SideStats) Total() int {
	n := 0
	for _, c := range s {
		n += c
	}
	return n
}

func (s SideStats) clone() SideStats {
	out := make(SideStats, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Summary is the per-side reduction of a classified game.
type Summary struct {
	White       SideStats `json:"white"`
	Black       SideStats `json:"black"`
	WhiteScores []int     `json:"white_scores"`
	BlackScores []int     `json:"black_scores"`
}

// Accuracy holds per-side accuracy percentages.
type Accuracy struct {
	White int `json:"white"`
	Black int `json:"black"`
}

// Aggregate reduces a classification sequence. Ply i belongs to SideOfPly(i); scores land at
// index i/2 of that side's score list.
func Aggregate(classifications []Classification) Summary {
	sum := Summary{
		White:       NewSideStats(),
		Black:       NewSideStats(),
		WhiteScores: make([]int, 0, (len(classifications)+1)/2),
		BlackScores: make([]int, 0, len(classifications)/2),
	}
	for ply, c := range classifications {
		switch SideOfPly(ply) {
		case White:
			sum.White[c.Label]++
			sum.WhiteScores = append(sum.WhiteScores, c.Score)
		case Black:
			sum.Black[c.Label]++
			sum.BlackScores = append(sum.BlackScores, c.Score)
		}
	}
	return sum
}

// Accuracy averages both score lists.
func (s Summary) Accuracy() Accuracy {
	return Accuracy{White: Average(s.WhiteScores), Black: Average(s.BlackScores)}
}

// Average is round(sum/len) with halves rounded up. A side without moves counts as 100.
func Average(scores []int) int {
	if len(scores) == 0 {
		return 100
	}
	total := 0
	for _, v := range scores {
		total += v
	}
	return int(math.Floor(float64(total)/float64(len(scores)) + 0.5))
}

func (s Summary) clone() Summary {
	return Summary{
		White:       s.White.clone(),
		Black:       s.Black.clone(),
		WhiteScores: append([]int(nil), s.WhiteScores...),
		BlackScores: append([]int(nil), s.BlackScores...),
	}
}

package review

import "fmt"

// Label is the closed set of move-quality verdicts.
type Label int

const (
	BrilliantMove Label = iota
	BestMove
	GreatMove
	Excellent
	Good
	Inaccuracy
	Mistake
	Blunder
	GameOver
)

// labels lists every label in display order. Stats tables rely on this covering the enum.
var labels = [...]Label{
	BrilliantMove,
	BestMove,
	GreatMove,
	Excellent,
	Good,
	Inaccuracy,
	Mistake,
	Blunder,
	GameOver,
}

type labelInfo struct {
	name  string
	score int
	color string
	icon  string
}

var labelTable = map[Label]labelInfo{
	BrilliantMove: {name: "Brilliant Move", score: 100, color: "#36b3e4", icon: "💡"},
	BestMove:      {name: "Best Move", score: 100, color: "#81b64c", icon: "✔️"},
	GreatMove:     {name: "Great Move", score: 95, color: "#8acd3c", icon: "👏"},
	Excellent:     {name: "Excellent", score: 90, color: "#b6d96d", icon: "👍"},
	Good:          {name: "Good", score: 75, color: "#e7e164", icon: "🙂"},
	Inaccuracy:    {name: "Inaccuracy", score: 50, color: "#efd46d", icon: "⚠️"},
	Mistake:       {name: "Mistake", score: 25, color: "#d88828", icon: "❌"},
	Blunder:       {name: "Blunder", score: 5, color: "#c62c2c", icon: "💥"},
	GameOver:      {name: "Game Over", score: 100, color: "#444444", icon: "🏁"},
}

// Labels returns all labels in display order.
func Labels() []Label {
	out := make([]Label, len(labels))
	copy(out, labels[:])
	return out
}

func (l Label) String() string {
	if info, ok := labelTable[l]; ok {
		return info.name
	}
	return fmt.Sprintf("Label(%d)", int(l))
}

// Score is the accuracy contribution of the label, 0..100.
func (l Label) Score() int { return labelTable[l].score }

func (l Label) Color() string { return labelTable[l].color }

func (l Label) Icon() string { return labelTable[l].icon }

// MarshalText renders the display name so label-keyed maps encode readably.
func (l Label) MarshalText() ([]byte, error) {
	if _, ok := labelTable[l]; !ok {
		return nil, fmt.Errorf("unknown label %d", int(l))
	}
	return []byte(l.String()), nil
}

func (l *Label) UnmarshalText(text []byte) error {
	parsed, err := ParseLabel(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// ParseLabel is the inverse of Label.String.
func ParseLabel(name string) (Label, error) {
	for _, l := range labels {
		if labelTable[l].name == name {
			return l, nil
		}
	}
	return 0, fmt.Errorf("unknown label %q", name)
}

// Classification is the derived verdict for one ply.
type Classification struct {
	Label Label  `json:"label"`
	Score int    `json:"score"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

func newClassification(l Label) Classification {
	info := labelTable[l]
	return Classification{Label: l, Score: info.score, Color: info.color, Icon: info.icon}
}

package reviewpresenter

import (
	"fmt"
	"strings"

	"github.com/park285/cheese-review/internal/domain"
	"github.com/park285/cheese-review/internal/review"
)

const evalBarCells = 20

// Formatter renders review state as plain terminal text.
type Formatter struct {
	icons bool
}

// NewFormatter; icons adds the label glyphs next to verdicts.
func NewFormatter(icons bool) *Formatter {
	return &Formatter{icons: icons}
}

func (f *Formatter) label(l review.Label) string {
	if f.icons {
		return l.Icon() + " " + l.String()
	}
	return l.String()
}

// Summary is the header block: players, opening, accuracy and per-label counts.
func (f *Formatter) Summary(s *review.Session) string {
	var sb strings.Builder
	white, black := orDash(s.Tag("White")), orDash(s.Tag("Black"))
	sb.WriteString(fmt.Sprintf("%s vs %s", white, black))
	if r := s.Tag("Result"); r != "" {
		sb.WriteString("  " + r)
	}
	sb.WriteString("\n")
	if op := s.Opening(); op.Title != "" {
		sb.WriteString(fmt.Sprintf("Opening: %s %s\n", op.Code, op.Title))
	}
	acc := s.Accuracy()
	sb.WriteString(fmt.Sprintf("Accuracy: white %d%%  black %d%%\n", acc.White, acc.Black))

	sum := s.Summary()
	for _, l := range review.Labels() {
		w, b := sum.White[l], sum.Black[l]
		if w == 0 && b == 0 {
			continue
		}
		sb.WriteString(fmt.Sprintf("  %-18s %3d %3d\n", f.label(l), w, b))
	}
	return sb.String()
}

// MoveList prints one numbered row per move pair with each ply's verdict.
func (f *Formatter) MoveList(s *review.Session) string {
	cls := s.Classifications()
	var sb strings.Builder
	for _, pair := range review.MovePairs(s.Moves()) {
		sb.WriteString(fmt.Sprintf("%3d. %-8s %-18s", pair.Number, notation(pair.White), f.label(cls[pair.WhiteIndex].Label)))
		if pair.Black != nil {
			sb.WriteString(fmt.Sprintf(" %-8s %s", notation(pair.Black), f.label(cls[pair.BlackIndex].Label)))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// View describes the cursor position: move, verdict, evaluation and engine suggestion.
func (f *Formatter) View(v review.View) string {
	var sb strings.Builder
	if v.Move == nil {
		sb.WriteString("Start position\n")
	} else {
		sb.WriteString(fmt.Sprintf("Ply %d: %d%s %s", v.Ply, v.Ply/2+1, dots(v.Move.Side), notation(v.Move)))
		if v.Classification != nil {
			sb.WriteString("  " + f.label(v.Classification.Label))
		}
		sb.WriteString("\n")
	}
	sb.WriteString(fmt.Sprintf("Eval %s %s\n", v.EvalText(), EvalBarText(v.EvalBar())))
	if v.Evaluation != nil && v.Evaluation.RecommendedMove != "" {
		sb.WriteString("Engine: " + v.Evaluation.RecommendedMove + "\n")
	}
	if len(v.Highlighted) == 2 {
		sb.WriteString(fmt.Sprintf("Highlight: %s %s\n", v.Highlighted[0], v.Highlighted[1]))
	}
	sb.WriteString("FEN: " + string(v.Position) + "\n")
	return sb.String()
}

// History lists stored reviews, newest first as given.
func (f *Formatter) History(items []*domain.Review) string {
	if len(items) == 0 {
		return "No stored reviews.\n"
	}
	var sb strings.Builder
	for _, rv := range items {
		sb.WriteString(fmt.Sprintf("%s  %s  %s vs %s  %d plies  %d%%/%d%%\n",
			rv.CreatedAt.Format("2006-01-02 15:04"), rv.ID, orDash(rv.White), orDash(rv.Black),
			rv.Plies(), rv.WhiteAccuracy, rv.BlackAccuracy))
	}
	return sb.String()
}

// EvalBarText draws the bar horizontally, White's share as '#'.
func EvalBarText(bar review.EvalBar) string {
	filled := int(bar.WhiteShare/100*evalBarCells + 0.5)
	if filled < 0 {
		filled = 0
	}
	if filled > evalBarCells {
		filled = evalBarCells
	}
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", evalBarCells-filled) + "] " + bar.Label
}

func notation(m *review.Move) string {
	if m == nil {
		return ""
	}
	if m.SAN != "" {
		return m.SAN
	}
	return m.UCI()
}

func dots(s review.Side) string {
	if s == review.Black {
		return "..."
	}
	return "."
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

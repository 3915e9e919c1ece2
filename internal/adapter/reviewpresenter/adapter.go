package reviewpresenter

import (
	"github.com/park285/cheese-review/internal/domain"
	"github.com/park285/cheese-review/internal/review"
	"github.com/park285/cheese-review/pkg/reviewdto"
)

// ToReport flattens a loaded session into its wire form.
func ToReport(s *review.Session) reviewdto.ReviewReport {
	if s == nil {
		return reviewdto.ReviewReport{}
	}
	acc := s.Accuracy()
	sum := s.Summary()
	moves := s.Moves()
	snaps := s.Snapshots()
	evals := s.Evaluations()
	cls := s.Classifications()

	out := reviewdto.ReviewReport{
		ID:            s.ID(),
		Opening:       s.Opening().Title,
		ECO:           s.Opening().Code,
		Tags:          tagsOf(s),
		WhiteAccuracy: acc.White,
		BlackAccuracy: acc.Black,
		WhiteCounts:   countsByName(sum.White),
		BlackCounts:   countsByName(sum.Black),
		Plies:         make([]reviewdto.PlyReport, 0, len(moves)),
		CreatedAt:     s.LoadedAt(),
	}
	for i, mv := range moves {
		out.Plies = append(out.Plies, reviewdto.PlyReport{
			Ply:            i,
			Side:           mv.Side.String(),
			SAN:            mv.SAN,
			Move:           mv.UCI(),
			Label:          cls[i].Label.String(),
			Score:          cls[i].Score,
			Evaluation:     evals[i].Evaluation,
			Mate:           evals[i].IsMate,
			EvalText:       review.FormatEvaluation(evals[i].Evaluation, evals[i].IsMate),
			Recommended:    evals[i].RecommendedMove,
			PositionBefore: string(snaps[i]),
			PositionAfter:  string(snaps[i+1]),
		})
	}
	return out
}

// StoredToReport rebuilds a report from a persisted review. Positions are not stored.
func StoredToReport(rv *domain.Review) reviewdto.ReviewReport {
	if rv == nil {
		return reviewdto.ReviewReport{}
	}
	out := reviewdto.ReviewReport{
		ID:            rv.ID,
		Opening:       rv.Opening,
		ECO:           rv.ECO,
		Tags:          map[string]string{},
		WhiteAccuracy: rv.WhiteAccuracy,
		BlackAccuracy: rv.BlackAccuracy,
		WhiteCounts:   rv.WhiteCounts,
		BlackCounts:   rv.BlackCounts,
		Plies:         make([]reviewdto.PlyReport, 0, len(rv.MovesUCI)),
		CreatedAt:     rv.CreatedAt,
	}
	for k, v := range map[string]string{"White": rv.White, "Black": rv.Black, "Result": rv.Result} {
		if v != "" {
			out.Tags[k] = v
		}
	}
	for i, mv := range rv.MovesUCI {
		p := reviewdto.PlyReport{Ply: i, Side: review.SideOfPly(i).String(), Move: mv}
		if i < len(rv.MovesSAN) {
			p.SAN = rv.MovesSAN[i]
		}
		if i < len(rv.Labels) {
			p.Label = rv.Labels[i]
			if l, err := review.ParseLabel(p.Label); err == nil {
				p.Score = l.Score()
			}
		}
		if i < len(rv.Evaluations) {
			p.Evaluation = rv.Evaluations[i]
			p.EvalText = review.FormatEvaluation(p.Evaluation, p.Label == review.GameOver.String())
			p.Mate = p.Label == review.GameOver.String()
		}
		out.Plies = append(out.Plies, p)
	}
	return out
}

func tagsOf(s *review.Session) map[string]string {
	out := map[string]string{}
	for _, k := range []string{"Event", "Site", "Date", "White", "Black", "Result"} {
		if v := s.Tag(k); v != "" {
			out[k] = v
		}
	}
	return out
}

func countsByName(s review.SideStats) map[string]int {
	out := make(map[string]int, len(s))
	for l, n := range s {
		out[l.String()] = n
	}
	return out
}

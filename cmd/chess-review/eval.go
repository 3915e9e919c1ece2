package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/park285/cheese-review/internal/chess"
	"github.com/park285/cheese-review/internal/review"
	"github.com/park285/cheese-review/pkg/reviewdto"
)

var evalCmd = &cobra.Command{
	Use:   "eval [FEN]",
	Short: "Evaluate a single position",
	Long: `Evaluate one position outside of a game review. The score is from
White's point of view.

Examples:
  chess-review eval "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq - 0 1"
  chess-review eval --depth 20 --json "6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1"`,
	Args: cobra.ExactArgs(1),
	RunE: runEval,
}

func init() {
	rootCmd.AddCommand(evalCmd)
}

func runEval(cmd *cobra.Command, args []string) error {
	fen := args[0]
	if err := chess.ValidateFEN(fen); err != nil {
		return err
	}
	ctx := cmd.Context()
	_, deps, err := buildDeps(ctx)
	if err != nil {
		return err
	}
	defer closeDeps(deps)

	sample, err := deps.Reviewer.Explore(ctx, fen)
	if err != nil {
		return err
	}
	p := presenterFor(cmd)
	if outputJSON {
		return p.JSON(reviewdto.NewAnalysisResponse(sample.RecommendedMove, sample.Evaluation, sample.IsMate))
	}
	best := sample.RecommendedMove
	if best == "" {
		best = "-"
	}
	return p.Text(fmt.Sprintf("Eval %s  best %s\n", review.FormatEvaluation(sample.Evaluation, sample.IsMate), best))
}

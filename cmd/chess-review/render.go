package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/park285/cheese-review/internal/render"
	"github.com/park285/cheese-review/internal/review"
)

var renderCmd = &cobra.Command{
	Use:   "render [FEN]",
	Short: "Draw a position as PNG",
	Long: `Draw a position with an optional move highlight and evaluation bar.
No engine is needed.

Examples:
  chess-review render "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq - 0 1" \
    --from e2 --to e4 --label "Best Move" --eval 35 --out board.png`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

var (
	renderFrom  string
	renderTo    string
	renderLabel string
	renderEval  int
	renderMate  bool
	renderOut   string
)

func init() {
	renderCmd.Flags().StringVar(&renderFrom, "from", "", "highlighted origin square")
	renderCmd.Flags().StringVar(&renderTo, "to", "", "highlighted target square")
	renderCmd.Flags().StringVar(&renderLabel, "label", "", "move label whose colour tints the highlight")
	renderCmd.Flags().IntVar(&renderEval, "eval", 0, "White-relative evaluation in centipawns, or mate distance with --mate")
	renderCmd.Flags().BoolVar(&renderMate, "mate", false, "treat --eval as a mate distance")
	renderCmd.Flags().StringVar(&renderOut, "out", "board.png", "output file")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	frame := render.Frame{
		Position: args[0],
		From:     renderFrom,
		To:       renderTo,
		Bar:      review.NewEvalBar(renderEval, renderMate),
		Caption:  review.FormatEvaluation(renderEval, renderMate),
	}
	if renderLabel != "" {
		l, err := review.ParseLabel(renderLabel)
		if err != nil {
			return err
		}
		frame.Accent = l.Color()
		frame.Caption += "  " + l.String()
	}
	png, err := render.New().RenderPNG(cmd.Context(), frame)
	if err != nil {
		return err
	}
	if err := presenterFor(cmd).Image(renderOut, png); err != nil {
		return err
	}
	return presenterFor(cmd).Text(fmt.Sprintf("wrote %s\n", renderOut))
}

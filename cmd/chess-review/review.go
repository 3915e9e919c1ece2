package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/park285/cheese-review/internal/adapter/reviewpresenter"
	"github.com/park285/cheese-review/internal/obslog"
	"github.com/park285/cheese-review/internal/render"
	"github.com/park285/cheese-review/internal/repository"
	"github.com/park285/cheese-review/internal/review"
)

var reviewCmd = &cobra.Command{
	Use:   "review [PGN file]",
	Short: "Review a whole game",
	Long: `Evaluate every position of a game in one batch, label each move and
print the accuracy summary and the annotated move list.

Input is PGN or a plain move list in SAN or UCI, read from the file or stdin.

Examples:
  chess-review review game.pgn
  echo "e4 e5 Nf3 Nc6 Bb5" | chess-review review --json
  chess-review review game.pgn --png-dir frames/`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReview,
}

var (
	pngDir string
	noSave bool
)

func init() {
	reviewCmd.Flags().StringVar(&pngDir, "png-dir", "", "write one board image per ply into this directory")
	reviewCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the review")
	rootCmd.AddCommand(reviewCmd)
}

func runReview(cmd *cobra.Command, args []string) error {
	raw, err := readGame(cmd, args)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	cfg, deps, err := buildDeps(ctx)
	if err != nil {
		return err
	}
	defer closeDeps(deps)

	res, err := deps.Reviewer.Load(ctx, raw)
	if err != nil {
		return err
	}
	s := res.Session

	if !noSave {
		if err := deps.Repo.InsertReview(ctx, repository.FromSession(s, raw, cfg.AnalysisDepth)); err != nil {
			obslog.L().Warn("store review failed", zap.String("review_id", s.ID()), zap.Error(err))
		}
	}
	if pngDir != "" {
		if err := renderAll(ctx, deps.Renderer, presenterFor(cmd), s, pngDir); err != nil {
			return err
		}
	}

	p := presenterFor(cmd)
	if outputJSON {
		return p.JSON(reviewpresenter.ToReport(s))
	}
	f := reviewpresenter.NewFormatter(showIcons)
	if err := p.Text(f.Summary(s)); err != nil {
		return err
	}
	return p.Text("\n" + f.MoveList(s))
}

// renderAll walks a cursor from the start position to the last ply.
func renderAll(ctx context.Context, r *render.Renderer, p *reviewpresenter.Presenter, s *review.Session, dir string) error {
	cur := review.NewCursor(s)
	for v, ok := cur.View(), true; ok; v, ok = cur.Next() {
		png, err := r.RenderPNG(ctx, render.FrameFromView(v))
		if err != nil {
			return err
		}
		if err := p.Image(filepath.Join(dir, fmt.Sprintf("ply-%03d.png", v.Ply+1)), png); err != nil {
			return err
		}
	}
	return nil
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/park285/cheese-review/internal/adapter/reviewpresenter"
	"github.com/park285/cheese-review/internal/render"
)

var navigateCmd = &cobra.Command{
	Use:   "navigate [PGN file]",
	Short: "Show one ply of a reviewed game",
	Long: `Review a game and jump to a ply. Ply -1 is the initial position, ply 0 the
position after White's first move. Out-of-range plies leave the view at the
initial position.

Examples:
  chess-review navigate game.pgn --ply 4
  chess-review navigate game.pgn --ply 4 --png board.png`,
	Args: cobra.MaximumNArgs(1),
	RunE: runNavigate,
}

var (
	navPly int
	navPNG string
)

func init() {
	navigateCmd.Flags().IntVar(&navPly, "ply", -1, "ply to show (-1 = initial position)")
	navigateCmd.Flags().StringVar(&navPNG, "png", "", "write the board image to this file")
	rootCmd.AddCommand(navigateCmd)
}

func runNavigate(cmd *cobra.Command, args []string) error {
	raw, err := readGame(cmd, args)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	_, deps, err := buildDeps(ctx)
	if err != nil {
		return err
	}
	defer closeDeps(deps)

	if _, err := deps.Reviewer.Load(ctx, raw); err != nil {
		return err
	}
	v := deps.Reviewer.Navigate(navPly)
	p := presenterFor(cmd)
	if v.Ply != navPly {
		fmt.Fprintf(cmd.ErrOrStderr(), "ply %d is out of range, showing ply %d\n", navPly, v.Ply)
	}

	if navPNG != "" {
		png, err := deps.Renderer.RenderPNG(ctx, render.FrameFromView(v))
		if err != nil {
			return err
		}
		if err := p.Image(navPNG, png); err != nil {
			return err
		}
	}
	if outputJSON {
		return p.JSON(v)
	}
	return p.Text(reviewpresenter.NewFormatter(showIcons).View(v))
}

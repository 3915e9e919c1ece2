package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/park285/cheese-review/internal/adapter/reviewpresenter"
	"github.com/park285/cheese-review/internal/chessbuilder"
	"github.com/park285/cheese-review/internal/config"
	"github.com/park285/cheese-review/internal/obslog"
)

var (
	// Global flags.
	depthFlag  int
	outputJSON bool
	showIcons  bool
)

var rootCmd = &cobra.Command{
	Use:   "chess-review",
	Short: "Move-by-move review of chess games",
	Long: `chess-review evaluates every position of a game, labels each move
(Brilliant Move through Blunder), computes accuracy for both sides and lets
you step through the game.

Evaluation comes from a local UCI engine (STOCKFISH_PATH) or a remote
evaluation service (EVAL_SERVICE_URL).

Examples:
  # Review a PGN file
  chess-review review game.pgn

  # Show the position after Black's second move
  chess-review navigate game.pgn --ply 3 --png board.png

  # Evaluate one position
  chess-review eval "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq - 0 1"

  # Run the evaluation service
  chess-review serve`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return obslog.InitFromEnv()
	},
}

func init() {
	rootCmd.PersistentFlags().IntVar(&depthFlag, "depth", 0, "search depth (default ANALYSIS_DEPTH or 12)")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "output JSON")
	rootCmd.PersistentFlags().BoolVar(&showIcons, "icons", true, "show label icons")
}

// loadConfig reads the environment and applies command-line overrides.
func loadConfig() (*config.AppConfig, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if depthFlag > 0 {
		cfg.AnalysisDepth = depthFlag
	}
	return cfg, nil
}

func buildDeps(ctx context.Context) (*config.AppConfig, *chessbuilder.Deps, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	deps, err := chessbuilder.New(ctx, cfg, obslog.L())
	if err != nil {
		return nil, nil, err
	}
	return cfg, deps, nil
}

func closeDeps(deps *chessbuilder.Deps) {
	if err := deps.Close(); err != nil {
		obslog.L().Warn("close dependencies", zap.Error(err))
	}
}

func presenterFor(cmd *cobra.Command) *reviewpresenter.Presenter {
	return reviewpresenter.NewPresenter(cmd.OutOrStdout(), writeFile)
}

func writeFile(name string, data []byte) error {
	if dir := filepath.Dir(name); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(name, data, 0o644)
}

// readGame reads move text from a file argument, or stdin for "-" or no argument.
func readGame(cmd *cobra.Command, args []string) (string, error) {
	var (
		data []byte
		err  error
	)
	if len(args) == 0 || args[0] == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return "", fmt.Errorf("read game: %w", err)
	}
	raw := string(data)
	if strings.TrimSpace(raw) == "" {
		return "", fmt.Errorf("read game: empty input")
	}
	return raw, nil
}

package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/park285/cheese-review/internal/evalserver"
	"github.com/park285/cheese-review/internal/obslog"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the evaluation service",
	Long: `Serve POST /analyze and POST /analyze-batch on HTTP_ADDR, backed by the
configured engine and caches. /metrics is exposed when METRICS_ENABLED=true.

Examples:
  STOCKFISH_PATH=/usr/games/stockfish chess-review serve
  chess-review serve --addr :9000`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var serveAddr string

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default HTTP_ADDR or :8080)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, deps, err := buildDeps(ctx)
	if err != nil {
		return err
	}
	defer closeDeps(deps)

	opts := []evalserver.Option{
		evalserver.WithLogger(obslog.L()),
		evalserver.WithStats(deps.Stats),
		evalserver.WithDefaultDepth(cfg.AnalysisDepth),
		evalserver.WithRequestTimeout(cfg.EvalTimeout),
		evalserver.WithAPIKey(cfg.EvalAPIKey),
	}
	if deps.Registry != nil {
		opts = append(opts, evalserver.WithGatherer(deps.Registry))
	}
	addr := cfg.HTTPAddr
	if serveAddr != "" {
		addr = serveAddr
	}
	return evalserver.New(deps.Evaluator, opts...).ListenAndServe(ctx, addr)
}

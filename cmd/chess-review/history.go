package main

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/park285/cheese-review/internal/adapter/reviewpresenter"
	"github.com/park285/cheese-review/internal/repository"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List stored reviews",
	Long: `List the most recent stored reviews, or print one by ID. Needs DATABASE_URL.

Examples:
  chess-review history --limit 5
  chess-review history --id 0b4c6f0e-... --json`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

var (
	historyLimit int
	historyID    string
)

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 10, "number of reviews to list")
	historyCmd.Flags().StringVar(&historyID, "id", "", "show a single review")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		return errors.New("DATABASE_URL is required for history")
	}
	ctx := cmd.Context()
	db, err := repository.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()
	repo := repository.NewPostgres(db)
	p := presenterFor(cmd)

	if historyID != "" {
		rv, err := repo.GetReview(ctx, historyID)
		if err != nil {
			return err
		}
		return p.JSON(reviewpresenter.StoredToReport(rv))
	}
	items, err := repo.RecentReviews(ctx, historyLimit)
	if err != nil {
		return err
	}
	if outputJSON {
		reports := make([]any, 0, len(items))
		for _, rv := range items {
			reports = append(reports, reviewpresenter.StoredToReport(rv))
		}
		return p.JSON(reports)
	}
	return p.Text(reviewpresenter.NewFormatter(showIcons).History(items))
}

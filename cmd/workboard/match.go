package main

import (
	"context"

	"workboard/internal/app"
	"workboard/internal/partition"
	"workboard/internal/store"
	"workboard/internal/usecase"

	"github.com/spf13/cobra"
)

var matchCmd = &cobra.Command{
	Use:   "match WORKER_ID",
	Short: "Rank open job postings for a worker",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		page, _ := flags.GetInt("page")
		size, _ := flags.GetInt("page-size")
		minScore, _ := flags.GetFloat64("min-score")
		years, err := yearRangeFlags(cmd)
		if err != nil {
			return err
		}

		return withContainer(cmd, func(ctx context.Context, c *app.Container) error {
			res, err := c.Matching.MatchesFor(ctx, args[0], usecase.MatchParams{
				Page:     page,
				PageSize: size,
				Years:    years,
				MinScore: minScore,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		})
	},
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().Int("page", 0, "zero based page number")
	matchCmd.Flags().Int("page-size", usecase.DefaultPageSize, "results per page (max 100)")
	matchCmd.Flags().Float64("min-score", 0, "drop postings scoring below this value")
	addYearRangeFlags(matchCmd)
}

func addYearRangeFlags(cmd *cobra.Command) {
	cmd.Flags().Int("from", 0, "first posting year to read")
	cmd.Flags().Int("to", 0, "last posting year to read")
}

// yearRangeFlags returns nil when neither bound is set. A single bound is
// open on the other side.
func yearRangeFlags(cmd *cobra.Command) (*store.YearRange, error) {
	from, _ := cmd.Flags().GetInt("from")
	to, _ := cmd.Flags().GetInt("to")
	if from == 0 && to == 0 {
		return nil, nil
	}
	if from == 0 {
		from = partition.MinYear
	}
	if to == 0 {
		to = partition.MaxYear
	}
	r := &store.YearRange{Start: from, End: to}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

package main

import (
	"context"
	"time"

	"workboard/internal/app"
	"workboard/internal/seeder"

	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Write the built-in sample workers and job postings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withContainer(cmd, func(ctx context.Context, c *app.Container) error {
			runner := seeder.Runner{Seeders: seeder.Defaults(time.Now().UTC())}
			if err := runner.Run(ctx, seeder.Target{Workers: c.Workers, Jobs: c.Jobs}); err != nil {
				return err
			}
			st, err := c.Store.Status(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), st)
		})
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

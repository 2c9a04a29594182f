package main

import (
	"context"

	"workboard/internal/app"
	"workboard/internal/importer"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var importCmd = &cobra.Command{
	Use:   "import FILE...",
	Short: "Import workers and jobs from JSON files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(cmd, func(ctx context.Context, c *app.Container) error {
			var total importer.Summary
			for _, path := range args {
				ds, err := importer.LoadFile(path)
				if err != nil {
					return err
				}
				sum, err := c.Importer.Import(ctx, ds)
				total.WorkersWritten += sum.WorkersWritten
				total.JobsWritten += sum.JobsWritten
				total.Failures = append(total.Failures, sum.Failures...)
				if err != nil {
					return err
				}
				c.Logger.Info("file imported", zap.String("path", path), zap.Int("failures", len(sum.Failures)))
			}
			return printJSON(cmd.OutOrStdout(), total)
		})
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}

package main

import (
	"context"
	"errors"

	"workboard/internal/app"
	"workboard/internal/skill"

	"github.com/spf13/cobra"
)

var workersCmd = &cobra.Command{
	Use:   "workers",
	Short: "Look up or search worker profiles",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		flags := cmd.Flags()
		id, _ := flags.GetString("id")
		user, _ := flags.GetString("user")
		skills, _ := flags.GetString("skills")
		region, _ := flags.GetString("region")

		return withContainer(cmd, func(ctx context.Context, c *app.Container) error {
			switch {
			case id != "":
				w, err := c.Workers.GetWorker(ctx, id)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), w)
			case user != "":
				w, err := c.Workers.WorkerByUser(ctx, user)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), w)
			case skills != "":
				list, err := c.Workers.WorkersWithSkills(ctx, skill.SplitList(skills), region)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), list)
			default:
				return errors.New("one of --id, --user or --skills is required")
			}
		})
	},
}

func init() {
	rootCmd.AddCommand(workersCmd)

	workersCmd.Flags().String("id", "", "worker id")
	workersCmd.Flags().String("user", "", "owning user id")
	workersCmd.Flags().String("skills", "", "comma separated skills, all of which must be held")
	workersCmd.Flags().String("region", "", "worker region")
}

package main

import (
	"context"
	"errors"

	"workboard/internal/app"
	"workboard/internal/skill"
	"workboard/internal/usecase"

	"github.com/spf13/cobra"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Look up or search job postings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		flags := cmd.Flags()
		id, _ := flags.GetString("id")
		year, _ := flags.GetInt("year")
		query, _ := flags.GetString("query")
		skills, _ := flags.GetString("skills")
		region, _ := flags.GetString("region")
		employer, _ := flags.GetString("employer")
		openOnly, _ := flags.GetBool("open")
		years, err := yearRangeFlags(cmd)
		if err != nil {
			return err
		}

		return withContainer(cmd, func(ctx context.Context, c *app.Container) error {
			switch {
			case id != "" && year != 0:
				j, err := c.Jobs.GetJob(ctx, year, id)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), j)
			case id != "":
				j, err := c.Jobs.FindJob(ctx, id)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), j)
			case employer != "":
				list, err := c.Jobs.JobsByEmployer(ctx, employer)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), list)
			case query != "" || skills != "" || region != "" || openOnly:
				list, err := c.Jobs.SearchJobs(ctx, usecase.JobSearch{
					Query:    query,
					Skills:   skill.SplitList(skills),
					Region:   region,
					Years:    years,
					OpenOnly: openOnly,
				})
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), list)
			case years != nil:
				list, err := c.Jobs.JobsByYearRange(ctx, years.Start, years.End)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), list)
			default:
				return errors.New("one of --id, --employer, --query, --skills, --region, --open or --from/--to is required")
			}
		})
	},
}

func init() {
	rootCmd.AddCommand(jobsCmd)

	jobsCmd.Flags().String("id", "", "posting id")
	jobsCmd.Flags().Int("year", 0, "posting year, makes --id a single partition read")
	jobsCmd.Flags().String("query", "", "text to find in title, description or skills")
	jobsCmd.Flags().String("skills", "", "comma separated skills, any of which must be required")
	jobsCmd.Flags().String("region", "", "posting region")
	jobsCmd.Flags().String("employer", "", "employer id")
	jobsCmd.Flags().Bool("open", false, "only open postings")
	addYearRangeFlags(jobsCmd)
}

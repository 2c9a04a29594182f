package main

import (
	"context"
	"errors"

	"workboard/internal/app"
	"workboard/internal/domain/application"

	"github.com/spf13/cobra"
)

var applicationsCmd = &cobra.Command{
	Use:   "applications",
	Short: "Apply to postings and review applications",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		flags := cmd.Flags()
		workerID, _ := flags.GetString("worker")
		jobID, _ := flags.GetString("job")
		employer, _ := flags.GetString("employer")
		id, _ := flags.GetString("id")
		status, _ := flags.GetString("status")
		stats, _ := flags.GetBool("stats")

		return withContainer(cmd, func(ctx context.Context, c *app.Container) error {
			out := cmd.OutOrStdout()
			switch {
			case workerID != "" && jobID != "":
				a, err := c.Applications.Apply(ctx, workerID, jobID)
				if err != nil {
					return err
				}
				return printJSON(out, a)
			case id != "" && status != "":
				a, err := c.Applications.UpdateApplicationStatus(ctx, id, application.Status(status))
				if err != nil {
					return err
				}
				return printJSON(out, a)
			case id != "":
				a, err := c.Applications.GetApplication(ctx, id)
				if err != nil {
					return err
				}
				return printJSON(out, a)
			case workerID != "":
				list, err := c.Applications.WorkerApplications(ctx, workerID, application.Status(status))
				if err != nil {
					return err
				}
				return printJSON(out, list)
			case employer != "":
				list, err := c.Applications.EmployerApplicants(ctx, employer)
				if err != nil {
					return err
				}
				return printJSON(out, list)
			case stats:
				counts, err := c.Applications.ApplicationStats(ctx)
				if err != nil {
					return err
				}
				return printJSON(out, counts)
			default:
				return errors.New("one of --worker, --id, --employer or --stats is required")
			}
		})
	},
}

func init() {
	rootCmd.AddCommand(applicationsCmd)

	applicationsCmd.Flags().String("worker", "", "worker id; with --job applies, alone lists the worker's applications")
	applicationsCmd.Flags().String("job", "", "posting id to apply to")
	applicationsCmd.Flags().String("employer", "", "list applicants to this employer's postings")
	applicationsCmd.Flags().String("id", "", "application id; with --status changes it")
	applicationsCmd.Flags().String("status", "", "pending, approved or rejected")
	applicationsCmd.Flags().Bool("stats", false, "count applications per status")
}

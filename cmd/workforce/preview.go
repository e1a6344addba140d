package main

import (
	"errors"

	"github.com/spf13/cobra"
	"github.com/warp/workforce-engine/generic"
	"github.com/warp/workforce-engine/planner"
	"github.com/warp/workforce-engine/rollout"
)

func previewCmd(app *App) *cobra.Command {
	var (
		templateID string
		rotationID string
		start      string
		weeks      int
		cycles     int
		policy     rollout.Policy
	)

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Project a template or rotation group onto upcoming weeks",
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := generic.ParseDate(start)
			if err != nil {
				return err
			}
			req := planner.RolloutRequest{
				StartWeek: day,
				Weeks:     weeks,
				Cycles:    cycles,
				Policy:    policy,
				Employees: app.cfg.Employees,
			}

			switch {
			case templateID != "" && rotationID != "":
				return errors.New("--template and --rotation are exclusive")
			case templateID != "":
				t, err := app.cfg.Template(generic.TemplateID(templateID))
				if err != nil {
					return err
				}
				req.Template = &t
			case rotationID != "":
				g, err := app.cfg.RotationGroup(rotationID)
				if err != nil {
					return err
				}
				req.Rotation = &g
			default:
				return errors.New("one of --template and --rotation is required")
			}

			preview, err := app.planner.PreviewRollout(cmd.Context(), req)
			if err != nil {
				return err
			}
			return app.print(preview)
		},
	}

	cmd.Flags().StringVar(&templateID, "template", "", "template ID")
	cmd.Flags().StringVar(&rotationID, "rotation", "", "rotation group ID")
	cmd.Flags().StringVar(&start, "start", "", "first week, any day (YYYY-MM-DD)")
	cmd.Flags().IntVar(&weeks, "weeks", 0, "number of weeks")
	cmd.Flags().IntVar(&cycles, "cycles", 0, "full rotation cycles, when --weeks is not set")
	cmd.Flags().BoolVar(&policy.SkipHolidays, "skip-holidays", false, "leave holidays unscheduled")
	cmd.Flags().BoolVar(&policy.OverwriteExisting, "overwrite", false, "mark matching shifts as existing instead of conflicts")
	cmd.Flags().BoolVar(&policy.KeepEmployeeAssignments, "keep-assignments", true, "keep employees pinned by the template")
	cmd.MarkFlagRequired("start")
	return cmd
}

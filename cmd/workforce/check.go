package main

import (
	"github.com/spf13/cobra"
	"github.com/warp/workforce-engine/generic"
	"github.com/warp/workforce-engine/planner"
	"github.com/warp/workforce-engine/pricing"
)

// CheckReport is the JSON document printed by check.
type CheckReport struct {
	Week       string                `json:"week"`
	Validation *planner.WeekReport   `json:"validation"`
	Cost       pricing.CostBreakdown `json:"cost"`
}

func checkCmd(app *App) *cobra.Command {
	var week string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate and price one week of shifts",
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := generic.ParseDate(week)
			if err != nil {
				return err
			}

			validation, err := app.planner.ValidateWeek(cmd.Context(), day)
			if err != nil {
				return err
			}
			cost, err := app.planner.WeeklyCost(cmd.Context(), day, app.cfg.Rates())
			if err != nil {
				return err
			}

			report := CheckReport{
				Week:       validation.Week.String(),
				Validation: validation,
				Cost:       cost.Round(2),
			}
			if err := app.print(report); err != nil {
				return err
			}
			if validation.Summary.HasBlocking() {
				app.logger.Warn("week has critical violations")
				return errCritical
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&week, "week", "", "any day of the week to check (YYYY-MM-DD)")
	cmd.MarkFlagRequired("week")
	return cmd
}

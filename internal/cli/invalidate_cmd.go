package cli

import (
	"context"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

func newInvalidateCmd(app *App) *cobra.Command {
	var moduleID string
	var resetCoverage bool
	var yes bool

	cmd := &cobra.Command{
		Use:   "invalidate",
		Short: "Force re-aggregation of a module profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			if !yes {
				confirmed := false
				form := huh.NewForm(huh.NewGroup(
					huh.NewConfirm().
						Title(fmt.Sprintf("Invalidate the profile of module %s?", moduleID)).
						Description("The next aggregation rebuilds it from the cached document analyses.").
						Value(&confirmed),
				))
				if err := form.Run(); err != nil {
					return err
				}
				if !confirmed {
					fmt.Println("aborted")
					return nil
				}
			}

			if err := app.Analysis.Invalidate(ctx, moduleID); err != nil {
				return err
			}
			fmt.Printf("module %s profile invalidated\n", moduleID)

			if resetCoverage {
				if err := app.Scheduler.ResetCoverage(ctx, moduleID); err != nil {
					return fmt.Errorf("resetting coverage: %w", err)
				}
				fmt.Println("coverage counters reset")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&moduleID, "module", "", "Module to invalidate")
	cmd.Flags().BoolVar(&resetCoverage, "reset-coverage", false, "Also reset all topic coverage counters")
	cmd.Flags().BoolVar(&yes, "yes", false, "Skip the confirmation prompt")
	_ = cmd.MarkFlagRequired("module")

	return cmd
}

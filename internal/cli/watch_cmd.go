package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newWatchCmd(app *App) *cobra.Command {
	var moduleID string
	var exitOnIdle bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Live view of the analysis queue for a module",
		RunE: func(cmd *cobra.Command, args []string) error {
			model := newWatchModel(context.Background(), app, moduleID, exitOnIdle)
			_, err := tea.NewProgram(model).Run()
			if err != nil {
				return fmt.Errorf("watch view: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&moduleID, "module", "", "Module to watch")
	cmd.Flags().BoolVar(&exitOnIdle, "exit-on-idle", false, "Exit once nothing is queued or running")
	_ = cmd.MarkFlagRequired("module")

	return cmd
}

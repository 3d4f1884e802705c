package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Butros55/studysync-ai-study-c-sub002/internal/cli/formatter"
	"github.com/Butros55/studysync-ai-study-c-sub002/internal/store"
)

func newStatusCmd(app *App) *cobra.Command {
	var moduleID string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show analysis state for a module",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			recs, err := app.Analyses.ListByModule(ctx, moduleID)
			if err != nil {
				return err
			}
			if len(recs) == 0 {
				fmt.Printf("no analyses for module %s\n", moduleID)
				return nil
			}

			rows := make([][]string, 0, len(recs))
			for _, rec := range recs {
				chunks := fmt.Sprintf("%d/%d", rec.ProcessedChunkCount, rec.ChunkCount)
				msg := rec.ErrorMessage
				if msg == "" {
					msg = "-"
				}
				rows = append(rows, []string{
					rec.DocumentID,
					string(rec.DocumentType),
					formatter.Status(rec.Status),
					formatter.Percent(rec.CoveragePercent),
					chunks,
					msg,
				})
			}
			fmt.Print(formatter.Table(
				[]string{"DOCUMENT", "TYPE", "STATUS", "COVERAGE", "CHUNKS", "MESSAGE"},
				rows,
			))

			profile, err := app.Profiles.Get(ctx, moduleID)
			if err != nil {
				if store.IsNotFound(err) {
					fmt.Println(formatter.Dim("module profile: not aggregated yet"))
					return nil
				}
				return err
			}
			fmt.Printf("module profile: %s, %d topics, coverage %s\n",
				formatter.Status(profile.Status),
				len(profile.Knowledge.Topics),
				formatter.Percent(profile.CoveragePercent))
			return nil
		},
	}

	cmd.Flags().StringVar(&moduleID, "module", "", "Module to inspect")
	_ = cmd.MarkFlagRequired("module")

	return cmd
}

package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Butros55/studysync-ai-study-c-sub002/internal/cli/formatter"
)

func newBlueprintCmd(app *App) *cobra.Command {
	var moduleID string
	var count int
	var record bool

	cmd := &cobra.Command{
		Use:   "blueprint",
		Short: "Plan the next batch of practice tasks for a module",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			if _, err := app.Analysis.AggregateModule(ctx, moduleID); err != nil {
				return fmt.Errorf("aggregating module profile: %w", err)
			}

			bp, err := app.Scheduler.BuildBlueprint(ctx, moduleID, count)
			if err != nil {
				return err
			}
			if len(bp.Items) == 0 {
				fmt.Println("empty blueprint: analyze more material first")
				return nil
			}

			rows := make([][]string, 0, len(bp.Items))
			for i, item := range bp.Items {
				rows = append(rows, []string{
					fmt.Sprintf("%d", i+1),
					item.TopicName,
					string(item.Difficulty),
					string(item.QuestionType),
					string(item.AnswerMode),
					fmt.Sprintf("%d", len(item.EvidenceSnippets)),
				})
			}
			fmt.Print(formatter.Table(
				[]string{"#", "TOPIC", "DIFFICULTY", "TYPE", "ANSWER", "EVIDENCE"},
				rows,
			))
			fmt.Printf("%d slots across %d topics\n", len(bp.Items), len(bp.CoveredTopicIDs))

			if record {
				for _, item := range bp.Items {
					if err := app.Scheduler.RecordGenerated(ctx, moduleID, item); err != nil {
						return fmt.Errorf("recording coverage for %s: %w", item.TopicName, err)
					}
				}
				fmt.Println("coverage counters updated")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&moduleID, "module", "", "Module to plan for")
	cmd.Flags().IntVar(&count, "count", 10, "Number of task slots to plan")
	cmd.Flags().BoolVar(&record, "record", false, "Bump coverage counters as if all slots were generated")
	_ = cmd.MarkFlagRequired("module")

	return cmd
}

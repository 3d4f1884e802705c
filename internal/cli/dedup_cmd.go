package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Butros55/studysync-ai-study-c-sub002/internal/cli/formatter"
	"github.com/Butros55/studysync-ai-study-c-sub002/internal/dedup"
)

func newDedupCheckCmd(app *App) *cobra.Command {
	var moduleID string
	var question string
	var solution string
	var tags []string
	var topK int

	cmd := &cobra.Command{
		Use:   "dedup-check",
		Short: "Check a candidate task against the module's task corpus",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			existing, err := app.Tasks.ListByModule(ctx, moduleID)
			if err != nil {
				return fmt.Errorf("loading task corpus: %w", err)
			}

			fp := app.Fingerprints.Fingerprint(question, solution, tags)
			idx := dedup.BuildFingerprintIndex(app.Fingerprints, existing)
			if taskID, found := idx.Lookup(fp.Fingerprint); found {
				fmt.Printf("exact duplicate of task %s\n", taskID)
				fmt.Printf("fingerprint %s\n", formatter.Dim(fp.Fingerprint))
				return nil
			}
			fmt.Printf("no exact duplicate %s\n", formatter.Dim("(fingerprint "+fp.Fingerprint+")"))

			candidate := question
			if solution != "" {
				candidate += " " + solution
			}
			res, err := app.Semantic.FindDuplicate(ctx, candidate, existing, 0)
			if err != nil {
				return fmt.Errorf("semantic check: %w", err)
			}
			if res.IsDuplicate {
				fmt.Printf("semantic duplicate of task %s (similarity %.3f, %s)\n",
					res.MatchingTaskID, res.Similarity, res.Method)
			} else {
				fmt.Printf("no semantic duplicate (best similarity %.3f, %s)\n",
					res.Similarity, res.Method)
			}

			if topK > 0 {
				ranked := app.Semantic.TopKSimilar(candidate, existing, topK, "")
				rows := make([][]string, 0, len(ranked))
				for _, s := range ranked {
					rows = append(rows, []string{s.TaskID, fmt.Sprintf("%.3f", s.Similarity)})
				}
				if len(rows) > 0 {
					fmt.Print(formatter.Table([]string{"TASK", "SIMILARITY"}, rows))
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&moduleID, "module", "", "Module whose task corpus to check against")
	cmd.Flags().StringVar(&question, "question", "", "Candidate question text")
	cmd.Flags().StringVar(&solution, "solution", "", "Candidate solution text")
	cmd.Flags().StringSliceVar(&tags, "tags", nil, "Candidate tags")
	cmd.Flags().IntVar(&topK, "top-k", 0, "Also list the K most similar existing tasks")
	_ = cmd.MarkFlagRequired("module")
	_ = cmd.MarkFlagRequired("question")

	return cmd
}

package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Butros55/studysync-ai-study-c-sub002/internal/cli/formatter"
	"github.com/Butros55/studysync-ai-study-c-sub002/internal/domain"
)

func newAnalyzeCmd(app *App) *cobra.Command {
	var moduleID string
	var documentID string
	var docType string
	var noWait bool

	cmd := &cobra.Command{
		Use:   "analyze <file>...",
		Short: "Queue study documents for analysis and process the queue",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			if !domain.ValidDocumentTypes[docType] {
				return fmt.Errorf("unknown document type %q (script, exercise, solution, exam)", docType)
			}
			if documentID != "" && len(args) > 1 {
				return fmt.Errorf("--id only applies to a single file")
			}

			for _, path := range args {
				text, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("reading %s: %w", path, err)
				}
				id := documentID
				if id == "" {
					id = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
				}
				doc := &domain.Document{
					DocumentID:   id,
					ModuleID:     moduleID,
					DocumentType: domain.DocumentType(docType),
					Text:         string(text),
				}
				queued, err := app.Analysis.Enqueue(ctx, doc)
				if err != nil {
					return fmt.Errorf("enqueueing %s: %w", id, err)
				}
				if queued {
					fmt.Printf("queued %s\n", id)
				} else {
					fmt.Printf("%s %s\n", id, formatter.Dim("(up to date or already queued)"))
				}
			}

			if noWait {
				return nil
			}

			if err := app.Analysis.Run(ctx); err != nil {
				return err
			}
			profile, err := app.Analysis.AggregateModule(ctx, moduleID)
			if err != nil {
				return fmt.Errorf("aggregating module profile: %w", err)
			}
			fmt.Printf("module %s: %d topics, coverage %s\n",
				moduleID, len(profile.Knowledge.Topics), formatter.Percent(profile.CoveragePercent))
			return nil
		},
	}

	cmd.Flags().StringVar(&moduleID, "module", "", "Module the documents belong to")
	cmd.Flags().StringVar(&documentID, "id", "", "Document ID (defaults to the file name)")
	cmd.Flags().StringVar(&docType, "type", "script", "Document type: script, exercise, solution, exam")
	cmd.Flags().BoolVar(&noWait, "no-wait", false, "Only enqueue; do not process the queue")
	_ = cmd.MarkFlagRequired("module")

	return cmd
}

// Package cli wires the studycore commands. All services are constructed
// in main and passed in explicitly; no package-level mutable state.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/Butros55/studysync-ai-study-c-sub002/internal/analysis"
	"github.com/Butros55/studysync-ai-study-c-sub002/internal/dedup"
	"github.com/Butros55/studysync-ai-study-c-sub002/internal/scheduler"
	"github.com/Butros55/studysync-ai-study-c-sub002/internal/store"
)

// App holds references to all services used by CLI commands.
type App struct {
	Analysis     *analysis.Service
	Scheduler    *scheduler.Service
	Analyses     *store.AnalysisRepo
	Profiles     *store.ProfileRepo
	Tasks        *store.TaskRepo
	Fingerprints *dedup.Fingerprinter
	Semantic     *dedup.SemanticChecker
}

// NewRootCmd creates the top-level "studycore" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "studycore",
		Short: "Knowledge extraction and task-coverage planner for study modules",
	}

	root.AddCommand(
		newAnalyzeCmd(app),
		newStatusCmd(app),
		newBlueprintCmd(app),
		newDedupCheckCmd(app),
		newInvalidateCmd(app),
		newWatchCmd(app),
	)

	return root
}

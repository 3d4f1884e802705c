package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Butros55/studysync-ai-study-c-sub002/internal/analysis"
	"github.com/Butros55/studysync-ai-study-c-sub002/internal/cli"
	"github.com/Butros55/studysync-ai-study-c-sub002/internal/db"
	"github.com/Butros55/studysync-ai-study-c-sub002/internal/dedup"
	"github.com/Butros55/studysync-ai-study-c-sub002/internal/extract"
	"github.com/Butros55/studysync-ai-study-c-sub002/internal/llm"
	"github.com/Butros55/studysync-ai-study-c-sub002/internal/merge"
	"github.com/Butros55/studysync-ai-study-c-sub002/internal/scheduler"
	"github.com/Butros55/studysync-ai-study-c-sub002/internal/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	dbPath := os.Getenv("STUDYCORE_DB")
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("finding home directory: %w", err)
		}
		dbPath = filepath.Join(home, ".studycore", "studycore.db")
	}

	database, err := db.OpenDB(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	kvStore := store.NewSQLiteStore(database)
	analyses := store.NewAnalysisRepo(kvStore)
	profiles := store.NewProfileRepo(kvStore)
	coverage := store.NewCoverageRepo(kvStore)
	tasks := store.NewTaskRepo(kvStore)
	queue := store.NewQueueRepo(kvStore)

	llmCfg := llm.LoadConfig()
	var llmObserver llm.Observer
	if llmCfg.LogCalls {
		llmObserver = llm.NewLogObserver(os.Stderr)
	}
	client := llm.NewOllamaClient(llmCfg, llmObserver)

	pipelineCfg := analysis.LoadConfig()
	extractor := extract.New(client, extract.Config{EvidenceThreshold: pipelineCfg.EvidenceThreshold})
	merger := merge.New(nil)

	var jobObserver analysis.Observer
	if os.Getenv("STUDYCORE_LOG_JOBS") != "" {
		jobObserver = analysis.NewLogObserver(os.Stderr)
	}
	analysisSvc := analysis.NewService(analyses, profiles, queue, nil, extractor, merger, jobObserver, pipelineCfg)
	if err := analysisSvc.RecoverStartup(context.Background()); err != nil {
		return fmt.Errorf("recovering queue state: %w", err)
	}

	app := &cli.App{
		Analysis:     analysisSvc,
		Scheduler:    scheduler.NewService(profiles, coverage),
		Analyses:     analyses,
		Profiles:     profiles,
		Tasks:        tasks,
		Fingerprints: dedup.NewFingerprinter(dedup.HashSHA256),
		Semantic:     dedup.NewSemanticChecker(dedup.LoadConfig(), client),
	}

	return cli.NewRootCmd(app).Execute()
}

package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Butros55/studysync-ai-study-c-sub002/internal/cli/formatter"
	"github.com/Butros55/studysync-ai-study-c-sub002/internal/domain"
)

const watchPollInterval = 500 * time.Millisecond

type watchTickMsg struct{}

type watchRecordsMsg struct {
	recs []*domain.DocumentAnalysisRecord
	err  error
}

// watchModel polls the analysis records of one module and renders their
// progress. It never mutates state itself; the queue runner owns writes.
type watchModel struct {
	ctx        context.Context
	app        *App
	moduleID   string
	exitOnIdle bool

	spin spinner.Model
	bar  progress.Model
	recs []*domain.DocumentAnalysisRecord
	err  error
}

func newWatchModel(ctx context.Context, app *App, moduleID string, exitOnIdle bool) watchModel {
	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = formatter.StyleBlue

	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 30

	return watchModel{
		ctx:        ctx,
		app:        app,
		moduleID:   moduleID,
		exitOnIdle: exitOnIdle,
		spin:       spin,
		bar:        bar,
	}
}

func (m watchModel) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.poll())
}

func (m watchModel) poll() tea.Cmd {
	return func() tea.Msg {
		recs, err := m.app.Analyses.ListByModule(m.ctx, m.moduleID)
		return watchRecordsMsg{recs: recs, err: err}
	}
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}
		return m, nil

	case watchRecordsMsg:
		m.recs = msg.recs
		m.err = msg.err
		if m.err != nil {
			return m, tea.Quit
		}
		if m.exitOnIdle && m.idle() {
			return m, tea.Quit
		}
		return m, tea.Tick(watchPollInterval, func(time.Time) tea.Msg {
			return watchTickMsg{}
		})

	case watchTickMsg:
		return m, m.poll()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m watchModel) idle() bool {
	for _, rec := range m.recs {
		if !rec.Status.Terminal() {
			return false
		}
	}
	return true
}

func (m watchModel) View() string {
	var b strings.Builder

	header := fmt.Sprintf("analysis queue for %s", m.moduleID)
	if formatter.ColorEnabled() {
		header = formatter.StyleHeader.Render(header)
	}
	b.WriteString(header)
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(fmt.Sprintf("error: %v\n", m.err))
		return b.String()
	}
	if len(m.recs) == 0 {
		b.WriteString(formatter.Dim("no analyses yet"))
		b.WriteString("\n")
		return b.String()
	}

	for _, rec := range m.recs {
		marker := " "
		if rec.Status == domain.StatusRunning {
			marker = m.spin.View()
		}
		frac := 0.0
		if rec.ChunkCount > 0 {
			frac = float64(rec.ProcessedChunkCount) / float64(rec.ChunkCount)
		}
		line := fmt.Sprintf("%s %-20s %-8s %s %s",
			marker,
			rec.DocumentID,
			formatter.Status(rec.Status),
			m.bar.ViewAs(frac),
			formatter.Percent(rec.CoveragePercent))
		b.WriteString(line)
		if rec.ErrorMessage != "" {
			b.WriteString("  ")
			b.WriteString(formatter.Dim(rec.ErrorMessage))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(formatter.Dim("q to quit"))
	b.WriteString("\n")
	return b.String()
}

package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"charm.land/bubbles/v2/progress"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/10thony/CobecDev-sub005/internal/engine"
	"github.com/10thony/CobecDev-sub005/internal/models"
)

const pollInterval = time.Second

// Theme holds the color scheme for the progress display.
type Theme struct {
	Status  lipgloss.Color
	Success lipgloss.Color
	Warn    lipgloss.Color
	Error   lipgloss.Color
	Hint    lipgloss.Color
}

var defaultTheme = Theme{
	Status:  lipgloss.Color("#5FAFD7"), // light blue
	Success: lipgloss.Color("#00D787"), // green
	Warn:    lipgloss.Color("#FFAF00"), // amber
	Error:   lipgloss.Color("#FF005F"), // red
	Hint:    lipgloss.Color("#6C6C6C"), // dim gray
}

func (t Theme) statusStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Status)
}

func (t Theme) completedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Success).Bold(true)
}

func (t Theme) pausedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Warn).Bold(true)
}

func (t Theme) errorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Error).Bold(true)
}

func (t Theme) hintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Hint).Italic(true)
}

// tickMsg triggers polling the job status
type tickMsg time.Time

// jobUpdateMsg carries the updated job data
type jobUpdateMsg struct {
	job *models.Job
	err error
}

// progressModel is the bubbletea model for job progress.
type progressModel struct {
	ctrl     *engine.Controller
	jobID    string
	job      *models.Job
	progress progress.Model
	theme    Theme
	done     bool
	quitting bool
	err      error
}

func newProgressModel(ctrl *engine.Controller, job *models.Job) progressModel {
	prog := progress.New(
		progress.WithDefaultBlend(),
		progress.WithWidth(40),
	)

	return progressModel{
		ctrl:     ctrl,
		jobID:    models.MustRecordIDString(job.ID),
		job:      job,
		progress: prog,
		theme:    defaultTheme,
	}
}

// Init returns the initial command (start polling).
func (m progressModel) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		m.progress.Init(),
	)
}

// Update handles messages and returns the updated model.
func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit
		}

	case tickMsg:
		return m, m.fetchJob()

	case jobUpdateMsg:
		if msg.err != nil {
			m.err = fmt.Errorf("failed to fetch job status: %w", msg.err)
			m.done = true
			return m, tea.Quit
		}

		m.job = msg.job

		// Paused counts as a stop: the review queue owns the job now.
		if m.job.Status.Terminal() || m.job.Status == models.JobPaused {
			m.done = true
			if m.job.Status == models.JobFailed && m.job.LastError != nil {
				m.err = fmt.Errorf("%s", m.job.LastError.Message)
			}
			return m, tea.Quit
		}

		return m, tickCmd()

	case progress.FrameMsg:
		var cmd tea.Cmd
		m.progress, cmd = m.progress.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the progress display.
func (m progressModel) View() tea.View {
	return tea.NewView(m.renderContent())
}

func (m progressModel) renderContent() string {
	if m.done {
		return m.finalView()
	}

	if m.job == nil {
		return "Loading job status...\n"
	}

	var pct float64
	if m.job.TotalUnits > 0 {
		pct = float64(m.job.ProcessedUnits) / float64(m.job.TotalUnits)
	}

	status := m.theme.statusStyle().Render(fmt.Sprintf("[%s]", m.job.Status))
	progressBar := m.progress.ViewAs(pct)
	counts := fmt.Sprintf("%d/%d units", m.job.ProcessedUnits, m.job.TotalUnits)
	task := ""
	if m.job.CurrentTask != "" {
		task = m.theme.hintStyle().Render(m.job.CurrentTask) + "\n"
	}
	hint := m.theme.hintStyle().Render("Press q to stop watching (the job keeps running)")

	return fmt.Sprintf("%s %s %s\n%s%s\n", status, progressBar, counts, task, hint)
}

func (m progressModel) finalView() string {
	if m.quitting {
		msg := fmt.Sprintf("\nStopped watching job %s.\nUse 'bidhunt jobs %s' to check status.\n",
			m.jobID, m.jobID)
		return m.theme.hintStyle().Render(msg)
	}

	if m.err != nil {
		return m.theme.errorStyle().Render(fmt.Sprintf("\n✗ Job failed: %s\n", m.err))
	}

	if m.job == nil {
		return ""
	}

	switch m.job.Status {
	case models.JobPaused:
		var output string
		output += m.theme.pausedStyle().Render("⏸ Paused for review") + "\n\n"
		output += m.unitSummary()
		output += fmt.Sprintf("\nUse 'bidhunt review %s' to work the review queue.\n", m.jobID)
		return output

	case models.JobCanceled:
		return m.theme.pausedStyle().Render("■ Canceled") + "\n\n" + m.unitSummary()

	default:
		return m.theme.completedStyle().Render("✓ Completed") + "\n\n" + m.unitSummary()
	}
}

func (m progressModel) unitSummary() string {
	var output string
	output += fmt.Sprintf("  Units processed: %d\n", m.job.ProcessedUnits)
	output += fmt.Sprintf("  Succeeded:       %d\n", m.job.SucceededUnits)
	if m.job.SkippedUnits > 0 {
		output += fmt.Sprintf("  Skipped:         %d\n", m.job.SkippedUnits)
	}
	if m.job.FailedUnits > 0 {
		output += m.theme.errorStyle().Render(fmt.Sprintf("  Failed:          %d\n", m.job.FailedUnits))
	}
	return output
}

// fetchJob fetches the current job status.
// Runs in a separate goroutine (command) to avoid blocking Update().
func (m progressModel) fetchJob() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		job, err := m.ctrl.Get(ctx, m.jobID)
		return jobUpdateMsg{job: job, err: err}
	}
}

// tickCmd returns a command that sends a tick after the poll interval.
func tickCmd() tea.Cmd {
	return tea.Tick(pollInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// watchJob follows a launched job until it settles. On a terminal it renders
// the interactive progress UI; otherwise it just waits for the runners.
func watchJob(ctx context.Context, ctrl *engine.Controller, job *models.Job) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		ctrl.Wait()
		final, err := ctrl.Get(ctx, models.MustRecordIDString(job.ID))
		if err != nil {
			return err
		}
		printJob(final)
		if final.Status == models.JobFailed && final.LastError != nil {
			return fmt.Errorf("job failed: %s", final.LastError.Message)
		}
		return nil
	}

	model := newProgressModel(ctrl, job)
	p := tea.NewProgram(model)

	finalModel, err := p.Run()
	if err != nil {
		return fmt.Errorf("progress UI error: %w", err)
	}

	// The runners live in this process; always let them settle the job
	// record before exiting, even after q.
	ctrl.Wait()

	if m, ok := finalModel.(progressModel); ok && m.err != nil && !m.quitting {
		return m.err
	}
	return nil
}

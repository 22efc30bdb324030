package cmd

import (
	"fmt"

	"github.com/bnema/duty-agent/internal/ports"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

type runDoneMsg struct {
	err error
}

type runProgressMsg struct {
	phase   string
	message string
}

type runSpinnerModel struct {
	spinner spinner.Model
	label   string
	start   tea.Cmd
	err     error
	done    bool
}

func newRunSpinnerModel(start tea.Cmd) runSpinnerModel {
	s := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("69"))),
	)

	return runSpinnerModel{
		spinner: s,
		label:   "Contacting model...",
		start:   start,
	}
}

func (m runSpinnerModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.start)
}

func (m runSpinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case runProgressMsg:
		if msg.message != "" {
			m.label = msg.message
		}
		return m, nil
	case runDoneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	default:
		return m, nil
	}
}

func (m runSpinnerModel) View() string {
	if m.done {
		return ""
	}

	return fmt.Sprintf("%s %s", m.spinner.View(), m.label)
}

// runWithSpinner drives the scheduling run behind a spinner that follows
// the transport's progress phases. Stream chunks are dropped here; the
// spinner shows phase messages only.
func runWithSpinner(cmd *cobra.Command, run func(ports.Progress) error) error {
	var program *tea.Program

	startCmd := func() tea.Msg {
		progress := func(phase, message, _ string) {
			if program == nil || phase == "" {
				return
			}
			program.Send(runProgressMsg{phase: phase, message: message})
		}
		return runDoneMsg{err: run(progress)}
	}

	program = tea.NewProgram(
		newRunSpinnerModel(startCmd),
		tea.WithInput(nil),
		tea.WithOutput(cmd.OutOrStdout()),
		tea.WithContext(cmd.Context()),
	)

	finalModel, err := program.Run()
	if err != nil {
		return err
	}

	result, ok := finalModel.(runSpinnerModel)
	if !ok {
		return fmt.Errorf("unexpected final spinner model type %T", finalModel)
	}

	return result.err
}

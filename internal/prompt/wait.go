package prompt

import (
	"context"
	"io"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

type workDoneMsg struct{}

// WaitModel shows a spinner and a label until the work it waits on finishes
// or the user presses ctrl+c.
type WaitModel struct {
	spinner     spinner.Model
	label       string
	done        bool
	interrupted bool
}

func NewWaitModel(label string) WaitModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle
	return WaitModel{spinner: s, label: label}
}

func (m WaitModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m WaitModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case workDoneMsg:
		m.done = true
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "esc" {
			m.interrupted = true
			return m, tea.Quit
		}
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m WaitModel) View() string {
	if m.done || m.interrupted {
		return ""
	}
	return m.spinner.View() + " " + dimStyle.Render(m.label)
}

// Interrupted reports whether the user gave up waiting.
func (m WaitModel) Interrupted() bool {
	return m.interrupted
}

// Wait runs fn while a spinner labelled label is shown on out. Interrupting
// the spinner cancels the context passed to fn. It returns fn's error.
func Wait(ctx context.Context, label string, in io.Reader, out io.Writer, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	program := tea.NewProgram(NewWaitModel(label), tea.WithInput(in), tea.WithOutput(out))

	result := make(chan error, 1)
	go func() {
		result <- fn(ctx)
		program.Send(workDoneMsg{})
	}()

	// A spinner that fails to draw does not fail the work.
	final, err := program.Run()
	if m, ok := final.(WaitModel); err == nil && ok && m.Interrupted() {
		cancel()
	}
	return <-result
}

// Package prompt holds the small interactive terminal views: the import mode
// chooser and the spinner shown while the assistant is thinking.
package prompt

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/atinylittleshell/memorycare/internal/backup"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ErrCancelled is returned when the user backs out of the prompt.
var ErrCancelled = errors.New("import cancelled")

type choice struct {
	mode        backup.Mode
	label       string
	description string
	key         string
}

var choices = []choice{
	{backup.ModeMerge, "Merge", "Keep current data and add or update records from the backup.", "m"},
	{backup.ModeOverwrite, "Overwrite", "Delete all current data and replace it with the backup.", "o"},
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// Model is the bubbletea model for the import mode chooser.
type Model struct {
	fileName  string
	cursor    int
	chosen    backup.Mode
	cancelled bool
}

// NewModel creates a chooser for the named backup file.
func NewModel(fileName string) Model {
	return Model{fileName: fileName}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "up", "k", "shift+tab":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j", "tab":
		if m.cursor < len(choices)-1 {
			m.cursor++
		}
	case "enter":
		m.chosen = choices[m.cursor].mode
		return m, tea.Quit
	case "q", "esc", "ctrl+c":
		m.cancelled = true
		return m, tea.Quit
	default:
		for _, c := range choices {
			if keyMsg.String() == c.key {
				m.chosen = c.mode
				return m, tea.Quit
			}
		}
	}
	return m, nil
}

func (m Model) View() string {
	if m.chosen != "" || m.cancelled {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("How should %s be imported?", m.fileName)))
	b.WriteString("\n\n")
	for i, c := range choices {
		cursor := "  "
		label := fmt.Sprintf("%s (%s)", c.label, c.key)
		if i == m.cursor {
			cursor = "> "
			label = selectedStyle.Render(label)
		}
		b.WriteString(cursor + label + "\n")
		b.WriteString("    " + dimStyle.Render(c.description) + "\n")
	}
	b.WriteString("\n" + dimStyle.Render("enter to confirm · esc to cancel") + "\n")
	return b.String()
}

// Chosen returns the selected mode, or ErrCancelled.
func (m Model) Chosen() (backup.Mode, error) {
	if m.cancelled || m.chosen == "" {
		return "", ErrCancelled
	}
	return m.chosen, nil
}

// ChooseImportMode runs the chooser on the given terminal streams.
func ChooseImportMode(fileName string, in io.Reader, out io.Writer) (backup.Mode, error) {
	program := tea.NewProgram(NewModel(fileName), tea.WithInput(in), tea.WithOutput(out))
	final, err := program.Run()
	if err != nil {
		return "", fmt.Errorf("import prompt failed: %w", err)
	}
	return final.(Model).Chosen()
}

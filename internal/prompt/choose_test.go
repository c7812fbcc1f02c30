package prompt

import (
	"testing"

	"github.com/atinylittleshell/memorycare/internal/backup"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func press(t *testing.T, m Model, keys ...tea.KeyMsg) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, key := range keys {
		var next tea.Model
		next, cmd = m.Update(key)
		m = next.(Model)
	}
	return m, cmd
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestModel_EnterSelectsHighlighted(t *testing.T) {
	m, cmd := press(t, NewModel("backup.json"), tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	mode, err := m.Chosen()
	require.NoError(t, err)
	assert.Equal(t, backup.ModeMerge, mode)
}

func TestModel_ArrowsMoveCursor(t *testing.T) {
	m, _ := press(t, NewModel("backup.json"),
		tea.KeyMsg{Type: tea.KeyDown},
		tea.KeyMsg{Type: tea.KeyDown},
		tea.KeyMsg{Type: tea.KeyEnter},
	)
	mode, err := m.Chosen()
	require.NoError(t, err)
	assert.Equal(t, backup.ModeOverwrite, mode)

	m, _ = press(t, NewModel("backup.json"),
		tea.KeyMsg{Type: tea.KeyDown},
		tea.KeyMsg{Type: tea.KeyUp},
		tea.KeyMsg{Type: tea.KeyUp},
		tea.KeyMsg{Type: tea.KeyEnter},
	)
	mode, err = m.Chosen()
	require.NoError(t, err)
	assert.Equal(t, backup.ModeMerge, mode)
}

func TestModel_ShortcutKeys(t *testing.T) {
	m, _ := press(t, NewModel("backup.json"), runeKey('o'))
	mode, err := m.Chosen()
	require.NoError(t, err)
	assert.Equal(t, backup.ModeOverwrite, mode)

	m, _ = press(t, NewModel("backup.json"), runeKey('m'))
	mode, err = m.Chosen()
	require.NoError(t, err)
	assert.Equal(t, backup.ModeMerge, mode)
}

func TestModel_Cancel(t *testing.T) {
	m, cmd := press(t, NewModel("backup.json"), tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	_, err := m.Chosen()
	assert.ErrorIs(t, err, ErrCancelled)

	m, _ = press(t, NewModel("backup.json"), runeKey('x'))
	_, err = m.Chosen()
	assert.ErrorIs(t, err, ErrCancelled, "no choice made yet")
}

func TestModel_View(t *testing.T) {
	m := NewModel("memorycare_backup_2026-01-01.json")
	view := m.View()
	assert.Contains(t, view, "memorycare_backup_2026-01-01.json")
	assert.Contains(t, view, "Merge (m)")
	assert.Contains(t, view, "Overwrite (o)")

	m, _ = press(t, m, runeKey('m'))
	assert.Empty(t, m.View())
}

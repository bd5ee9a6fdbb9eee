package styles_test

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/tabsession/internal/cli/styles"
)

func press(t *testing.T, m tea.Model, keys ...tea.KeyMsg) styles.ConfirmModel {
	t.Helper()
	for _, k := range keys {
		m, _ = m.Update(k)
	}
	c, ok := m.(styles.ConfirmModel)
	require.True(t, ok)
	return c
}

func TestConfirmModel(t *testing.T) {
	theme := styles.NewTheme()
	enter := tea.KeyMsg{Type: tea.KeyEnter}

	tests := []struct {
		name      string
		keys      []tea.KeyMsg
		done      bool
		confirmed bool
	}{
		{name: "defaults to no", keys: []tea.KeyMsg{enter}, done: true},
		{name: "y then enter", keys: []tea.KeyMsg{{Type: tea.KeyRunes, Runes: []rune("y")}, enter}, done: true, confirmed: true},
		{name: "right then enter", keys: []tea.KeyMsg{{Type: tea.KeyRight}, enter}, done: true, confirmed: true},
		{name: "yes then back to no", keys: []tea.KeyMsg{{Type: tea.KeyRunes, Runes: []rune("y")}, {Type: tea.KeyLeft}, enter}, done: true},
		{name: "escape cancels", keys: []tea.KeyMsg{{Type: tea.KeyRunes, Runes: []rune("y")}, {Type: tea.KeyEsc}}, done: true},
		{name: "selection alone is not done", keys: []tea.KeyMsg{{Type: tea.KeyRunes, Runes: []rune("y")}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := press(t, styles.NewConfirm(theme, "Delete?"), tt.keys...)
			assert.Equal(t, tt.done, m.Done())
			assert.Equal(t, tt.confirmed, m.Result())
		})
	}
}

func TestConfirmModel_QuitsWhenDone(t *testing.T) {
	m := styles.NewConfirm(styles.NewTheme(), "Delete?")
	assert.Contains(t, m.View(), "Delete?")

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
	assert.Empty(t, next.View())
}

func TestStyledTable_RendersRows(t *testing.T) {
	rows := []styles.SlotRow{
		{Slot: 0, Tabs: 3, Incognito: 1, Selected: 12, SavedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)},
		{Slot: 2, Tabs: 0, Selected: -1},
	}
	tableRows := make([]table.Row, 0, len(rows))
	for _, r := range rows {
		tableRows = append(tableRows, r.ToRow())
	}
	out := styles.NewStyledTable(styles.NewTheme(), styles.SlotTableColumns(), tableRows).View()

	assert.Contains(t, out, "Slot")
	assert.Contains(t, out, "12")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.GreaterOrEqual(t, len(lines), 3)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", styles.Truncate("short", 10))
	assert.Equal(t, "abcd…", styles.Truncate("abcdefgh", 5))
	assert.Equal(t, "…", styles.Truncate("abc", 1))
}

package styles

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// NewStyledTable creates a themed, unfocused table sized to its rows, ready to be
// printed with View.
func NewStyledTable(theme *Theme, columns []table.Column, rows []table.Row) table.Model {
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(false),
		// The header and its bottom border count against the height.
		table.WithHeight(len(rows)+2),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(theme.Border).
		BorderBottom(true).
		Foreground(theme.Accent).
		Bold(true)
	// Unfocused tables still mark their cursor row; keep it plain.
	s.Selected = s.Cell.Foreground(theme.Text)
	s.Cell = s.Cell.
		Foreground(theme.Text)

	t.SetStyles(s)
	return t
}

// SlotTableColumns returns columns for the slot list.
func SlotTableColumns() []table.Column {
	return []table.Column{
		{Title: "Slot", Width: 6},
		{Title: "Tabs", Width: 6},
		{Title: "Incognito", Width: 10},
		{Title: "Selected", Width: 10},
		{Title: "Saved", Width: 20},
	}
}

// RecordTableColumns returns columns for the records of one slot.
func RecordTableColumns() []table.Column {
	return []table.Column{
		{Title: "#", Width: 4},
		{Title: "ID", Width: 8},
		{Title: "Kind", Width: 10},
		{Title: "State", Width: 8},
		{Title: "URL", Width: 50},
	}
}

// SlotRow is one line of the slot list.
type SlotRow struct {
	Slot      int
	Tabs      int
	Incognito int
	Selected  int
	SavedAt   time.Time
}

// ToRow converts to table.Row.
func (r SlotRow) ToRow() table.Row {
	return table.Row{
		strconv.Itoa(r.Slot),
		strconv.Itoa(r.Tabs),
		strconv.Itoa(r.Incognito),
		formatID(r.Selected),
		formatTime(r.SavedAt),
	}
}

// RecordRow is one line of a slot's records.
type RecordRow struct {
	Index    int
	ID       int
	Kind     string
	HasState bool
	URL      string
}

// ToRow converts to table.Row.
func (r RecordRow) ToRow() table.Row {
	state := "-"
	if r.HasState {
		state = "saved"
	}
	return table.Row{strconv.Itoa(r.Index), strconv.Itoa(r.ID), r.Kind, state, Truncate(r.URL, 50)}
}

func formatID(id int) string {
	if id < 0 {
		return "-"
	}
	return strconv.Itoa(id)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

// Truncate shortens s to at most width runes, marking the cut with an ellipsis.
func Truncate(s string, width int) string {
	runes := []rune(s)
	if width <= 0 || len(runes) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return fmt.Sprintf("%s…", string(runes[:width-1]))
}

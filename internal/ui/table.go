package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

func RenderTable(headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(Primary)).
		Headers(headers...)

	for _, row := range rows {
		t.Row(row...)
	}

	return t.String()
}

// RenderVariablesTable renders name/value pairs with the names highlighted.
func RenderVariablesTable(title string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(Primary)).
		Headers("VARIABLE", "VALUE").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Bold(true).Foreground(Primary)
			}
			if col == 0 {
				return CodeStyle
			}
			return lipgloss.Style{}
		})

	for _, row := range rows {
		t.Row(row...)
	}

	return fmt.Sprintf("%s\n%s\n", HeaderStyle.Render(title), t.String())
}

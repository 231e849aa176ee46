package report

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")).
			Bold(true)

	borderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

// Console renders the summary as a bordered table with each task name in
// its chart colour.
func Console(rows []Row) string {
	data := Table(rows)

	headers := make([]string, len(data[0]))
	for i, h := range data[0] {
		headers[i] = headerStyle.Render(h)
	}

	body := make([][]string, 0, len(rows))
	for i, cells := range data[1:] {
		styled := append([]string(nil), cells...)
		styled[0] = lipgloss.NewStyle().
			Foreground(lipgloss.Color(rows[i].Task.Hex())).
			Bold(true).
			Render(cells[0])
		body = append(body, styled)
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		Rows(body...).
		String()
}

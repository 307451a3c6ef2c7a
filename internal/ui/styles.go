package ui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true)

	questionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")).
			Bold(true)

	cursorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	draftStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)
)

var statusColors = map[string]lipgloss.Color{
	"draft":       lipgloss.Color("241"),
	"ready":       lipgloss.Color("39"),
	"in-progress": lipgloss.Color("214"),
	"active":      lipgloss.Color("214"),
	"done":        lipgloss.Color("42"),
}

func statusBadge(status string) string {
	color, ok := statusColors[status]
	if !ok {
		color = lipgloss.Color("241")
	}
	return lipgloss.NewStyle().Foreground(color).Render("[" + status + "]")
}

package tui

import "github.com/charmbracelet/lipgloss"

var (
	focusedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	blurredStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	noStyle      = lipgloss.NewStyle()

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))

	helpStyle = blurredStyle

	statusStyles = map[string]lipgloss.Style{
		"open":        lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		"in-progress": lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		"resolved":    lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
	}

	priorityStyles = map[string]lipgloss.Style{
		"low":    lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		"medium": lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
		"high":   lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	}
)

func badge(styles map[string]lipgloss.Style, value string) string {
	style, ok := styles[value]
	if !ok {
		style = noStyle
	}
	return style.Render("[" + value + "]")
}

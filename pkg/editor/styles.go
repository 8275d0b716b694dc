package editor

import "github.com/charmbracelet/lipgloss"

var (
	accentColor = lipgloss.Color("212")
	mutedColor  = lipgloss.Color("241")
	errorColor  = lipgloss.Color("196")

	accentStyle   = lipgloss.NewStyle().Foreground(accentColor)
	mutedStyle    = lipgloss.NewStyle().Foreground(mutedColor)
	errorStyle    = lipgloss.NewStyle().Foreground(errorColor)
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(accentColor)
	sectionStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("245"))
	itemStyle     = lipgloss.NewStyle()
	selectedStyle = lipgloss.NewStyle().Bold(true)
	headerStyle   = lipgloss.NewStyle().Bold(true).Padding(0, 1).Background(lipgloss.Color("236"))
	footerStyle   = lipgloss.NewStyle().Foreground(mutedColor).Padding(0, 1)
)

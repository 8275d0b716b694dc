package dialog

import "github.com/charmbracelet/lipgloss"

// Colors shared with the editor's page styles.
var (
	Primary      = lipgloss.Color("212")
	Error        = lipgloss.Color("196")
	Info         = lipgloss.Color("45")
	MutedColor   = lipgloss.Color("241")
	BgSecondary  = lipgloss.Color("235")
	BorderNormal = lipgloss.Color("240")
)

// Button styles
var (
	Button = lipgloss.NewStyle().
		Foreground(lipgloss.Color("252")).
		Background(lipgloss.Color("238")).
		Padding(0, 2)

	ButtonFocused = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255")).
			Background(Primary).
			Bold(true).
			Padding(0, 2)

	ButtonDangerFocused = lipgloss.NewStyle().
				Foreground(lipgloss.Color("255")).
				Background(Error).
				Bold(true).
				Padding(0, 2)
)

// Text styles
var (
	Title     = lipgloss.NewStyle().Bold(true)
	MutedText = lipgloss.NewStyle().Foreground(MutedColor)
	Body      = lipgloss.NewStyle()
)

// List styles
var (
	ListItemNormal = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	ListItemSelected = lipgloss.NewStyle().
				Background(lipgloss.Color("237")).
				Foreground(lipgloss.Color("255"))

	ListItemFocused = lipgloss.NewStyle().
			Background(lipgloss.Color("237")).
			Foreground(lipgloss.Color("255")).
			Bold(true)

	ListCursor = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)
)

// InputBorder frames text inputs; the focused variant uses Primary.
var (
	InputBorder = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(BorderNormal).
			Padding(0, 1)

	InputBorderFocused = InputBorder.BorderForeground(Primary)
)

func borderColor(v Variant) lipgloss.Color {
	switch v {
	case VariantDanger:
		return Error
	case VariantInfo:
		return Info
	default:
		return Primary
	}
}

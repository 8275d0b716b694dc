// Package output formats CLI messages and sandbox listings.
package output

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

var (
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// Stderr is where Error and Warning write.
var Stderr io.Writer = os.Stderr

// Error prints a formatted error to stderr.
func Error(format string, args ...any) {
	fmt.Fprintln(Stderr, errorStyle.Render("ERROR:")+" "+fmt.Sprintf(format, args...))
}

// Warning prints a formatted warning to stderr.
func Warning(format string, args ...any) {
	fmt.Fprintln(Stderr, warningStyle.Render("WARNING:")+" "+fmt.Sprintf(format, args...))
}

// Success prints a formatted success line to w.
func Success(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, successStyle.Render("✓")+" "+fmt.Sprintf(format, args...))
}

// Muted renders s dimmed.
func Muted(s string) string {
	return mutedStyle.Render(s)
}

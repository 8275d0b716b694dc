package editor

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/marcus/sbx/internal/api"
	"github.com/marcus/sbx/internal/routepath"
)

// copyToClipboard copies text to the system clipboard.
var copyToClipboard = clipboard.WriteAll

// clipboardMsg reports the result of a copy.
type clipboardMsg struct {
	what string
	err  error
}

// sandboxURL returns the web URL of a sandbox on the configured service.
func (m Model) sandboxURL(id string) string {
	return strings.TrimRight(m.app.Config().APIURL, "/") + routepath.Sandbox(id)
}

// formatSandboxAsMarkdown formats a sandbox as a markdown link block.
func formatSandboxAsMarkdown(sb api.Sandbox, url string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s](%s)\n", sb.DisplayTitle(), url)
	if sb.Template != "" {
		fmt.Fprintf(&b, "**Template:** %s\n", sb.Template)
	}
	if desc := strings.TrimSpace(sb.Description); desc != "" {
		b.WriteString("\n" + desc + "\n")
	}
	return b.String()
}

func (m Model) copyCmd(what, text string) tea.Cmd {
	return func() tea.Msg {
		return clipboardMsg{what: what, err: copyToClipboard(text)}
	}
}

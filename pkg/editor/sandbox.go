package editor

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/marcus/sbx/internal/api"
	"github.com/marcus/sbx/internal/routepath"
)

func (m Model) handleSandboxKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	id := m.Route.Param("id")
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "esc", "backspace", "g":
		return m, Navigate(routepath.Dashboard)
	case "d":
		return m.startWorkflow(m.deleteCmd(id))
	case "r":
		return m.startWorkflow(m.renameCmd(id))
	case "f", "e":
		return m.startWorkflow(m.forkCmd(id))
	case "y":
		return m, m.copyCmd("link", m.sandboxURL(id))
	case "Y":
		if m.sandbox != nil {
			return m, m.copyCmd("markdown", formatSandboxAsMarkdown(*m.sandbox, m.sandboxURL(id)))
		}
	}
	return m, nil
}

// renderDescription renders the sandbox description as markdown. Rendering
// failures fall back to the raw text.
func (m Model) renderDescription(sb api.Sandbox) string {
	desc := strings.TrimSpace(sb.Description)
	if desc == "" {
		return mutedStyle.Render("No description.")
	}

	opts := []glamour.TermRendererOption{glamour.WithWordWrap(m.contentWidth())}
	switch theme := m.app.Config().Theme; theme {
	case "", "auto":
		opts = append(opts, glamour.WithAutoStyle())
	default:
		opts = append(opts, glamour.WithStandardStyle(theme))
	}

	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		m.logger.Debug("markdown renderer", "err", err)
		return desc
	}
	out, err := r.Render(desc)
	if err != nil {
		m.logger.Debug("render description", "err", err, "sandbox", sb.ID)
		return desc
	}
	return strings.Trim(out, "\n")
}

func (m Model) renderSandbox() string {
	if m.sandbox == nil {
		if m.Err != nil {
			return ""
		}
		return m.spinner.View() + " Loading sandbox " + m.Route.Param("id") + "…"
	}
	sb := m.sandbox
	st := m.app.State()

	var b strings.Builder
	b.WriteString(titleStyle.Render(sb.DisplayTitle()))
	b.WriteString("\n")

	var meta []string
	if sb.Template != "" {
		meta = append(meta, sb.Template)
	}
	switch {
	case sb.OwnedBy(st.User):
		meta = append(meta, "yours")
	case sb.AuthorID != "":
		meta = append(meta, "by "+sb.AuthorID)
	}
	if sb.IsFrozen {
		meta = append(meta, "frozen")
	}
	if sb.ForkedFrom != "" {
		meta = append(meta, "forked from "+sb.ForkedFrom)
	}
	if !sb.UpdatedAt.IsZero() {
		meta = append(meta, fmt.Sprintf("updated %s", sb.UpdatedAt.Format("2006-01-02 15:04")))
	}
	b.WriteString(mutedStyle.Render(strings.Join(meta, " · ")))
	b.WriteString("\n\n")
	b.WriteString(m.sandboxBody)
	return b.String()
}

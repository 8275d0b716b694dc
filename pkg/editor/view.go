package editor

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/marcus/sbx/internal/app"
	"github.com/marcus/sbx/internal/routepath"
)

// View renders the current page, or the current modal on top of everything.
func (m Model) View() string {
	if m.dlg != nil {
		if m.snap.Current == app.ModalImporting {
			return m.dlg.Render(m.Width, m.Height) + "\n" + m.spinner.View()
		}
		return m.dlg.Render(m.Width, m.Height)
	}

	var body string
	switch m.Route.Kind {
	case routepath.DashboardPage, routepath.SearchPage:
		body = m.renderDashboard()
	case routepath.SandboxPage:
		body = m.renderSandbox()
	case routepath.ImportFormPage:
		body = m.renderImport()
	case routepath.ImportRepoPage:
		body = m.renderImportRepo()
	case routepath.SignInPage:
		body = m.renderSignIn()
	default:
		body = titleStyle.Render("Not found") + "\n\n" +
			"Nothing lives at " + m.Route.Path + ".\n" +
			mutedStyle.Render("Press g to go to the dashboard.")
	}

	if m.Err != nil {
		body += "\n\n" + errorStyle.Render("Error: "+m.Err.Error())
	}

	parts := []string{m.renderHeader(), lipgloss.NewStyle().Padding(1, 2).Render(body), m.renderFooter()}
	return strings.Join(parts, "\n")
}

func (m Model) renderHeader() string {
	user := "signed out"
	st := m.app.State()
	if st.IsLoggedIn() {
		user = "@" + st.User.Username
		if st.Offline {
			user += " (offline)"
		}
	}
	left := "sbx " + m.Route.Kind.String()
	if m.Width <= 0 {
		return headerStyle.Render(left + "  " + user)
	}
	gap := max(m.Width-lipgloss.Width(left)-lipgloss.Width(user)-2, 1)
	return headerStyle.Width(m.Width).Render(left + strings.Repeat(" ", gap) + user)
}

func (m Model) renderFooter() string {
	status := m.StatusMessage
	if m.Busy > 0 {
		status = m.spinner.View() + " working… " + status
	}

	var keys string
	switch m.Route.Kind {
	case routepath.DashboardPage, routepath.SearchPage:
		keys = "enter open  / search  d delete  r rename  f fork  i import  q quit"
	case routepath.SandboxPage:
		keys = "e edit  r rename  d delete  y copy link  esc back  q quit"
	case routepath.ImportFormPage, routepath.SignInPage:
		keys = "enter submit  esc back"
	default:
		keys = "g dashboard  q quit"
	}
	if status != "" {
		return footerStyle.Render(status + "  ·  " + keys)
	}
	return footerStyle.Render(keys)
}

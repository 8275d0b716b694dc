package editor

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/marcus/sbx/internal/routepath"
)

func (m Model) handleSignInKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m, Navigate(routepath.Dashboard)
	case "enter":
		token := strings.TrimSpace(m.tokenInput.Value())
		if token == "" {
			return m, nil
		}
		m.Busy++
		m.Err = nil
		return m, tea.Batch(m.signInCmd(token), m.spinner.Tick)
	}
	var cmd tea.Cmd
	m.tokenInput, cmd = m.tokenInput.Update(msg)
	return m, cmd
}

func (m Model) renderSignIn() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Sign in"))
	b.WriteString("\n\n")
	if st := m.app.State(); st.IsLoggedIn() {
		b.WriteString("Signed in as " + st.User.Username + ". A new token replaces the current one.\n\n")
	}
	b.WriteString("Create a token in your account settings and paste it below.\n\n")
	b.WriteString(m.tokenInput.View())
	if m.Busy > 0 {
		b.WriteString("\n\n" + m.spinner.View() + " Signing in…")
	}
	return b.String()
}

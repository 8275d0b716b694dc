package editor

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/marcus/sbx/internal/github"
	"github.com/marcus/sbx/internal/routepath"
)

func validateRepoURL(s string) error {
	_, err := github.ParseURL(s)
	return err
}

// openImportForm builds the GitHub URL form.
func (m Model) openImportForm() (tea.Model, tea.Cmd) {
	url := ""
	m.importURL = &url
	m.importForm = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("url").
				Title("GitHub repository").
				Description("https://github.com/owner/repo, optionally /tree/branch/path").
				Placeholder("https://github.com/owner/repo").
				Value(m.importURL).
				Validate(validateRepoURL),
		),
	).WithShowHelp(false).WithWidth(m.contentWidth())
	return m, m.importForm.Init()
}

func (m Model) updateImportForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.importForm == nil {
		return m, nil
	}
	form, cmd := m.importForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.importForm = f
	}

	switch m.importForm.State {
	case huh.StateCompleted:
		repo, err := github.ParseURL(*m.importURL)
		m.importForm = nil
		if err != nil {
			m.Err = err
			return m, Navigate(routepath.ImportGitHub)
		}
		return m, Navigate(routepath.Import(repo.RoutePath()))
	case huh.StateAborted:
		m.importForm = nil
		return m, Navigate(routepath.Dashboard)
	}
	return m, cmd
}

// startDirectImport imports the repository named by an import route.
func (m Model) startDirectImport(route routepath.Route) (tea.Model, tea.Cmd) {
	p := route.Param("owner") + "/" + route.Param("repo")
	if rest := route.Param("rest"); rest != "" {
		p += "/" + rest
	}
	repo, err := github.ParsePath(p)
	if err != nil {
		m.Err = err
		return m, nil
	}
	m.importing = repo.FullName()
	return m.startWorkflow(m.importCmd(repo))
}

func (m Model) renderImport() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Import from GitHub"))
	b.WriteString("\n\n")
	if m.importForm != nil {
		b.WriteString(m.importForm.View())
	}
	return b.String()
}

func (m Model) renderImportRepo() string {
	if m.importing == "" {
		if m.Err != nil {
			return mutedStyle.Render("Press g to go to the dashboard.")
		}
		return mutedStyle.Render("Import finished.")
	}
	return m.spinner.View() + " Importing " + m.importing + "…"
}

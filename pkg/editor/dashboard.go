package editor

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/marcus/sbx/internal/app"
	"github.com/marcus/sbx/internal/routepath"
	"github.com/sahilm/fuzzy"
)

// dashboardRow is one selectable line on the dashboard.
type dashboardRow struct {
	ID       string
	Title    string
	Template string
	Recent   bool
	Frozen   bool
	Matched  []int
}

// rowSource adapts rows for fuzzy matching on titles.
type rowSource []dashboardRow

func (s rowSource) String(i int) string { return s[i].Title }
func (s rowSource) Len() int            { return len(s) }

// allRows lists recent sandboxes first, then the user's sandboxes that are
// not already listed as recent.
func allRows(st app.State) []dashboardRow {
	seen := make(map[string]bool)
	var rows []dashboardRow
	for _, r := range st.Recent {
		title := r.Title
		if title == "" {
			title = r.ID
		}
		rows = append(rows, dashboardRow{ID: r.ID, Title: title, Template: r.Template, Recent: true})
		seen[r.ID] = true
	}
	for _, sb := range st.Sandboxes {
		if seen[sb.ID] {
			continue
		}
		rows = append(rows, dashboardRow{ID: sb.ID, Title: sb.DisplayTitle(), Template: sb.Template, Frozen: sb.IsFrozen})
	}
	return rows
}

// filterRows keeps the rows whose title fuzzy-matches query, best first.
func filterRows(rows []dashboardRow, query string) []dashboardRow {
	query = strings.TrimSpace(query)
	if query == "" {
		return rows
	}
	matches := fuzzy.FindFrom(query, rowSource(rows))
	out := make([]dashboardRow, 0, len(matches))
	for _, match := range matches {
		row := rows[match.Index]
		row.Matched = match.MatchedIndexes
		row.Recent = false
		out = append(out, row)
	}
	return out
}

func (m Model) dashboardRows() []dashboardRow {
	rows := allRows(m.app.State())
	if m.Route.Kind == routepath.SearchPage {
		return filterRows(rows, m.search.Value())
	}
	return rows
}

func (m Model) selectedRow() (dashboardRow, bool) {
	rows := m.dashboardRows()
	if m.cursor < 0 || m.cursor >= len(rows) {
		return dashboardRow{}, false
	}
	return rows[m.cursor], true
}

func (m *Model) clampCursor() {
	n := len(m.dashboardRows())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) handleDashboardKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searchFocus {
		switch msg.String() {
		case "esc":
			m.search.Reset()
			return m, Navigate(routepath.Dashboard)
		case "enter":
			m.searchFocus = false
			m.search.Blur()
			return m, nil
		case "up", "down":
		default:
			var cmd tea.Cmd
			m.search, cmd = m.search.Update(msg)
			m.cursor = 0
			return m, cmd
		}
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		m.cursor++
		m.clampCursor()
	case "/":
		return m, Navigate(routepath.Search(m.search.Value()))
	case "esc":
		if m.Route.Kind == routepath.SearchPage {
			m.search.Reset()
			return m, Navigate(routepath.Dashboard)
		}
	case "i":
		return m, Navigate(routepath.ImportGitHub)
	case "s":
		return m, Navigate(routepath.SignIn)
	case "R":
		m.StatusMessage = "Reloading…"
		a, ctx := m.app, m.ctx
		return m, func() tea.Msg { return loadedMsg{err: a.Reload(ctx)} }
	case "enter":
		if row, ok := m.selectedRow(); ok {
			return m, Navigate(routepath.Sandbox(row.ID))
		}
	case "d":
		if row, ok := m.selectedRow(); ok {
			return m.startWorkflow(m.deleteCmd(row.ID))
		}
	case "r":
		if row, ok := m.selectedRow(); ok {
			return m.startWorkflow(m.renameCmd(row.ID))
		}
	case "f":
		if row, ok := m.selectedRow(); ok {
			return m.startWorkflow(m.forkCmd(row.ID))
		}
	}
	return m, nil
}

func (m Model) renderDashboard() string {
	st := m.app.State()
	var sb strings.Builder

	if m.Route.Kind == routepath.SearchPage {
		sb.WriteString(m.search.View())
		sb.WriteString("\n\n")
	}

	if !st.HasLoaded {
		sb.WriteString(m.spinner.View() + " Loading…")
		return sb.String()
	}

	rows := m.dashboardRows()
	if len(rows) == 0 {
		switch {
		case m.Route.Kind == routepath.SearchPage:
			sb.WriteString(mutedStyle.Render("No sandboxes match."))
		case !st.IsLoggedIn():
			sb.WriteString(mutedStyle.Render("You are signed out. Press s to sign in or i to import a GitHub repository."))
		default:
			sb.WriteString(mutedStyle.Render("No sandboxes yet. Press i to import one from GitHub."))
		}
		return sb.String()
	}

	width := m.contentWidth()
	lastRecent := true
	for i, row := range rows {
		if i == 0 && row.Recent {
			sb.WriteString(sectionStyle.Render("Recent") + "\n")
		}
		if !row.Recent && lastRecent && m.Route.Kind != routepath.SearchPage {
			if i > 0 {
				sb.WriteString("\n")
			}
			sb.WriteString(sectionStyle.Render("Your sandboxes") + "\n")
		}
		lastRecent = row.Recent

		cursor := "  "
		style := itemStyle
		if i == m.cursor {
			cursor = accentStyle.Render("> ")
			style = selectedStyle
		}
		line := row.Title
		if row.Template != "" {
			line += mutedStyle.Render(" · " + row.Template)
		}
		if row.Frozen {
			line += mutedStyle.Render(" (frozen)")
		}
		sb.WriteString(cursor + style.Render(ansi.Truncate(line, width-2, "…")) + "\n")
	}

	if m.Route.Kind == routepath.SearchPage {
		sb.WriteString(mutedStyle.Render(fmt.Sprintf("\n%d of %d", len(rows), len(allRows(st)))))
	}
	return strings.TrimRight(sb.String(), "\n")
}

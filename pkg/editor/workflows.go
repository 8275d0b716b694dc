package editor

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/marcus/sbx/internal/github"
)

// Workflow commands block on modal answers, so each runs on its own
// goroutine while Update keeps serving keys to the modal layer.

func (m Model) deleteCmd(id string) tea.Cmd {
	a, ctx := m.app, m.ctx
	return func() tea.Msg {
		deleted, err := a.DeleteSandbox(ctx, id)
		return workflowDoneMsg{op: "delete", id: id, deleted: deleted, err: err}
	}
}

func (m Model) renameCmd(id string) tea.Cmd {
	a, ctx := m.app, m.ctx
	return func() tea.Msg {
		sb, err := a.RenameSandbox(ctx, id)
		return workflowDoneMsg{op: "rename", id: id, sb: sb, err: err}
	}
}

func (m Model) forkCmd(id string) tea.Cmd {
	a, ctx := m.app, m.ctx
	return func() tea.Msg {
		sb, err := a.ForkSandbox(ctx, id)
		return workflowDoneMsg{op: "fork", id: id, sb: sb, err: err}
	}
}

func (m Model) importCmd(repo github.Repo) tea.Cmd {
	a, ctx := m.app, m.ctx
	return func() tea.Msg {
		sb, err := a.ImportRepo(ctx, repo)
		return workflowDoneMsg{op: "import", id: repo.FullName(), sb: sb, err: err}
	}
}

func (m Model) signInCmd(token string) tea.Cmd {
	a, ctx := m.app, m.ctx
	return func() tea.Msg {
		return signedInMsg{err: a.SignIn(ctx, token)}
	}
}

// startWorkflow counts cmd as running and keeps the spinner going.
func (m Model) startWorkflow(cmd tea.Cmd) (Model, tea.Cmd) {
	m.Busy++
	m.Err = nil
	m.StatusMessage = ""
	return m, tea.Batch(cmd, m.spinner.Tick)
}

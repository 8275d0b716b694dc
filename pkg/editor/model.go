// Package editor is the terminal sandbox editor: a bubbletea program with
// routed pages and a modal layer driven by the app's modal registry.
package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/marcus/sbx/internal/api"
	"github.com/marcus/sbx/internal/app"
	"github.com/marcus/sbx/internal/routepath"
	"github.com/marcus/sbx/pkg/modals"
	"github.com/marcus/sbx/pkg/ui/dialog"
)

// NavigateMsg switches the editor to Path.
type NavigateMsg struct {
	Path string
}

// Navigate returns a command that switches the editor to path.
func Navigate(path string) tea.Cmd {
	return func() tea.Msg {
		return NavigateMsg{Path: path}
	}
}

// loadedMsg reports that the app bootstrap finished.
type loadedMsg struct {
	err error
}

// snapshotMsg carries a modal registry snapshot. ok is false once the
// registry shut down.
type snapshotMsg struct {
	snap modals.Snapshot
	ok   bool
}

// sandboxMsg carries a sandbox fetched for the sandbox page.
type sandboxMsg struct {
	id  string
	sb  api.Sandbox
	err error
}

// signedInMsg reports the result of a token sign-in.
type signedInMsg struct {
	err error
}

// workflowDoneMsg reports the end of a modal-driven workflow.
type workflowDoneMsg struct {
	op      string
	id      string
	sb      api.Sandbox
	deleted bool
	err     error
}

// Option configures a Model.
type Option func(*Model)

// WithContext sets the context workflows run under.
func WithContext(ctx context.Context) Option {
	return func(m *Model) {
		m.ctx = ctx
	}
}

// WithRoute sets the initial route (default "/").
func WithRoute(path string) Option {
	return func(m *Model) {
		m.initialPath = path
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Model) {
		m.logger = l
	}
}

// Model is the editor program state.
type Model struct {
	app    *app.App
	ctx    context.Context
	logger *slog.Logger

	Width  int
	Height int

	Route         routepath.Route
	StatusMessage string
	Err           error
	Busy          int

	initialPath string
	spinner     spinner.Model

	// modal layer
	snaps       <-chan modals.Snapshot
	unsubscribe func()
	snap        modals.Snapshot
	dlg         *dialog.Dialog
	dlgFor      modals.State
	renameInput *textinput.Model
	forkIdx     *int

	// dashboard
	cursor      int
	search      textinput.Model
	searchFocus bool

	// sandbox page
	sandbox     *api.Sandbox
	sandboxBody string

	// import page
	importForm *huh.Form
	importURL  *string
	importing  string

	// sign-in page
	tokenInput textinput.Model
}

// New creates the editor model and subscribes it to the app's modals.
// Call Close when the program exits.
func New(a *app.App, opts ...Option) Model {
	search := textinput.New()
	search.Placeholder = "search sandboxes"
	search.Prompt = "/ "

	token := textinput.New()
	token.Placeholder = "paste an API token"
	token.EchoMode = textinput.EchoPassword

	m := Model{
		app:         a,
		ctx:         context.Background(),
		logger:      slog.Default(),
		initialPath: routepath.Root,
		spinner:     spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(accentStyle)),
		search:      search,
		tokenInput:  token,
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.Route, _ = routepath.Match(m.initialPath)
	m.snaps, m.unsubscribe = a.Modals.Registry.Subscribe()
	return m
}

// Close stops the modal subscription.
func (m Model) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

// Init starts the bootstrap, the modal subscription and the initial route.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.loadCmd(),
		waitForSnapshot(m.snaps),
		Navigate(m.initialPath),
	)
}

func (m Model) loadCmd() tea.Cmd {
	a, ctx := m.app, m.ctx
	return func() tea.Msg {
		return loadedMsg{err: a.LoadApp(ctx)}
	}
}

func waitForSnapshot(ch <-chan modals.Snapshot) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		snap, ok := <-ch
		return snapshotMsg{snap: snap, ok: ok}
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		if m.importForm != nil {
			m.importForm = m.importForm.WithWidth(m.contentWidth())
		}
		return m, nil

	case loadedMsg:
		m.StatusMessage = ""
		if msg.err != nil {
			m.Err = msg.err
		} else if st := m.app.State(); st.LoadErr != nil {
			m.StatusMessage = "offline: " + st.LoadErr.Error()
		}
		return m, nil

	case snapshotMsg:
		if !msg.ok {
			m.dlg = nil
			m.snaps = nil
			return m, nil
		}
		m.applySnapshot(msg.snap)
		cmd := waitForSnapshot(m.snaps)
		if m.snap.Current == app.ModalImporting {
			cmd = tea.Batch(cmd, m.spinner.Tick)
		}
		return m, cmd

	case NavigateMsg:
		return m.navigate(msg.Path)

	case sandboxMsg:
		if m.Route.Kind != routepath.SandboxPage || m.Route.Param("id") != msg.id {
			return m, nil
		}
		if msg.err != nil {
			m.Err = msg.err
			return m, nil
		}
		sb := msg.sb
		m.sandbox = &sb
		m.sandboxBody = m.renderDescription(sb)
		return m, nil

	case signedInMsg:
		m.done()
		if msg.err != nil {
			m.Err = msg.err
			return m, nil
		}
		m.tokenInput.Reset()
		m.StatusMessage = "Signed in"
		return m, Navigate(routepath.Dashboard)

	case workflowDoneMsg:
		return m.handleWorkflowDone(msg)

	case clipboardMsg:
		if msg.err != nil {
			m.StatusMessage = "copy failed: " + msg.err.Error()
		} else {
			m.StatusMessage = "Copied " + msg.what
		}
		return m, nil

	case spinner.TickMsg:
		if m.Busy <= 0 && m.snap.Current != app.ModalImporting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.Route.Kind == routepath.ImportFormPage && m.importForm != nil {
		return m.updateImportForm(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.dlg != nil {
		return m.handleModalKey(msg)
	}

	switch m.Route.Kind {
	case routepath.DashboardPage, routepath.SearchPage:
		return m.handleDashboardKey(msg)
	case routepath.SandboxPage:
		return m.handleSandboxKey(msg)
	case routepath.ImportFormPage:
		if msg.String() == "esc" {
			return m, Navigate(routepath.Dashboard)
		}
		return m.updateImportForm(msg)
	case routepath.SignInPage:
		return m.handleSignInKey(msg)
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "g", "esc":
		return m, Navigate(routepath.Dashboard)
	}
	return m, nil
}

// navigate resolves path and prepares the page it renders.
func (m Model) navigate(path string) (tea.Model, tea.Cmd) {
	route, _ := routepath.Match(path)
	m.Route = route
	m.Err = nil
	m.logger.Debug("navigate", "path", path, "page", route.Kind.String())

	switch route.Kind {
	case routepath.DashboardPage:
		m.searchFocus = false
		m.search.Blur()
		return m, nil

	case routepath.SearchPage:
		m.search.SetValue(route.Param("q"))
		m.search.CursorEnd()
		m.searchFocus = true
		m.cursor = 0
		return m, m.search.Focus()

	case routepath.SandboxPage:
		m.sandbox = nil
		m.sandboxBody = ""
		return m, m.openSandboxCmd(route.Param("id"))

	case routepath.ImportFormPage:
		return m.openImportForm()

	case routepath.ImportRepoPage:
		return m.startDirectImport(route)

	case routepath.SignInPage:
		m.tokenInput.Reset()
		return m, m.tokenInput.Focus()
	}
	return m, nil
}

func (m Model) openSandboxCmd(id string) tea.Cmd {
	a, ctx := m.app, m.ctx
	return func() tea.Msg {
		sb, err := a.OpenSandbox(ctx, id)
		return sandboxMsg{id: id, sb: sb, err: err}
	}
}

func (m Model) contentWidth() int {
	if m.Width <= 0 {
		return 80
	}
	return max(m.Width-4, 20)
}

func (m *Model) done() {
	if m.Busy > 0 {
		m.Busy--
	}
}

func (m Model) handleWorkflowDone(msg workflowDoneMsg) (tea.Model, tea.Cmd) {
	m.done()
	if msg.op == "import" {
		m.importing = ""
	}

	switch {
	case msg.err == nil:
	case errors.Is(msg.err, app.ErrSignInRequested):
		return m, Navigate(routepath.SignIn)
	case errors.Is(msg.err, app.ErrCancelled):
		m.StatusMessage = msg.op + " cancelled"
		return m, nil
	case errors.Is(msg.err, app.ErrNotSignedIn):
		m.StatusMessage = "Sign in to " + msg.op
		return m, nil
	case errors.Is(msg.err, modals.ErrShutdown), errors.Is(msg.err, context.Canceled):
		return m, nil
	default:
		m.logger.Warn("workflow failed", "op", msg.op, "sandbox", msg.id, "err", msg.err)
		m.Err = fmt.Errorf("%s: %w", msg.op, msg.err)
		return m, nil
	}

	switch msg.op {
	case "delete":
		if !msg.deleted {
			return m, nil
		}
		m.StatusMessage = "Deleted " + msg.id
		m.clampCursor()
		if m.Route.Kind == routepath.SandboxPage && m.Route.Param("id") == msg.id {
			return m, Navigate(routepath.Dashboard)
		}
		return m, nil
	case "rename":
		m.StatusMessage = "Renamed to " + msg.sb.DisplayTitle()
	case "fork":
		m.StatusMessage = "Editing " + msg.sb.DisplayTitle()
	case "import":
		m.StatusMessage = "Imported " + msg.sb.DisplayTitle()
	}

	if msg.sb.ID == "" {
		return m, nil
	}
	if m.Route.Kind == routepath.SandboxPage && m.Route.Param("id") == msg.sb.ID {
		sb := msg.sb
		m.sandbox = &sb
		m.sandboxBody = m.renderDescription(sb)
		return m, nil
	}
	if msg.op == "rename" && m.Route.Kind != routepath.SandboxPage {
		return m, nil
	}
	return m, Navigate(routepath.Sandbox(msg.sb.ID))
}

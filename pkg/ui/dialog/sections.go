package dialog

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/cellbuf"
)

// textSection is static, wrapped text.
type textSection struct {
	text  string
	style lipgloss.Style
}

// Text creates a wrapped text section.
func Text(s string) Section {
	return &textSection{text: s, style: Body}
}

// Muted creates a dimmed text section.
func Muted(s string) Section {
	return &textSection{text: s, style: MutedText}
}

func (s *textSection) Render(contentWidth int, _ string) string {
	return s.style.Render(cellbuf.Wrap(s.text, contentWidth, " -/"))
}

func (s *textSection) FocusIDs() []string { return nil }

func (s *textSection) Update(tea.KeyMsg, string) (string, tea.Cmd) { return "", nil }

type spacerSection struct{}

// Spacer creates a blank line.
func Spacer() Section {
	return spacerSection{}
}

func (spacerSection) Render(int, string) string { return "" }

func (spacerSection) FocusIDs() []string { return nil }

func (spacerSection) Update(tea.KeyMsg, string) (string, tea.Cmd) { return "", nil }

// ButtonDef describes one button.
type ButtonDef struct {
	Label  string
	Action string
	Danger bool
}

// ButtonOption configures a button.
type ButtonOption func(*ButtonDef)

// BtnDanger styles the button as destructive.
func BtnDanger() ButtonOption {
	return func(b *ButtonDef) {
		b.Danger = true
	}
}

// Btn creates a button. action doubles as its focus ID.
func Btn(label, action string, opts ...ButtonOption) ButtonDef {
	b := ButtonDef{Label: label, Action: action}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

type buttonsSection struct {
	buttons []ButtonDef
}

// Buttons creates a row of buttons.
func Buttons(btns ...ButtonDef) Section {
	return &buttonsSection{buttons: btns}
}

func (s *buttonsSection) Render(_ int, focusID string) string {
	rendered := make([]string, 0, len(s.buttons))
	for _, b := range s.buttons {
		style := Button
		if b.Action == focusID {
			style = ButtonFocused
			if b.Danger {
				style = ButtonDangerFocused
			}
		}
		rendered = append(rendered, style.Render(strings.TrimSpace(b.Label)))
	}
	return strings.Join(rendered, "  ")
}

func (s *buttonsSection) FocusIDs() []string {
	ids := make([]string, 0, len(s.buttons))
	for _, b := range s.buttons {
		ids = append(ids, b.Action)
	}
	return ids
}

func (s *buttonsSection) Update(msg tea.KeyMsg, focusID string) (string, tea.Cmd) {
	if msg.String() == "enter" || msg.String() == " " {
		return focusID, nil
	}
	return "", nil
}

// inputSection wraps a bubbles text input.
type inputSection struct {
	id    string
	label string
	model *textinput.Model
}

// Input creates a labelled text input. The model is owned by the caller so
// its value survives re-rendering.
func Input(id, label string, model *textinput.Model) Section {
	return &inputSection{id: id, label: label, model: model}
}

func (s *inputSection) Render(contentWidth int, focusID string) string {
	style := InputBorder
	if focusID == s.id {
		style = InputBorderFocused
		s.model.Focus()
	} else {
		s.model.Blur()
	}
	// border (2) + padding (2)
	s.model.Width = max(contentWidth-4-len(s.model.Prompt), 1)

	var sb strings.Builder
	if s.label != "" {
		sb.WriteString(s.label)
		sb.WriteString("\n")
	}
	sb.WriteString(style.Width(contentWidth - 2).Render(s.model.View()))
	return sb.String()
}

func (s *inputSection) FocusIDs() []string { return []string{s.id} }

func (s *inputSection) Update(msg tea.KeyMsg, focusID string) (string, tea.Cmd) {
	if focusID != s.id || msg.String() == "enter" {
		return "", nil
	}
	var cmd tea.Cmd
	*s.model, cmd = s.model.Update(msg)
	return "", cmd
}

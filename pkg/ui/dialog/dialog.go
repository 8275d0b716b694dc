// Package dialog renders modal dialogs for the terminal editor and turns key
// presses into action IDs.
//
//	d := dialog.New("Delete sandbox?", dialog.WithVariant(dialog.VariantDanger)).
//	    AddSection(dialog.Text("This cannot be undone.")).
//	    AddSection(dialog.Spacer()).
//	    AddSection(dialog.Buttons(
//	        dialog.Btn(" Delete ", "delete", dialog.BtnDanger()),
//	        dialog.Btn(" Cancel ", "cancel"),
//	    ))
//
//	// In View():
//	content := d.Render(screenW, screenH)
//
//	// In Update():
//	if action, cmd := d.HandleKey(keyMsg); action != "" { ... }
//
// Tab and Shift+Tab move focus between focusable sections, Enter activates
// the focused element (or the primary action), Esc yields ActionCancel.
package dialog

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// ActionCancel is returned by HandleKey for Esc.
const ActionCancel = "cancel"

// Variant selects the border color.
type Variant int

const (
	VariantDefault Variant = iota
	VariantDanger
	VariantInfo
)

// Section is one block of dialog content.
type Section interface {
	// Render draws the section at contentWidth. focusID is the focused
	// element of the whole dialog.
	Render(contentWidth int, focusID string) string
	// FocusIDs lists the focusable elements of the section, in tab order.
	FocusIDs() []string
	// Update handles a key while one of the section's elements has focus
	// and may return an action ID.
	Update(msg tea.KeyMsg, focusID string) (string, tea.Cmd)
}

// Option configures a Dialog.
type Option func(*Dialog)

// WithWidth sets the outer width (default 50).
func WithWidth(w int) Option {
	return func(d *Dialog) {
		if w > 0 {
			d.width = w
		}
	}
}

// WithVariant sets the visual style.
func WithVariant(v Variant) Option {
	return func(d *Dialog) {
		d.variant = v
	}
}

// WithHints shows or hides the key hints line.
func WithHints(show bool) Option {
	return func(d *Dialog) {
		d.hints = show
	}
}

// WithPrimaryAction sets the action returned when Enter is pressed on an
// element that does not produce an action itself (e.g. a text input).
func WithPrimaryAction(action string) Option {
	return func(d *Dialog) {
		d.primary = action
	}
}

// WithDismissable controls whether Esc yields ActionCancel (default true).
func WithDismissable(ok bool) Option {
	return func(d *Dialog) {
		d.dismissable = ok
	}
}

// Dialog is a titled box of sections.
type Dialog struct {
	title       string
	width       int
	variant     Variant
	hints       bool
	primary     string
	dismissable bool
	sections    []Section
	focus       int
}

// New creates a dialog.
func New(title string, opts ...Option) *Dialog {
	d := &Dialog{
		title:       title,
		width:       50,
		hints:       true,
		dismissable: true,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// AddSection appends a section and returns the dialog for chaining.
func (d *Dialog) AddSection(s Section) *Dialog {
	d.sections = append(d.sections, s)
	return d
}

// Title returns the dialog title.
func (d *Dialog) Title() string {
	return d.title
}

func (d *Dialog) focusIDs() []string {
	var ids []string
	for _, s := range d.sections {
		ids = append(ids, s.FocusIDs()...)
	}
	return ids
}

// FocusedID returns the ID of the focused element, or "".
func (d *Dialog) FocusedID() string {
	ids := d.focusIDs()
	if len(ids) == 0 {
		return ""
	}
	return ids[clamp(d.focus, 0, len(ids)-1)]
}

// SetFocus focuses the element with id. Unknown IDs are ignored.
func (d *Dialog) SetFocus(id string) {
	for i, fid := range d.focusIDs() {
		if fid == id {
			d.focus = i
			return
		}
	}
}

func (d *Dialog) sectionFor(id string) Section {
	for _, s := range d.sections {
		for _, fid := range s.FocusIDs() {
			if fid == id {
				return s
			}
		}
	}
	return nil
}

// HandleKey processes a key press and returns an action ID when the key
// completed an action.
func (d *Dialog) HandleKey(msg tea.KeyMsg) (string, tea.Cmd) {
	ids := d.focusIDs()

	switch msg.String() {
	case "esc":
		if d.dismissable {
			return ActionCancel, nil
		}
		return "", nil
	case "tab":
		if len(ids) > 0 {
			d.focus = (d.focus + 1) % len(ids)
		}
		return "", nil
	case "shift+tab":
		if len(ids) > 0 {
			d.focus = (d.focus - 1 + len(ids)) % len(ids)
		}
		return "", nil
	}

	focusID := d.FocusedID()
	if s := d.sectionFor(focusID); s != nil {
		action, cmd := s.Update(msg, focusID)
		if action != "" {
			return action, cmd
		}
		if msg.String() == "enter" && d.primary != "" {
			return d.primary, cmd
		}
		return "", cmd
	}

	if msg.String() == "enter" && d.primary != "" {
		return d.primary, nil
	}
	return "", nil
}

// Render draws the dialog centered in a screenW x screenH area.
func (d *Dialog) Render(screenW, screenH int) string {
	width := d.width
	if screenW > 0 && width > screenW-2 {
		width = max(screenW-2, 20)
	}
	// border (2) + padding (4)
	contentWidth := width - 6

	var sb strings.Builder
	sb.WriteString(Title.Render(ansi.Truncate(d.title, contentWidth, "…")))
	sb.WriteString("\n\n")

	focusID := d.FocusedID()
	for i, s := range d.sections {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(s.Render(contentWidth, focusID))
	}

	if d.hints {
		sb.WriteString("\n\n")
		sb.WriteString(MutedText.Render(d.hintLine(contentWidth)))
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor(d.variant)).
		Padding(0, 2).
		Width(width - 2).
		Render(sb.String())

	if screenW <= 0 || screenH <= 0 {
		return box
	}
	return lipgloss.Place(screenW, screenH, lipgloss.Center, lipgloss.Center, box)
}

// hintLine joins the key hints that fit in width. Leading hints are dropped
// first so that "esc: cancel" survives on narrow dialogs.
func (d *Dialog) hintLine(width int) string {
	parts := []string{}
	if len(d.focusIDs()) > 1 {
		parts = append(parts, "tab: next")
	}
	parts = append(parts, "enter: select")
	if d.dismissable {
		parts = append(parts, "esc: cancel")
	}
	line := strings.Join(parts, "  ")
	for len(parts) > 1 && ansi.StringWidth(line) > width {
		parts = parts[1:]
		line = strings.Join(parts, "  ")
	}
	return ansi.Truncate(line, width, "…")
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

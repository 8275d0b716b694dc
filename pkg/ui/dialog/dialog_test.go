package dialog

import (
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func confirmDialog(opts ...Option) *Dialog {
	return New("Delete sandbox?", opts...).
		AddSection(Text("This cannot be undone.")).
		AddSection(Spacer()).
		AddSection(Buttons(
			Btn(" Delete ", "delete", BtnDanger()),
			Btn(" Cancel ", "cancel"),
		))
}

func TestHandleKeyButtons(t *testing.T) {
	d := confirmDialog()

	if got := d.FocusedID(); got != "delete" {
		t.Fatalf("initial focus = %q, want delete", got)
	}
	if action, _ := d.HandleKey(key("enter")); action != "delete" {
		t.Errorf("enter on first button = %q, want delete", action)
	}

	d.HandleKey(key("tab"))
	if got := d.FocusedID(); got != "cancel" {
		t.Errorf("after tab focus = %q, want cancel", got)
	}
	d.HandleKey(key("tab"))
	if got := d.FocusedID(); got != "delete" {
		t.Errorf("tab should wrap, focus = %q", got)
	}
	d.HandleKey(key("shift+tab"))
	if got := d.FocusedID(); got != "cancel" {
		t.Errorf("shift+tab should wrap backwards, focus = %q", got)
	}
}

func TestHandleKeyEsc(t *testing.T) {
	tests := []struct {
		name        string
		dismissable bool
		want        string
	}{
		{"dismissable", true, ActionCancel},
		{"not dismissable", false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := confirmDialog(WithDismissable(tt.dismissable))
			if action, _ := d.HandleKey(key("esc")); action != tt.want {
				t.Errorf("esc = %q, want %q", action, tt.want)
			}
		})
	}
}

func TestInputPrimaryAction(t *testing.T) {
	ti := textinput.New()
	d := New("Rename", WithPrimaryAction("save")).
		AddSection(Input("title", "Title", &ti)).
		AddSection(Buttons(Btn("Save", "save"), Btn("Cancel", "cancel")))

	// Render focuses the input.
	d.Render(80, 24)
	for _, r := range "hello" {
		if action, _ := d.HandleKey(key(string(r))); action != "" {
			t.Fatalf("typing returned action %q", action)
		}
	}
	if got := ti.Value(); got != "hello" {
		t.Errorf("input value = %q, want hello", got)
	}
	if action, _ := d.HandleKey(key("enter")); action != "save" {
		t.Errorf("enter in input = %q, want primary action save", action)
	}
}

func TestListSection(t *testing.T) {
	items := []ListItem{
		{ID: "fork", Label: "Fork"},
		{ID: "unfreeze", Label: "Unfreeze"},
		{ID: "cancel", Label: "Cancel"},
	}
	sel := 0
	d := New("Frozen").AddSection(List("choices", items, &sel, WithMaxVisible(2)))

	d.HandleKey(key("down"))
	d.HandleKey(key("j"))
	d.HandleKey(key("j"))
	if sel != 2 {
		t.Fatalf("selected = %d, want 2 (clamped)", sel)
	}
	out := d.Render(0, 0)
	if !strings.Contains(out, "Cancel") || !strings.Contains(out, "more above") {
		t.Errorf("render should scroll to the selection:\n%s", out)
	}
	if strings.Contains(out, "Fork") {
		t.Errorf("first item should be scrolled out:\n%s", out)
	}

	d.HandleKey(key("up"))
	if action, _ := d.HandleKey(key("enter")); action != "unfreeze" {
		t.Errorf("enter = %q, want unfreeze", action)
	}
}

func TestRender(t *testing.T) {
	d := confirmDialog(WithWidth(40))
	out := d.Render(0, 0)
	for _, want := range []string{"Delete sandbox?", "This cannot be undone.", "Delete", "Cancel", "esc: cancel"} {
		if !strings.Contains(out, want) {
			t.Errorf("render missing %q:\n%s", want, out)
		}
	}

	noHints := confirmDialog(WithHints(false)).Render(0, 0)
	if strings.Contains(noHints, "esc: cancel") {
		t.Errorf("hints should be hidden:\n%s", noHints)
	}
}

func TestRenderNarrowHints(t *testing.T) {
	tests := []struct {
		width   int
		want    string
		notWant string
	}{
		{50, "tab: next  enter: select  esc: cancel", ""},
		{40, "enter: select  esc: cancel", "tab: next"},
		{30, "esc: cancel", "enter: select"},
	}
	for _, tt := range tests {
		out := confirmDialog(WithWidth(tt.width)).Render(0, 0)
		if !strings.Contains(out, tt.want) {
			t.Errorf("width %d: render missing %q:\n%s", tt.width, tt.want, out)
		}
		if tt.notWant != "" && strings.Contains(out, tt.notWant) {
			t.Errorf("width %d: %q should be dropped:\n%s", tt.width, tt.notWant, out)
		}
		for _, line := range strings.Split(out, "\n") {
			if w := ansi.StringWidth(line); w > tt.width {
				t.Errorf("width %d: line is %d columns: %q", tt.width, w, line)
			}
		}
	}
}

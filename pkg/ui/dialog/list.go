package dialog

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
)

// ListItem represents an item in a list section.
type ListItem struct {
	ID    string // Returned as the action when the item is chosen
	Label string
}

// ListOption is a functional option for List sections.
type ListOption func(*listSection)

// listSection renders a scrollable list of items.
type listSection struct {
	id           string
	items        []ListItem
	selectedIdx  *int
	maxVisible   int
	scrollOffset int
}

// List creates a list section. selectedIdx is owned by the caller.
func List(id string, items []ListItem, selectedIdx *int, opts ...ListOption) Section {
	s := &listSection{
		id:          id,
		items:       items,
		selectedIdx: selectedIdx,
		maxVisible:  5,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WithMaxVisible sets the maximum number of visible items.
func WithMaxVisible(n int) ListOption {
	return func(s *listSection) {
		if n > 0 {
			s.maxVisible = n
		}
	}
}

func (s *listSection) selected() int {
	if s.selectedIdx == nil {
		return -1
	}
	return *s.selectedIdx
}

func (s *listSection) Render(contentWidth int, focusID string) string {
	if len(s.items) == 0 {
		return MutedText.Render("(no items)")
	}

	visibleCount := min(s.maxVisible, len(s.items))
	selectedIdx := max(s.selected(), 0)

	// Keep the selection visible
	if selectedIdx < s.scrollOffset {
		s.scrollOffset = selectedIdx
	} else if selectedIdx >= s.scrollOffset+visibleCount {
		s.scrollOffset = selectedIdx - visibleCount + 1
	}
	s.scrollOffset = clamp(s.scrollOffset, 0, max(0, len(s.items)-visibleCount))

	focused := focusID == s.id
	lines := make([]string, 0, visibleCount+2)
	if s.scrollOffset > 0 {
		lines = append(lines, MutedText.Render("↑ more above"))
	}
	for i := s.scrollOffset; i < s.scrollOffset+visibleCount; i++ {
		item := s.items[i]
		style := ListItemNormal
		cursor := "  "
		if i == s.selected() {
			cursor = ListCursor.Render("> ")
			style = ListItemSelected
			if focused {
				style = ListItemFocused
			}
		}
		label := ansi.Truncate(item.Label, max(contentWidth-2, 1), "…")
		lines = append(lines, cursor+style.Render(label))
	}
	if s.scrollOffset+visibleCount < len(s.items) {
		lines = append(lines, MutedText.Render("↓ more below"))
	}
	return strings.Join(lines, "\n")
}

// FocusIDs registers the list as a single focusable, so Tab moves to the
// next section rather than through the items.
func (s *listSection) FocusIDs() []string { return []string{s.id} }

func (s *listSection) Update(msg tea.KeyMsg, focusID string) (string, tea.Cmd) {
	if focusID != s.id || s.selectedIdx == nil || len(s.items) == 0 {
		return "", nil
	}

	switch msg.String() {
	case "up", "k":
		if *s.selectedIdx > 0 {
			*s.selectedIdx--
		}
	case "down", "j":
		if *s.selectedIdx < len(s.items)-1 {
			*s.selectedIdx++
		}
	case "home":
		*s.selectedIdx = 0
	case "end":
		*s.selectedIdx = len(s.items) - 1
	case "enter":
		if i := *s.selectedIdx; i >= 0 && i < len(s.items) {
			return s.items[i].ID, nil
		}
	}
	return "", nil
}

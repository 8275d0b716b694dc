package output

import (
	"strings"
	"testing"

	"github.com/marcus/sbx/internal/api"
)

func TestRenderTreeLines_Empty(t *testing.T) {
	lines := RenderTreeLines(nil, TreeRenderOptions{})
	if len(lines) != 0 {
		t.Errorf("expected empty lines, got %d", len(lines))
	}
}

func TestRenderTreeLines_SingleNode(t *testing.T) {
	nodes := []TreeNode{
		{ID: "sb1", Title: "Todo app", Template: "react", Frozen: true},
	}
	lines := RenderTreeLines(nodes, TreeRenderOptions{ShowTemplate: true, ShowFrozen: true})

	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}

	line := lines[0]
	if !strings.Contains(line, "└──") {
		t.Errorf("expected last-item connector, got: %s", line)
	}
	if !strings.Contains(line, "sb1:") {
		t.Errorf("expected ID in output, got: %s", line)
	}
	if !strings.Contains(line, "Todo app") {
		t.Errorf("expected title in output, got: %s", line)
	}
	if !strings.Contains(line, "[react]") {
		t.Errorf("expected template in output, got: %s", line)
	}
	if !strings.Contains(line, "❄") {
		t.Errorf("expected frozen mark in output, got: %s", line)
	}
}

func TestRenderTreeLines_Nested(t *testing.T) {
	nodes := []TreeNode{
		{ID: "a", Title: "A", Children: []TreeNode{
			{ID: "a1", Title: "A1"},
			{ID: "a2", Title: "A2", Children: []TreeNode{{ID: "a2x", Title: "A2X"}}},
		}},
		{ID: "b", Title: "B"},
	}
	lines := RenderTreeLines(nodes, TreeRenderOptions{})

	want := []string{
		"├── a: A",
		"│   ├── a1: A1",
		"│   └── a2: A2",
		"│       └── a2x: A2X",
		"└── b: B",
	}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d:\n%s", len(lines), len(want), strings.Join(lines, "\n"))
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestRenderTreeLines_MaxDepth(t *testing.T) {
	nodes := []TreeNode{
		{ID: "a", Title: "A", Children: []TreeNode{{ID: "a1", Title: "A1"}}},
	}
	lines := RenderTreeLines(nodes, TreeRenderOptions{MaxDepth: 1})
	if len(lines) != 1 {
		t.Errorf("MaxDepth 1 should hide children, got %v", lines)
	}
}

func TestRenderTree_SkipsRoot(t *testing.T) {
	root := TreeNode{ID: "root", Title: "Root", Children: []TreeNode{{ID: "c", Title: "Child"}}}
	out := RenderTree(root, TreeRenderOptions{})
	if strings.Contains(out, "root:") {
		t.Errorf("root should not be rendered: %s", out)
	}
	if !strings.Contains(out, "c: Child") {
		t.Errorf("child missing: %s", out)
	}
}

func TestForkTree(t *testing.T) {
	sandboxes := []api.Sandbox{
		{ID: "orig", Title: "Original"},
		{ID: "f1", Title: "Fork one", ForkedFrom: "orig"},
		{ID: "f2", Title: "Fork of fork", ForkedFrom: "f1"},
		{ID: "ext", Title: "Fork of someone else's", ForkedFrom: "elsewhere"},
		{ID: "self", Title: "Self", ForkedFrom: "self"},
	}

	roots := ForkTree(sandboxes)
	if len(roots) != 3 {
		t.Fatalf("got %d roots, want 3 (orig, ext, self)", len(roots))
	}
	if roots[0].ID != "orig" || len(roots[0].Children) != 1 {
		t.Fatalf("orig = %+v, want one child", roots[0])
	}
	f1 := roots[0].Children[0]
	if f1.ID != "f1" || len(f1.Children) != 1 || f1.Children[0].ID != "f2" {
		t.Errorf("f1 = %+v, want child f2", f1)
	}
	if roots[1].ID != "ext" || roots[2].ID != "self" {
		t.Errorf("roots = %s, %s; want ext, self", roots[1].ID, roots[2].ID)
	}
}

func TestForkTree_Cycle(t *testing.T) {
	sandboxes := []api.Sandbox{
		{ID: "a", ForkedFrom: "b"},
		{ID: "b", ForkedFrom: "a"},
	}
	roots := ForkTree(sandboxes)
	if len(roots) != 1 || roots[0].ID != "a" {
		t.Fatalf("ForkTree() = %+v, want a as the only root", roots)
	}
	if len(roots[0].Children) != 1 || roots[0].Children[0].ID != "b" {
		t.Errorf("a.Children = %+v, want b", roots[0].Children)
	}
}

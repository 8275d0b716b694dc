package output

import (
	"strings"

	"github.com/marcus/sbx/internal/api"
)

// TreeNode represents a node in a tree structure for rendering
type TreeNode struct {
	ID       string
	Title    string
	Template string
	Frozen   bool
	Children []TreeNode
}

// TreeRenderOptions configures tree rendering behavior
type TreeRenderOptions struct {
	MaxDepth     int  // 0 = unlimited
	ShowTemplate bool // Whether to show the sandbox template
	ShowFrozen   bool // Whether to mark frozen sandboxes
}

// ForkTree arranges sandboxes so that forks sit under the sandbox they were
// forked from. Forks whose source is not in the list become roots. Input
// order is kept among siblings.
func ForkTree(sandboxes []api.Sandbox) []TreeNode {
	present := make(map[string]bool, len(sandboxes))
	for _, sb := range sandboxes {
		present[sb.ID] = true
	}

	children := make(map[string][]api.Sandbox)
	var roots []api.Sandbox
	for _, sb := range sandboxes {
		if sb.ForkedFrom != "" && sb.ForkedFrom != sb.ID && present[sb.ForkedFrom] {
			children[sb.ForkedFrom] = append(children[sb.ForkedFrom], sb)
			continue
		}
		roots = append(roots, sb)
	}

	visited := make(map[string]bool)
	var build func([]api.Sandbox) []TreeNode
	build = func(list []api.Sandbox) []TreeNode {
		var nodes []TreeNode
		for _, sb := range list {
			if visited[sb.ID] {
				continue
			}
			visited[sb.ID] = true
			nodes = append(nodes, TreeNode{
				ID:       sb.ID,
				Title:    sb.DisplayTitle(),
				Template: sb.Template,
				Frozen:   sb.IsFrozen,
				Children: build(children[sb.ID]),
			})
		}
		return nodes
	}
	nodes := build(roots)
	// Fork cycles have no root; start them at their first member.
	for _, sb := range sandboxes {
		if !visited[sb.ID] {
			nodes = append(nodes, build([]api.Sandbox{sb})...)
		}
	}
	return nodes
}

// RenderTree renders a tree starting from a single root node
// Returns the complete tree as a string (without the root - just children)
func RenderTree(root TreeNode, opts TreeRenderOptions) string {
	lines := renderTreeNodes(root.Children, opts, 0, "")
	return strings.Join(lines, "\n")
}

// RenderTreeLines renders multiple root nodes and returns individual lines
func RenderTreeLines(roots []TreeNode, opts TreeRenderOptions) []string {
	return renderTreeNodes(roots, opts, 0, "")
}

// renderTreeNodes recursively renders tree nodes
func renderTreeNodes(nodes []TreeNode, opts TreeRenderOptions, depth int, prefix string) []string {
	if opts.MaxDepth > 0 && depth >= opts.MaxDepth {
		return nil
	}

	var lines []string

	for i, node := range nodes {
		isLast := i == len(nodes)-1

		connector := "\u251c\u2500\u2500 " // ├──
		if isLast {
			connector = "\u2514\u2500\u2500 " // └──
		}

		parts := []string{node.ID + ":", node.Title}
		if opts.ShowTemplate && node.Template != "" {
			parts = append(parts, "["+node.Template+"]")
		}
		if opts.ShowFrozen && node.Frozen {
			parts = append(parts, "\u2744") // ❄
		}

		lines = append(lines, prefix+connector+strings.Join(parts, " "))

		childPrefix := prefix
		if isLast {
			childPrefix += "    "
		} else {
			childPrefix += "\u2502   " // │
		}

		lines = append(lines, renderTreeNodes(node.Children, opts, depth+1, childPrefix)...)
	}

	return lines
}

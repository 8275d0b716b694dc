package cmd

import (
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/marcus/sbx/internal/api"
)

// closestSandbox returns the sandbox whose ID or title is nearest to query,
// if it is close enough to be a likely typo.
func closestSandbox(list []api.Sandbox, query string) (api.Sandbox, bool) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return api.Sandbox{}, false
	}

	best, bestDist := -1, 0
	for i, sb := range list {
		for _, candidate := range []string{sb.ID, sb.Title} {
			if candidate == "" {
				continue
			}
			d := levenshtein.ComputeDistance(query, strings.ToLower(candidate))
			if best == -1 || d < bestDist {
				best, bestDist = i, d
			}
		}
	}
	if best == -1 || bestDist > max(2, len(query)/3) {
		return api.Sandbox{}, false
	}
	return list[best], true
}

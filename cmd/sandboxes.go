package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/marcus/sbx/internal/api"
	"github.com/marcus/sbx/internal/app"
	"github.com/marcus/sbx/internal/output"
	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"
)

// sandboxTitles adapts sandboxes for fuzzy matching on titles.
type sandboxTitles []api.Sandbox

func (s sandboxTitles) String(i int) string { return s[i].DisplayTitle() }
func (s sandboxTitles) Len() int            { return len(s) }

// searchSandboxes returns the sandboxes matching query, best match first.
func searchSandboxes(list []api.Sandbox, query string) []api.Sandbox {
	query = strings.TrimSpace(query)
	if query == "" {
		return list
	}
	matches := fuzzy.FindFrom(query, sandboxTitles(list))
	out := make([]api.Sandbox, 0, len(matches))
	for _, m := range matches {
		out = append(out, list[m.Index])
	}
	return out
}

var sandboxesCmd = &cobra.Command{
	Use:     "sandboxes",
	Aliases: []string{"ls", "list"},
	Short:   "List your sandboxes",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		search, _ := cmd.Flags().GetString("search")
		tree, _ := cmd.Flags().GetBool("tree")
		asJSON, _ := cmd.Flags().GetBool("json")
		recent, _ := cmd.Flags().GetBool("recent")

		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		if err := e.app.LoadApp(cmd.Context()); err != nil {
			return err
		}
		st := e.app.State()
		out := cmd.OutOrStdout()

		if recent {
			for _, r := range st.Recent {
				fmt.Fprintf(out, "%-12s %s %s\n", r.ID, r.Title, output.Muted(r.OpenedAt.Local().Format("2006-01-02 15:04")))
			}
			return nil
		}

		if !st.IsLoggedIn() {
			output.Error("not signed in")
			return app.ErrNotSignedIn
		}
		if st.LoadErr != nil {
			output.Warning("could not load sandboxes: %v", st.LoadErr)
		}

		list := searchSandboxes(st.Sandboxes, search)

		switch {
		case asJSON:
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			if list == nil {
				list = []api.Sandbox{}
			}
			return enc.Encode(list)
		case tree:
			lines := output.RenderTreeLines(output.ForkTree(list), output.TreeRenderOptions{
				ShowTemplate: true,
				ShowFrozen:   true,
			})
			for _, line := range lines {
				fmt.Fprintln(out, line)
			}
		default:
			for _, sb := range list {
				line := fmt.Sprintf("%-12s %s", sb.ID, sb.DisplayTitle())
				if sb.Template != "" {
					line += output.Muted(" [" + sb.Template + "]")
				}
				if sb.IsFrozen {
					line += output.Muted(" frozen")
				}
				fmt.Fprintln(out, line)
			}
		}
		if len(list) == 0 && !asJSON {
			fmt.Fprintln(out, output.Muted("no sandboxes"))
		}
		return nil
	},
}

func init() {
	sandboxesCmd.Flags().StringP("search", "s", "", "fuzzy filter on titles")
	sandboxesCmd.Flags().Bool("tree", false, "group forks under their source")
	sandboxesCmd.Flags().Bool("json", false, "print JSON")
	sandboxesCmd.Flags().Bool("recent", false, "list recently opened sandboxes")

	rootCmd.AddCommand(sandboxesCmd)
}

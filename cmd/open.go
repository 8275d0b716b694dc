package cmd

import (
	"errors"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/marcus/sbx/internal/github"
	"github.com/marcus/sbx/internal/routepath"
	"github.com/marcus/sbx/pkg/editor"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var openCmd = &cobra.Command{
	Use:   "open [route | sandbox-id | github-url]",
	Short: "Start the interactive editor",
	Long: `Start the interactive editor.

The argument picks the first page: a route such as /dashboard/search?q=todo,
a sandbox ID, or a GitHub URL to import.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			return errors.New("open needs a terminal")
		}

		route := routepath.Root
		if len(args) == 1 {
			route = resolveRoute(args[0])
		}

		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		m := editor.New(e.app,
			editor.WithContext(cmd.Context()),
			editor.WithRoute(route),
			editor.WithLogger(e.logger),
		)
		defer m.Close()

		e.logger.Info("editor started", "route", route)
		p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
		if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			return err
		}
		return nil
	},
}

// resolveRoute turns the open argument into an editor route.
func resolveRoute(arg string) string {
	arg = strings.TrimSpace(arg)
	switch {
	case arg == "":
		return routepath.Root
	case strings.HasPrefix(arg, "/"):
		return arg
	case strings.Contains(arg, "github.com") || strings.HasPrefix(arg, "git@"):
		if repo, err := github.ParseURL(arg); err == nil {
			return routepath.Import(repo.RoutePath())
		}
		return routepath.ImportGitHub
	case strings.Contains(arg, "/"):
		if repo, err := github.ParsePath(arg); err == nil {
			return routepath.Import(repo.RoutePath())
		}
		return "/" + arg
	default:
		return routepath.Sandbox(arg)
	}
}

func init() {
	rootCmd.AddCommand(openCmd)
}

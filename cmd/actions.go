package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/marcus/sbx/internal/api"
	"github.com/marcus/sbx/internal/app"
	"github.com/marcus/sbx/internal/output"
	"github.com/marcus/sbx/internal/routepath"
	"github.com/spf13/cobra"
)

// runWorkflow loads the app and runs fn with the CLI prompter answering
// modals. id is the sandbox the command targets, used for suggestions.
func runWorkflow(cmd *cobra.Command, id string, fn func(ctx context.Context, a *app.App) error) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	if err := e.app.LoadApp(cmd.Context()); err != nil {
		return err
	}
	p := newPrompter(e.app.Modals, cmd.OutOrStdout())
	err = withPrompter(cmd.Context(), p, func(ctx context.Context) error {
		return fn(ctx, e.app)
	})
	switch {
	case errors.Is(err, app.ErrSignInRequested), errors.Is(err, app.ErrNotSignedIn):
		output.Error("not signed in")
	case errors.Is(err, api.ErrNotFound) && id != "":
		output.Error("sandbox %s not found", id)
		if sb, ok := closestSandbox(e.app.State().Sandboxes, id); ok {
			output.Warning("did you mean %s (%s)?", sb.ID, sb.DisplayTitle())
		}
	}
	return err
}

func printSandbox(cmd *cobra.Command, verb string, sb api.Sandbox) {
	output.Success(cmd.OutOrStdout(), "%s %s %s", verb, sb.ID, output.Muted(sb.DisplayTitle()+"  "+routepath.Sandbox(sb.ID)))
}

var importCmd = &cobra.Command{
	Use:   "import <github-url>",
	Short: "Create a sandbox from a GitHub repository",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWorkflow(cmd, "", func(ctx context.Context, a *app.App) error {
			sb, err := a.ImportGitHub(ctx, args[0])
			if err != nil {
				return err
			}
			printSandbox(cmd, "Imported", sb)
			return nil
		})
	},
}

var forkCmd = &cobra.Command{
	Use:   "fork <sandbox-id>",
	Short: "Fork a sandbox, or unfreeze your own",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWorkflow(cmd, args[0], func(ctx context.Context, a *app.App) error {
			sb, err := a.ForkSandbox(ctx, args[0])
			if errors.Is(err, app.ErrCancelled) {
				fmt.Fprintln(cmd.OutOrStdout(), "cancelled")
				return nil
			}
			if err != nil {
				return err
			}
			if sb.ID == args[0] {
				printSandbox(cmd, "Editable", sb)
			} else {
				printSandbox(cmd, "Forked", sb)
			}
			return nil
		})
	},
}

var renameCmd = &cobra.Command{
	Use:   "rename <sandbox-id> [title]",
	Short: "Rename a sandbox",
	Long:  "Rename a sandbox. Without a title you are prompted for one.",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWorkflow(cmd, args[0], func(ctx context.Context, a *app.App) error {
			var (
				sb  api.Sandbox
				err error
			)
			if len(args) == 2 {
				sb, err = a.RenameSandboxTo(ctx, args[0], args[1])
			} else {
				sb, err = a.RenameSandbox(ctx, args[0])
			}
			if errors.Is(err, app.ErrCancelled) {
				fmt.Fprintln(cmd.OutOrStdout(), "cancelled")
				return nil
			}
			if err != nil {
				return err
			}
			printSandbox(cmd, "Renamed", sb)
			return nil
		})
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <sandbox-id>",
	Short: "Delete one of your sandboxes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWorkflow(cmd, args[0], func(ctx context.Context, a *app.App) error {
			deleted, err := a.DeleteSandbox(ctx, args[0])
			if err != nil {
				return err
			}
			if !deleted {
				fmt.Fprintf(cmd.OutOrStdout(), "NOT DELETED %s\n", args[0])
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "DELETED %s\n", args[0])
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(forkCmd)
	rootCmd.AddCommand(renameCmd)
	rootCmd.AddCommand(deleteCmd)
}

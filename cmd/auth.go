package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/marcus/sbx/internal/app"
	"github.com/marcus/sbx/internal/output"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		if err := e.app.LoadApp(cmd.Context()); err != nil {
			return err
		}
		st := e.app.State()
		if !st.IsLoggedIn() {
			output.Error("not signed in")
			return app.ErrNotSignedIn
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s (%s)\n", st.User.Username, st.User.ID)
		if st.User.Name != "" {
			fmt.Fprintf(out, "  name:     %s\n", st.User.Name)
		}
		fmt.Fprintf(out, "  session:  %s\n", e.app.SessionID())
		if st.Offline {
			fmt.Fprintln(out, output.Muted("  offline: showing the cached account"))
		}
		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with an API token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		token, _ := cmd.Flags().GetString("token")
		token = strings.TrimSpace(token)
		if token == "" {
			if !term.IsTerminal(int(os.Stdin.Fd())) {
				return errors.New("--token is required without a terminal")
			}
			input := huh.NewInput().
				Title("API token").
				EchoMode(huh.EchoModePassword).
				Value(&token)
			if err := huh.NewForm(huh.NewGroup(input)).RunWithContext(cmd.Context()); err != nil {
				return err
			}
		}

		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		if err := e.app.SignIn(cmd.Context(), token); err != nil {
			output.Error("sign in failed: %v", err)
			return err
		}
		output.Success(cmd.OutOrStdout(), "Signed in as %s", e.app.State().User.Username)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		e.app.SignOut()
		output.Success(cmd.OutOrStdout(), "Signed out")
		if e.cfg.Token != "" {
			output.Warning("SBX_TOKEN or the config file still provides a token")
		}
		return nil
	},
}

func init() {
	loginCmd.Flags().String("token", "", "API token")

	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
}

package cmd

import (
	"fmt"

	"github.com/marcus/sbx/internal/config"
	"github.com/marcus/sbx/internal/output"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(getBaseDir())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "api_url                  %s\n", cfg.APIURL)
		fmt.Fprintf(out, "log_level                %s\n", cfg.LogLevel)
		fmt.Fprintf(out, "theme                    %s\n", cfg.Theme)
		fmt.Fprintf(out, "request_timeout          %s\n", cfg.RequestTimeout)
		fmt.Fprintf(out, "modal.supersede          %s\n", cfg.Modal.Supersede)
		fmt.Fprintf(out, "dashboard.page_size      %d\n", cfg.Dashboard.PageSize)
		fmt.Fprintf(out, "dashboard.recent_limit   %d\n", cfg.Dashboard.RecentLimit)
		if cfg.Token != "" {
			fmt.Fprintln(out, output.Muted("token is set from the environment"))
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a setting",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Set(getBaseDir(), args[0], args[1]); err != nil {
			output.Error("%v", err)
			return err
		}
		output.Success(cmd.OutOrStdout(), "%s = %s", args[0], args[1])
		return nil
	},
}

func init() {
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

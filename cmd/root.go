package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	version   string
	baseDir   string
	debug     bool
	apiURL    string
	assumeYes bool
)

// SetVersion sets the version string
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

var rootCmd = &cobra.Command{
	Use:   "sbx",
	Short: "Browse and edit your sandboxes from the terminal",
	Long: `sbx - A terminal client for your sandboxes.

Run "sbx open" for the interactive editor, or use the subcommands to list,
fork, rename, delete and import sandboxes from scripts.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// addGlobalFlags registers the flags every command accepts.
func addGlobalFlags(fs *pflag.FlagSet) {
	fs.StringVar(&baseDir, "dir", "", "data directory (default $SBX_DIR or ~/.sbx)")
	fs.BoolVar(&debug, "debug", false, "log at debug level")
	fs.StringVar(&apiURL, "api-url", "", "service URL (overrides config)")
	fs.BoolVarP(&assumeYes, "yes", "y", false, "answer confirmation prompts with yes")
}

func init() {
	addGlobalFlags(rootCmd.PersistentFlags())
}

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/matheuskafuri/techradar/internal/update"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	flagConfig   string
	flagTab      string
	flagLogLevel string
)

var rootCmd = &cobra.Command{
	Use:   "techradar",
	Short: "AI-curated technology news in your terminal",
	Long: `techradar asks a language model for the latest news on AI developer tools,
NVIDIA technology or any technical topic you search for, and shows it in a
two-pane terminal browser.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd.Context(), appOpts{})
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "override the configured log level (debug, info, warn, error)")
	rootCmd.Flags().StringVar(&flagTab, "tab", "", "tab to open on launch: tech, nvidia or custom")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(topicsCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "techradar %s (commit: %s, built: %s)\n", version, commit, date)
		if res := update.Check(cmd.Context(), version); res != nil {
			fmt.Fprintf(out, "A newer version is available: %s\n%s\n", res.LatestVersion, res.URL)
		}
	},
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}

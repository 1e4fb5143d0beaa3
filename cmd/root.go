package cmd

import "github.com/spf13/cobra"

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "nermi",
	Short: "NerMI company website server",
	Long: `nermi serves the NerMI static website and its contact form relay.
Form submissions are emailed to the configured recipient, recorded in a
local SQLite database and optionally announced to a webhook.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "nermi.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

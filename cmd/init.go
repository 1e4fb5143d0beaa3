package cmd

import (
	"github.com/spf13/cobra"

	"github.com/nermi/website/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create nermi.yml with an interactive wizard",
	Long:  `Runs an interactive wizard for the site directory, contact recipient and mail relay, and writes the config file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard(cfgFile)
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}

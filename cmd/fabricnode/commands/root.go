// Package commands implements the fabricnode CLI, grounded on the corpus's
// own cmd/<binary>/commands package: a package-level rootCmd, an exported
// Execute entry point called once from main, and one file per subcommand.
package commands

import "github.com/spf13/cobra"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "fabricnode",
	Short: "Run a fabricdb storage-and-replication node",
}

// Execute runs the CLI. Called once from main.main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to config file (default: ./fabricnode.yaml)")
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

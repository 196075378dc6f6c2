package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tucfis/shexpose/cmd/shexpose/commands"
	"github.com/tucfis/shexpose/logger"
)

var rootCmd = &cobra.Command{
	Use:   "shexpose",
	Short: "shexpose - CRUD surface over a SPARQL triple store",
	Long: `shexpose - Expose shape-described graph resources as CRUD endpoints.

Entities declared in the resource configuration become JSON REST endpoints;
reads and writes are translated into SPARQL queries and ground-triple
updates against the configured triple store.

Available commands:
  serve   - Start the HTTP server
  config  - Show and validate the configuration
  version - Show version information

Examples:
  shexpose serve              # Start serving the configured entities
  shexpose config show        # Show effective configuration
  shexpose config validate    # Validate configuration without starting`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Commands that only print configuration skip logger setup
		if cmd.Name() == "show" || cmd.Name() == "get" {
			return nil
		}
		if err := logger.Initialize(false); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		verbosity, _ := cmd.Flags().GetCount("verbose")
		logger.SetVerbosity(verbosity)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv)")

	rootCmd.AddCommand(commands.ServeCmd)
	rootCmd.AddCommand(commands.ConfigCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	defer logger.Cleanup()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

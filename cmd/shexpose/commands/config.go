package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tucfis/shexpose/am"
)

// ConfigCmd groups configuration inspection commands
var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Show and validate the shexpose configuration",
	Long: `Display and validate shexpose configuration settings.

Configuration sources (in order of precedence):
1. Environment variables (SHEXPOSE_* prefix)
2. Project config (./shexpose.toml, searched upward)
3. User config (~/.shexpose/config.toml)
4. System config (/etc/shexpose/config.toml)
5. Default values

Examples:
  shexpose config show                  # Show current configuration
  shexpose config show --format json    # Show configuration in JSON format
  shexpose config get store.query_endpoint
  shexpose config validate`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  "Display the effective shexpose configuration merged from all sources",
	RunE:  runConfigShow,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a specific configuration value",
	Long:  "Get a specific configuration value using dot notation (e.g., store.query_endpoint, server.port)",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate current configuration",
	Long:  "Validate the merged configuration without starting the server",
	RunE:  runConfigValidate,
}

var configWhereCmd = &cobra.Command{
	Use:   "where",
	Short: "Show where configuration is loaded from",
	Long:  "List the configuration cascade, showing which files exist and which are missing.",
	RunE:  runConfigWhere,
}

var configFormat string

func init() {
	configShowCmd.Flags().StringVar(&configFormat, "format", "toml", "Output format: toml, json, yaml")

	ConfigCmd.AddCommand(configShowCmd)
	ConfigCmd.AddCommand(configGetCmd)
	ConfigCmd.AddCommand(configValidateCmd)
	ConfigCmd.AddCommand(configWhereCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	settings := am.GetViper().AllSettings()

	var out []byte
	var err error
	switch configFormat {
	case "json":
		out, err = json.MarshalIndent(settings, "", "  ")
	case "yaml":
		out, err = yaml.Marshal(settings)
	case "toml":
		out, err = toml.Marshal(settings)
	default:
		return fmt.Errorf("unknown format %q (want toml, json, or yaml)", configFormat)
	}
	if err != nil {
		return fmt.Errorf("failed to render configuration: %w", err)
	}

	fmt.Println(string(out))
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	value := am.Get(args[0])
	if value == nil {
		return fmt.Errorf("configuration key %q not found", args[0])
	}
	fmt.Println(value)
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := am.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	fmt.Println("Configuration is valid")
	return nil
}

func runConfigWhere(cmd *cobra.Command, args []string) error {
	homeDir, _ := os.UserHomeDir()

	candidates := []string{
		"/etc/shexpose/config.toml",
		filepath.Join(homeDir, ".shexpose", "config.toml"),
		"./shexpose.toml",
	}

	fmt.Println("Configuration cascade (lowest to highest precedence):")
	for _, path := range candidates {
		marker := "missing"
		if _, err := os.Stat(path); err == nil {
			marker = "found"
		}
		fmt.Printf("  %-8s %s\n", marker, path)
	}
	fmt.Println("  env      SHEXPOSE_* variables override all files")
	return nil
}

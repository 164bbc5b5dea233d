// ABOUTME: Root command for the storefront CLI
// ABOUTME: Handles global flags and configuration

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/markalston/storefront-cli/internal/config"
)

var (
	apiURL     string
	jsonOutput bool
	configPath string
	assumeYes  bool
)

// rootCmd is the base command
var rootCmd = &cobra.Command{
	Use:   "storefront",
	Short: "CLI for the storefront",
	Long: `storefront is a command-line client for the storefront API.

Log in, manage your cart, check out through the hosted payment page and
browse the catalog, from scripts or the interactive TUI.

Environment Variables:
  STOREFRONT_API_URL          Storefront API URL (default: http://localhost:3000/)
  STOREFRONT_CONFIG_DIR       Directory for config.yaml and the saved session
  STOREFRONT_SESSION_BACKEND  Where the session is kept: file or redis
  LOG_LEVEL, LOG_FORMAT       Log verbosity and format (text or json)`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Storefront API URL (overrides STOREFRONT_API_URL)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output JSON instead of human-readable text")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a config.yaml file")
	rootCmd.PersistentFlags().BoolVarP(&assumeYes, "yes", "y", false, "Skip confirmation prompts")
}

// GetAPIURL returns the API URL from flag, then the loaded configuration
// (which already layers env over the config file over the default)
func GetAPIURL(cfg *config.Config) string {
	if apiURL != "" {
		return apiURL
	}
	if cfg != nil && cfg.APIURL != "" {
		return cfg.APIURL
	}
	return config.DefaultAPIURL
}

// IsJSONOutput returns whether JSON output is requested
func IsJSONOutput() bool {
	return jsonOutput
}

// Package app provides the cobra commands of the country cache API binary.
package app

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stacklok/country-cache-server/internal/versions"
)

var rootCmd = &cobra.Command{
	Use:               "country-cache-api",
	DisableAutoGenTag: true,
	Short:             "Country cache API server",
	Long: `Country cache API server caches country data and exchange rates from public
providers and serves them, with estimated GDP, over a REST API.`,
	Run: func(cmd *cobra.Command, _ []string) {
		if err := cmd.Help(); err != nil {
			slog.Error("Error displaying help", "error", err)
		}
	},
}

// NewRootCmd creates the root command with every subcommand attached.
func NewRootCmd() *cobra.Command {
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug mode")
	if err := viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug")); err != nil {
		slog.Error("Error binding debug flag", "error", err)
	}

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(migrateCmd)

	return rootCmd
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, _ []string) error {
		format, err := cmd.Flags().GetString("format")
		if err != nil {
			return fmt.Errorf("failed to get format flag: %w", err)
		}
		return printVersion(cmd, format)
	},
}

func printVersion(cmd *cobra.Command, format string) error {
	info := versions.GetVersionInfo()
	if format == "json" {
		output, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to format version info: %w", err)
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(output))
		return nil
	}

	slog.Info("country-cache-api version",
		"version", info.Version,
		"commit", info.Commit,
		"built", info.BuildDate,
		"go", info.GoVersion,
		"platform", info.Platform)
	return nil
}

func init() {
	versionCmd.Flags().String("format", "", "Output format (json)")
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"m3u-parser/work/config"
	"m3u-parser/work/logger"
)

var (
	Version = "v0.1.0" // default version
)

// global flags
var (
	flagConfig                 string
	flagLogLevel               string
	flagUserAgent              string
	flagTimeout                int
	flagWorkers                int
	flagObfuscateUrls          bool
	flagLegacyRemoveByCategory bool
)

// cfg is the merged configuration: defaults < config file < flags.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:           "m3u-parser",
	Short:         "Parse, check, filter and convert M3U playlists",
	SilenceUsage:  true,
	SilenceErrors: true,

	PersistentPreRunE: loadConfig,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&flagConfig, "config", "c", "", "Path to a TOML config file")
	flags.StringVar(&flagLogLevel, "log-level", "", "DEBUG, INFO, WARN or ERROR")
	flags.StringVar(&flagUserAgent, "user-agent", "", "User-Agent for retrieval and liveness probes")
	flags.IntVar(&flagTimeout, "timeout", 0, "Per-request timeout in seconds")
	flags.IntVar(&flagWorkers, "workers", 0, "Number of parser workers")
	flags.BoolVar(&flagObfuscateUrls, "obfuscate-urls", false, "Hide URL paths and queries in logs")
	flags.BoolVar(&flagLegacyRemoveByCategory, "legacy-remove-by-category", false, "Make --remove-category keep matches instead of dropping them")

	rootCmd.AddCommand(parseCmd, randomCmd, serveCmd, versionCmd)
}

// loadConfig reads the config file, applies flag overrides and sets the log level.
func loadConfig(cmd *cobra.Command, args []string) error {
	var err error
	if cfg, err = config.Load(flagConfig); err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	changed := cmd.Flags().Changed
	if changed("log-level") {
		cfg.LogLevel = flagLogLevel
	}
	if changed("user-agent") {
		cfg.UserAgent = flagUserAgent
	}
	if changed("timeout") {
		cfg.TimeoutSeconds = flagTimeout
	}
	if changed("workers") {
		cfg.Workers = flagWorkers
	}
	if changed("obfuscate-urls") {
		cfg.ObfuscateUrls = flagObfuscateUrls
	}
	if changed("legacy-remove-by-category") {
		cfg.LegacyRemoveByCategory = flagLegacyRemoveByCategory
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger.SetLogLevel(cfg.LogLevel)
	return nil
}

// our main app worker
func main() {
	if err := rootCmd.Execute(); err != nil {
		logger.Error("{main} %v", err)
		os.Exit(1)
	}
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the mathnotes CLI, which turns
// PDF lecture notes into LaTeX, Markdown, and HTML through the Mathpix
// conversion service.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/mathnotes/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the mathnotes CLI.
var rootCmd = &cobra.Command{
	Use:   "mathnotes",
	Short: "Convert PDF lecture notes into structured digital formats",
	Long: `mathnotes submits PDF documents to the Mathpix conversion service and
collects the results as LaTeX, Markdown, and HTML files in a timestamped
output directory. It estimates the conversion cost up front and keeps a
local ledger of past runs.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, _ := cmd.Flags().GetString("log-level")
		setupLogging(level)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./mathnotes.yaml or ~/.config/mathnotes/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "warn", "log level: debug, info, warn, error")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("mathnotes")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "mathnotes"))
		}
	}

	viper.SetEnvPrefix("MATHNOTES")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// pipelineConfig decodes the loaded configuration into typed settings.
// Flags still take precedence over anything decoded here.
func pipelineConfig() (types.PipelineConfig, error) {
	var cfg types.PipelineConfig
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("reading configuration: %w", err)
	}
	return cfg, nil
}

// setupLogging installs the default slog handler writing to stderr.
func setupLogging(level string) {
	var l slog.Level
	switch level {
	case "debug":
		l = slog.LevelDebug
	case "info":
		l = slog.LevelInfo
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelWarn
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})
	slog.SetDefault(slog.New(handler))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "ganymede",
	Short: "Ganymede - admission control for MCP tool servers",
	Long: `Ganymede guards an MCP tool server's front door. Every request passes
through API key validation (with a TTL cache over a watched key file),
per-key sliding-window rate limiting, and a bounded pool of backend
service handles. Authentication failures feed a security alerter with
cooldown deduplication, and every decision lands in a sanitized
authentication log with a durable audit trail.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

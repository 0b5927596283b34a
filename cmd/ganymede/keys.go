package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"mercator-hq/ganymede/pkg/security/auth"
)

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "API key utilities",
	Long: `Utilities for working with API keys and the registry file.

Subcommands:
  hash     - Derive the hash identifier for a raw API key
  generate - Generate a new random API key

Examples:
  # Find the hash a key appears under in logs and alerts
  ganymede keys hash sk-example

  # Generate a key to add to the registry
  ganymede keys generate`,
}

var keysHashCmd = &cobra.Command{
	Use:   "hash <api-key>",
	Short: "Derive the hash identifier for an API key",
	Long: `Derive the non-reversible hash identifier for a raw API key.

Logs, alerts, and the audit trail never contain raw keys; they carry
this hash instead. Use it to correlate a known key with its entries.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hash := auth.HashKey(args[0])
		if hash == "" {
			return fmt.Errorf("empty API key")
		}
		fmt.Println(hash)
		return nil
	},
}

var keysGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a new random API key",
	Long: `Generate a new random API key suitable for the registry file.

The key is printed together with its hash identifier so the operator
can record both.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		buf := make([]byte, 24)
		if _, err := rand.Read(buf); err != nil {
			return fmt.Errorf("failed to generate key material: %w", err)
		}

		key := "sk-" + hex.EncodeToString(buf)
		fmt.Printf("key:  %s\n", key)
		fmt.Printf("hash: %s\n", auth.HashKey(key))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(keysCmd)
	keysCmd.AddCommand(keysHashCmd)
	keysCmd.AddCommand(keysGenerateCmd)
}

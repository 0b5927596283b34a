package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"mercator-hq/ganymede/pkg/config"
	"mercator-hq/ganymede/pkg/security/auth"
)

var validateFlags struct {
	checkKeys bool
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file",
	Long: `Validate the configuration file without starting the server.

The validate command loads the configuration, applies defaults and
environment overrides, and reports every invalid field it finds. With
--keys it also loads the API key registry and reports registry errors.

Examples:
  # Validate the default config.yaml
  ganymede validate

  # Validate a specific file including the key registry
  ganymede validate --config /etc/ganymede/config.yaml --keys`,
	RunE: validateConfig,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().BoolVar(&validateFlags.checkKeys, "keys", false, "also load and check the API key registry")
}

func validateConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		var verr config.ValidationError
		if errors.As(err, &verr) {
			fmt.Printf("Configuration invalid: %s\n\n", cfgFile)
			for _, fe := range verr.Errors {
				fmt.Printf("  %s: %s\n", fe.Field, fe.Message)
			}
			return fmt.Errorf("%d configuration error(s)", len(verr.Errors))
		}
		return fmt.Errorf("failed to load config: %w", err)
	}

	fmt.Printf("Configuration valid: %s\n", cfgFile)
	fmt.Printf("  listen address: %s\n", cfg.Server.ListenAddress)
	fmt.Printf("  key file:       %s\n", cfg.Auth.KeyFile)
	fmt.Printf("  rate limit:     %d requests/minute\n", cfg.RateLimit.RequestsPerMinute)

	if !validateFlags.checkKeys {
		return nil
	}

	store, err := auth.NewFileKeyStore(cfg.Auth.KeyFile)
	if err != nil {
		return fmt.Errorf("key registry check failed: %w", err)
	}
	fmt.Printf("  key registry:   %d key(s) loaded\n", store.Count())
	return nil
}

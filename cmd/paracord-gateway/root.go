package main

import (
	"github.com/spf13/cobra"

	"paracord-hq/gateway/pkg/config"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "paracord-gateway",
	Short: "Paracord gateway - TLS, admission and media signaling edge",
	Long: `Paracord gateway is the network edge of a Paracord deployment.

It provides:
  - TLS termination with self-signed certificate provisioning
  - Per-client rate limiting and CORS
  - Session, bot and administrator authentication
  - A reverse proxy for LiveKit media signaling (WebSocket and HTTP)
  - Supervision of a local LiveKit server

Configuration is read from --config (YAML) when given and from PARACORD_*
environment variables, e.g. PARACORD_SERVER_LISTEN_ADDRESS.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (defaults and environment only when empty)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadConfig reads --config with environment overrides.
func loadConfig() (*config.Config, error) {
	if err := config.Initialize(cfgFile); err != nil {
		return nil, err
	}
	return config.GetConfig(), nil
}

package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"paracord-hq/gateway/pkg/cli"
	"paracord-hq/gateway/pkg/config"
	"paracord-hq/gateway/pkg/security/secrets"
	"paracord-hq/gateway/pkg/server"
	"paracord-hq/gateway/pkg/telemetry/logging"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the gateway",
	Long: `Start the gateway with the specified configuration.

The gateway detects its LAN and public addresses, starts the managed LiveKit
server when signaling.managed is set, provisions TLS material when
tls.enabled is set, then serves until SIGINT or SIGTERM.

Examples:
  # Start with defaults and environment overrides
  paracord-gateway run

  # Start with custom config
  paracord-gateway run --config /etc/paracord/gateway.yaml

  # Override listen address
  paracord-gateway run --listen 0.0.0.0:8443

  # Validate config without starting the gateway
  paracord-gateway run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting the gateway")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return cli.WrapConfigError(err)
	}

	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}
	if err := secrets.FromConfig(cfg.Secrets).ResolveConfig(cmd.Context(), cfg); err != nil {
		return cli.WrapConfigError(err)
	}
	// Flags bypass the loader, so check the result again.
	if err := config.Validate(cfg); err != nil {
		return cli.WrapConfigError(err)
	}

	if _, err := logging.Setup(logging.FromConfig(cfg.Telemetry.Logging)); err != nil {
		return cli.WrapConfigError(err)
	}

	out := cmd.OutOrStdout()
	if runFlags.dryRun {
		fmt.Fprintln(out, "✓ Configuration valid")
		return nil
	}

	printBanner(cmd, cfg)

	srv, err := server.NewServer(cfg, Version)
	if err != nil {
		return cli.NewCommandError("run", err)
	}

	if err := srv.Start(cmd.Context()); err != nil {
		slog.Error("gateway stopped with error", "error", err)
		return cli.NewCommandError("run", err)
	}

	fmt.Fprintln(out, "✓ Gateway stopped")
	return nil
}

func printBanner(cmd *cobra.Command, cfg *config.Config) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Paracord gateway v%s\n", Version)
	if cfgFile != "" {
		fmt.Fprintf(out, "Configuration: %s\n", cfgFile)
	}

	scheme := "http"
	if cfg.TLS.Enabled {
		scheme = "https"
	}
	fmt.Fprintf(out, "✓ Listening on %s://%s\n", scheme, cfg.Server.ListenAddress)
	fmt.Fprintf(out, "✓ Signaling %s -> %s\n", cfg.Signaling.Prefix, cfg.Signaling.HTTPURL)

	slog.Debug("signaling supervision", "managed", cfg.Signaling.Managed, "binary", cfg.Signaling.BinaryName)
	slog.Debug("rate limit", "requests_per_second", cfg.Server.RateLimit.RequestsPerSecond)
}

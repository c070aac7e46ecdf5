package main

import (
	"github.com/spf13/cobra"

	"paracord-hq/gateway/pkg/config"
)

var certsFlags struct {
	certFile string
	keyFile  string
}

var certsCmd = &cobra.Command{
	Use:   "certs",
	Short: "Manage the gateway's TLS certificate",
	Long: `Manage the TLS certificate the gateway serves.

Subcommands:
  generate - Create the self-signed certificate if it does not exist
  info     - Display certificate details
  validate - Check that the certificate and key form a usable pair

The certificate and key default to tls.cert_path and tls.key_path from the
configuration.

Examples:
  # Generate with an extra name
  paracord-gateway certs generate --host chat.example.com

  # Display certificate information as JSON
  paracord-gateway certs info --format json`,
}

func init() {
	rootCmd.AddCommand(certsCmd)

	certsCmd.PersistentFlags().StringVar(&certsFlags.certFile, "cert", "", "certificate file (default tls.cert_path)")
	certsCmd.PersistentFlags().StringVar(&certsFlags.keyFile, "key", "", "private key file (default tls.key_path)")
}

// certPaths resolves the certificate and key from flags, then the
// configuration.
func certPaths() (certFile, keyFile string, err error) {
	cfg, err := config.LoadUnvalidated(cfgFile)
	if err != nil {
		return "", "", err
	}
	certFile, keyFile = cfg.TLS.CertPath, cfg.TLS.KeyPath
	if certsFlags.certFile != "" {
		certFile = certsFlags.certFile
	}
	if certsFlags.keyFile != "" {
		keyFile = certsFlags.keyFile
	}
	return certFile, keyFile, nil
}

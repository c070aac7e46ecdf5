package main

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"paracord-hq/gateway/pkg/cli"
	"paracord-hq/gateway/pkg/netinfo"
	ptls "paracord-hq/gateway/pkg/security/tls"
)

var certsValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate certificate and key",
	Long: `Validate the TLS certificate and private key the gateway would serve.

This command checks that:
  - the certificate and key form a pair
  - the certificate is currently within its validity period

It warns when the certificate expires within 30 days, and when it does not
name this host's LAN address (clients on the network would see a hostname
mismatch).

Examples:
  paracord-gateway certs validate
  paracord-gateway certs validate --cert server.crt --key server.key`,
	RunE: validateCertificate,
}

func init() {
	certsCmd.AddCommand(certsValidateCmd)
}

func validateCertificate(cmd *cobra.Command, args []string) error {
	certFile, keyFile, err := certPaths()
	if err != nil {
		return cli.WrapConfigError(err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Validating certificate: %s\n", certFile)

	pair, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return cli.NewCommandError("certs validate", fmt.Errorf("certificate and key do not form a pair: %w", err))
	}
	fmt.Fprintln(out, "✓ Certificate and key match")

	now := time.Now()
	if err := ptls.ValidateCertificate(&pair, now); err != nil {
		return cli.NewCommandError("certs validate", err)
	}
	fmt.Fprintln(out, "✓ Certificate is within its validity period")

	leaf, err := x509.ParseCertificate(pair.Certificate[0])
	if err != nil {
		return cli.NewCommandError("certs validate", err)
	}
	info := ptls.ExtractCertificateInfo(leaf)
	if info.ExpiresWithin(now, ptls.ExpiryWarningWindow) {
		fmt.Fprintf(out, "⚠ Certificate expires on %s\n", info.NotAfter.Format("2006-01-02"))
	}
	if ip, err := netinfo.LocalIP(); err == nil && !info.Covers(ip) {
		fmt.Fprintf(out, "⚠ Certificate does not cover LAN address %s\n", ip)
	}
	return nil
}

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"paracord-hq/gateway/pkg/cli"
	"paracord-hq/gateway/pkg/netinfo"
	ptls "paracord-hq/gateway/pkg/security/tls"
)

var generateFlags struct {
	hosts  []string
	detect bool
	force  bool
}

var certsGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Create the self-signed certificate",
	Long: `Create the self-signed certificate the gateway serves when tls.enabled
is set. Existing files are kept unless --force is given.

The certificate always covers localhost, 127.0.0.1 and ::1. With --detect the
LAN address of this machine is added, followed by any --host values.

Examples:
  # Generate with the detected LAN address
  paracord-gateway certs generate

  # Add a public name and replace existing files
  paracord-gateway certs generate --host chat.example.com --force`,
	RunE: generateCertificate,
}

func init() {
	certsCmd.AddCommand(certsGenerateCmd)

	certsGenerateCmd.Flags().StringSliceVar(&generateFlags.hosts, "host", nil, "additional DNS name or IP address (repeatable)")
	certsGenerateCmd.Flags().BoolVar(&generateFlags.detect, "detect", true, "include the detected LAN address")
	certsGenerateCmd.Flags().BoolVar(&generateFlags.force, "force", false, "replace an existing certificate and key")
}

func generateCertificate(cmd *cobra.Command, args []string) error {
	certFile, keyFile, err := certPaths()
	if err != nil {
		return cli.WrapConfigError(err)
	}

	if generateFlags.force {
		for _, path := range []string{certFile, keyFile} {
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				return cli.NewCommandError("certs generate", err)
			}
		}
	}

	var detected []string
	if generateFlags.detect {
		if ip, err := netinfo.LocalIP(); err == nil {
			detected = append(detected, ip)
		}
	}
	detected = append(detected, generateFlags.hosts...)

	material, err := ptls.EnsureTransport(ptls.TransportConfig{
		CertPath:     certFile,
		KeyPath:      keyFile,
		AutoGenerate: true,
	}, detected)
	if err != nil {
		return cli.NewCommandError("certs generate", err)
	}

	out := cmd.OutOrStdout()
	if !material.Generated {
		fmt.Fprintf(out, "Certificate already exists at %s (use --force to replace)\n", certFile)
		return nil
	}

	fmt.Fprintf(out, "✓ Certificate: %s\n", certFile)
	fmt.Fprintf(out, "✓ Private key: %s\n", keyFile)
	fmt.Fprintf(out, "  Names: %s\n", strings.Join(material.SANs, ", "))
	return nil
}

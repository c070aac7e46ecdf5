package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"paracord-hq/gateway/pkg/cli"
	ptls "paracord-hq/gateway/pkg/security/tls"
)

var infoFlags struct {
	format string
}

var certsInfoCmd = &cobra.Command{
	Use:   "info [cert-file]",
	Short: "Display certificate details",
	Long: `Display the subject, issuer, validity and subject alternative names of
a certificate. Without an argument the configured certificate is read.

Output formats:
  - text (default): Human-readable formatted output
  - json: JSON-formatted output for scripting

Examples:
  paracord-gateway certs info
  paracord-gateway certs info --format json data/certs/cert.pem`,
	Args: cobra.MaximumNArgs(1),
	RunE: displayCertInfo,
}

func init() {
	certsCmd.AddCommand(certsInfoCmd)

	certsInfoCmd.Flags().StringVar(&infoFlags.format, "format", "text", "output format: text, json")
}

// certReport is what "certs info" prints.
type certReport struct {
	File          string    `json:"file"`
	Subject       string    `json:"subject"`
	Issuer        string    `json:"issuer"`
	SerialNumber  string    `json:"serial_number"`
	NotBefore     time.Time `json:"not_before"`
	NotAfter      time.Time `json:"not_after"`
	DaysRemaining int       `json:"days_remaining"`
	Expired       bool      `json:"expired"`
	ExpiresSoon   bool      `json:"expires_soon"`
	SelfSigned    bool      `json:"self_signed"`
	DNSNames      []string  `json:"dns_names"`
	IPAddresses   []string  `json:"ip_addresses"`
	Algorithm     string    `json:"public_key_algorithm"`
}

func newCertReport(file string, info *ptls.CertificateInfo, now time.Time) certReport {
	return certReport{
		File:          file,
		Subject:       info.Subject,
		Issuer:        info.Issuer,
		SerialNumber:  info.SerialNumber,
		NotBefore:     info.NotBefore,
		NotAfter:      info.NotAfter,
		DaysRemaining: int(info.NotAfter.Sub(now).Hours() / 24),
		Expired:       now.After(info.NotAfter),
		ExpiresSoon:   info.ExpiresWithin(now, ptls.ExpiryWarningWindow),
		SelfSigned:    info.SelfSigned,
		DNSNames:      info.DNSNames,
		IPAddresses:   info.IPAddresses,
		Algorithm:     info.PublicKeyAlgorithm,
	}
}

func (r certReport) String() string {
	status := fmt.Sprintf("valid (%d days remaining)", r.DaysRemaining)
	switch {
	case r.Expired:
		status = "EXPIRED"
	case r.ExpiresSoon:
		status = fmt.Sprintf("expires in %d days", r.DaysRemaining)
	}

	selfSigned := "no"
	if r.SelfSigned {
		selfSigned = "yes"
	}

	return cli.Fields{
		{Label: "Certificate", Value: r.File},
		{Label: "Subject", Value: r.Subject},
		{Label: "Issuer", Value: r.Issuer},
		{Label: "Self-signed", Value: selfSigned},
		{Label: "Not before", Value: r.NotBefore.Format(time.RFC3339)},
		{Label: "Not after", Value: r.NotAfter.Format(time.RFC3339)},
		{Label: "Status", Value: status},
		{Label: "DNS names", Value: strings.Join(r.DNSNames, ", ")},
		{Label: "IP addresses", Value: strings.Join(r.IPAddresses, ", ")},
		{Label: "Key", Value: r.Algorithm},
		{Label: "Serial", Value: r.SerialNumber},
	}.String()
}

func displayCertInfo(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(infoFlags.format)
	if err != nil {
		return err
	}

	var certFile string
	if len(args) == 1 {
		certFile = args[0]
	} else if certFile, _, err = certPaths(); err != nil {
		return cli.WrapConfigError(err)
	}

	cert, err := ptls.LoadCertificateFile(certFile)
	if err != nil {
		return cli.NewCommandError("certs info", err)
	}

	report := newCertReport(certFile, ptls.ExtractCertificateInfo(cert), time.Now())
	return cli.NewPrinter(format, cmd.OutOrStdout()).Print(report)
}

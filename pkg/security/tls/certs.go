package tls

import (
	"bytes"
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"time"
)

// ExpiryWarningWindow is how close to expiry a certificate triggers a warning.
const ExpiryWarningWindow = 30 * 24 * time.Hour

// ValidityError reports a certificate used outside its validity window.
type ValidityError struct {
	NotBefore time.Time
	NotAfter  time.Time
	At        time.Time
}

func (e *ValidityError) Error() string {
	if e.At.Before(e.NotBefore) {
		return fmt.Sprintf("certificate is not yet valid (valid from %s)", e.NotBefore.Format(time.RFC3339))
	}
	return fmt.Sprintf("certificate expired on %s", e.NotAfter.Format(time.RFC3339))
}

// ValidateCertificate checks that the leaf of cert is valid at now.
func ValidateCertificate(cert *tls.Certificate, now time.Time) error {
	if cert == nil || len(cert.Certificate) == 0 {
		return errors.New("certificate chain is empty")
	}
	leaf, err := x509.ParseCertificate(cert.Certificate[0])
	if err != nil {
		return fmt.Errorf("failed to parse certificate: %w", err)
	}
	if now.Before(leaf.NotBefore) || now.After(leaf.NotAfter) {
		return &ValidityError{NotBefore: leaf.NotBefore, NotAfter: leaf.NotAfter, At: now}
	}
	return nil
}

// CertificateInfo summarizes a certificate for "certs info" and
// "certs validate".
type CertificateInfo struct {
	Subject            string
	Issuer             string
	SerialNumber       string
	NotBefore          time.Time
	NotAfter           time.Time
	DNSNames           []string
	IPAddresses        []string
	SelfSigned         bool
	PublicKeyAlgorithm string

	leaf *x509.Certificate
}

// ExpiresWithin reports whether the certificate expires before now+window.
func (i *CertificateInfo) ExpiresWithin(now time.Time, window time.Duration) bool {
	return i.NotAfter.Before(now.Add(window))
}

// Covers reports whether host, a DNS name or IP literal, is among the
// certificate's subject alternative names.
func (i *CertificateInfo) Covers(host string) bool {
	if i.leaf == nil {
		return false
	}
	return i.leaf.VerifyHostname(host) == nil
}

// ExtractCertificateInfo summarizes cert.
func ExtractCertificateInfo(cert *x509.Certificate) *CertificateInfo {
	info := &CertificateInfo{
		Subject:            cert.Subject.String(),
		Issuer:             cert.Issuer.String(),
		SerialNumber:       cert.SerialNumber.Text(16),
		NotBefore:          cert.NotBefore,
		NotAfter:           cert.NotAfter,
		DNSNames:           cert.DNSNames,
		SelfSigned:         isSelfSigned(cert),
		PublicKeyAlgorithm: cert.PublicKeyAlgorithm.String(),
		leaf:               cert,
	}
	for _, ip := range cert.IPAddresses {
		info.IPAddresses = append(info.IPAddresses, ip.String())
	}
	return info
}

func isSelfSigned(cert *x509.Certificate) bool {
	if !bytes.Equal(cert.RawSubject, cert.RawIssuer) {
		return false
	}
	return cert.CheckSignature(cert.SignatureAlgorithm, cert.RawTBSCertificate, cert.Signature) == nil
}

// LoadCertificateFile parses the first CERTIFICATE block in path, skipping
// any key blocks in a combined PEM file.
func LoadCertificateFile(path string) (*x509.Certificate, error) {
	rest, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read certificate %q: %w", path, err)
	}

	for {
		var block *pem.Block
		if block, rest = pem.Decode(rest); block == nil {
			return nil, fmt.Errorf("no certificate found in %q", path)
		}
		if block.Type == "CERTIFICATE" {
			cert, err := x509.ParseCertificate(block.Bytes)
			if err != nil {
				return nil, fmt.Errorf("failed to parse certificate %q: %w", path, err)
			}
			return cert, nil
		}
	}
}

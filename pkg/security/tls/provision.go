package tls

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"time"
)

// ALPNHTTP11 is the only application protocol the transport advertises.
const ALPNHTTP11 = "http/1.1"

// DefaultValidity is the lifetime of generated certificates.
const DefaultValidity = 10 * 365 * 24 * time.Hour

// baseSANs are always present in a generated certificate, in this order.
var baseSANs = []string{"localhost", "127.0.0.1", "::1"}

// TransportConfig locates the certificate and key.
type TransportConfig struct {
	CertPath     string
	KeyPath      string
	AutoGenerate bool
}

// Material is the PEM certificate and key the listener serves.
type Material struct {
	CertPEM []byte
	KeyPEM  []byte

	// SANs lists the subject alternative names written into a generated
	// certificate. It is empty when existing files were loaded.
	SANs []string

	// NextProtos is always exactly ["http/1.1"].
	NextProtos []string

	// Generated reports whether the files were created by this call.
	Generated bool
}

// ConfigError reports that TLS material is missing and cannot be generated.
type ConfigError struct {
	CertPath string
	KeyPath  string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("TLS cert/key not found at %q / %q and auto_generate is disabled", e.CertPath, e.KeyPath)
}

// EnsureTransport returns the certificate material for the listener. When
// both files exist they are loaded unchanged. Otherwise a self-signed
// certificate is generated if cfg.AutoGenerate is set, with detected
// addresses appended to the subject alternative names.
func EnsureTransport(cfg TransportConfig, detected []string) (*Material, error) {
	material := &Material{NextProtos: []string{ALPNHTTP11}}

	if fileExists(cfg.CertPath) && fileExists(cfg.KeyPath) {
		slog.Info("using existing TLS certificate", "cert_path", cfg.CertPath)
	} else {
		if !cfg.AutoGenerate {
			return nil, &ConfigError{CertPath: cfg.CertPath, KeyPath: cfg.KeyPath}
		}
		sans := SubjectAltNames(detected)
		if err := generateSelfSigned(cfg.CertPath, cfg.KeyPath, sans, time.Now()); err != nil {
			return nil, err
		}
		material.SANs = sans
		material.Generated = true
	}

	var err error
	material.CertPEM, err = os.ReadFile(cfg.CertPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read certificate %q: %w", cfg.CertPath, err)
	}
	material.KeyPEM, err = os.ReadFile(cfg.KeyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read key %q: %w", cfg.KeyPath, err)
	}

	if _, err := tls.X509KeyPair(material.CertPEM, material.KeyPEM); err != nil {
		return nil, fmt.Errorf("failed to parse certificate and key: %w", err)
	}

	return material, nil
}

// TLSConfig builds a server configuration that offers only http/1.1.
func (m *Material) TLSConfig() (*tls.Config, error) {
	cert, err := tls.X509KeyPair(m.CertPEM, m.KeyPEM)
	if err != nil {
		return nil, fmt.Errorf("failed to load certificate: %w", err)
	}

	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
		NextProtos:   []string{ALPNHTTP11},
	}, nil
}

// SubjectAltNames returns localhost, 127.0.0.1 and ::1 followed by the
// detected addresses, dropping empty entries and duplicates while keeping
// first occurrence order.
func SubjectAltNames(detected []string) []string {
	sans := make([]string, 0, len(baseSANs)+len(detected))
	seen := make(map[string]bool, cap(sans))
	for _, name := range append(append([]string{}, baseSANs...), detected...) {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		sans = append(sans, name)
	}
	return sans
}

func generateSelfSigned(certPath, keyPath string, sans []string, now time.Time) error {
	slog.Info("generating self-signed TLS certificate", "sans", sans)

	privateKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return fmt.Errorf("failed to generate private key: %w", err)
	}

	serialNumber, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return fmt.Errorf("failed to generate serial number: %w", err)
	}

	template := x509.Certificate{
		SerialNumber: serialNumber,
		Subject: pkix.Name{
			Organization: []string{"Paracord"},
			CommonName:   sans[0],
		},
		NotBefore:             now.Add(-time.Hour),
		NotAfter:              now.Add(DefaultValidity),
		KeyUsage:              x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
	}
	for _, name := range sans {
		if ip := net.ParseIP(name); ip != nil {
			template.IPAddresses = append(template.IPAddresses, ip)
		} else {
			template.DNSNames = append(template.DNSNames, name)
		}
	}

	derBytes, err := x509.CreateCertificate(rand.Reader, &template, &template, &privateKey.PublicKey, privateKey)
	if err != nil {
		return fmt.Errorf("failed to create certificate: %w", err)
	}

	keyBytes, err := x509.MarshalPKCS8PrivateKey(privateKey)
	if err != nil {
		return fmt.Errorf("failed to encode private key: %w", err)
	}

	for _, path := range []string{certPath, keyPath} {
		if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
			return fmt.Errorf("failed to create certs directory: %w", err)
		}
	}

	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: derBytes})
	if err := os.WriteFile(certPath, certPEM, 0644); err != nil { // #nosec G306 - public certificate
		return fmt.Errorf("failed to write certificate to %q: %w", certPath, err)
	}

	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: keyBytes})
	if err := os.WriteFile(keyPath, keyPEM, 0600); err != nil {
		return fmt.Errorf("failed to write key to %q: %w", keyPath, err)
	}

	slog.Info("self-signed TLS certificate written", "cert_path", certPath, "key_path", keyPath)
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil || !errors.Is(err, os.ErrNotExist)
}

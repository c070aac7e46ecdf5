// Package netinfo detects the addresses the gateway is reachable on. The
// results feed the generated certificate's subject alternative names and the
// public address advertised by the managed signaling process.
package netinfo

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"paracord-hq/gateway/pkg/config"
)

// probeAddress is only used to pick the outbound interface. UDP "connect"
// sends no packets.
const probeAddress = "8.8.8.8:80"

// maxEchoBody bounds the external lookup response.
const maxEchoBody = 256

// Addresses are the detected LAN and public addresses. Either may be empty.
type Addresses struct {
	Local    string
	External string
}

// List returns the non-empty addresses, LAN first.
func (a Addresses) List() []string {
	var out []string
	for _, ip := range []string{a.Local, a.External} {
		if ip != "" {
			out = append(out, ip)
		}
	}
	return out
}

// Detector looks up addresses. The zero value is usable.
type Detector struct {
	// Client performs the external lookup. Defaults to a client with the
	// detection timeout.
	Client *http.Client

	// LocalIP overrides LAN detection in tests.
	LocalIP func() (string, error)
}

// LocalIP returns the address of the interface used for outbound traffic.
func LocalIP() (string, error) {
	conn, err := net.Dial("udp", probeAddress)
	if err != nil {
		return "", fmt.Errorf("failed to select outbound interface: %w", err)
	}
	defer conn.Close()

	addr, ok := conn.LocalAddr().(*net.UDPAddr)
	if !ok || addr.IP == nil || addr.IP.IsUnspecified() {
		return "", fmt.Errorf("no usable local address")
	}
	return addr.IP.String(), nil
}

// ExternalIP asks an echo service for the caller's public address. The
// response body must be a bare IP address, optionally surrounded by
// whitespace.
func (d *Detector) ExternalIP(ctx context.Context, url string) (string, error) {
	client := d.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("external address lookup failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("external address lookup returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxEchoBody))
	if err != nil {
		return "", fmt.Errorf("failed to read lookup response: %w", err)
	}

	text := strings.TrimSpace(string(body))
	ip := net.ParseIP(text)
	if ip == nil {
		return "", fmt.Errorf("lookup returned %q, not an IP address", text)
	}
	return ip.String(), nil
}

// Detect returns the LAN and public addresses. Failures are logged and leave
// the corresponding address empty; detection never stops the server from
// starting. An explicitly configured external IP wins over the lookup.
func (d *Detector) Detect(ctx context.Context, cfg *config.Config) Addresses {
	var addrs Addresses

	localIP := d.LocalIP
	if localIP == nil {
		localIP = LocalIP
	}
	if ip, err := localIP(); err != nil {
		slog.Warn("could not detect LAN address", "error", err)
	} else {
		addrs.Local = ip
		slog.Info("detected LAN address", "ip", ip)
	}

	switch {
	case cfg.Signaling.ExternalIP != "":
		addrs.External = cfg.Signaling.ExternalIP
		slog.Info("using configured external address", "ip", addrs.External)

	case cfg.Network.DetectExternalIP && cfg.Network.ExternalIPURL != "":
		timeout := cfg.Network.DetectTimeout
		if timeout <= 0 {
			timeout = 3 * time.Second
		}
		lookupCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		ip, err := d.ExternalIP(lookupCtx, cfg.Network.ExternalIPURL)
		if err != nil {
			slog.Warn("could not detect external address", "error", err)
		} else {
			addrs.External = ip
			slog.Info("detected external address", "ip", ip)
		}
	}

	return addrs
}

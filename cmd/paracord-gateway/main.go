// Paracord gateway is the public network edge of a Paracord chat server.
//
// It terminates TLS, admits requests through a per-client rate limit and
// CORS, authenticates callers against the server's credential store, and
// proxies media signaling (WebSocket and HTTP) to a LiveKit server it can
// start and supervise itself.
//
// Usage:
//
//	# Start with defaults and PARACORD_* environment overrides
//	paracord-gateway run
//
//	# Start with a configuration file
//	paracord-gateway run --config /etc/paracord/gateway.yaml
//
//	# Create the self-signed certificate ahead of time
//	paracord-gateway certs generate --host chat.example.com
//
//	# Inspect the served certificate
//	paracord-gateway certs info
//
//	# Show version information
//	paracord-gateway version
package main

import (
	"fmt"
	"os"

	"paracord-hq/gateway/pkg/cli"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.ExitCode(err))
	}
}

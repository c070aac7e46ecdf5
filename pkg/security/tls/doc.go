/*
Package tls provisions the gateway's TLS transport.

# Provisioning

EnsureTransport returns certificate material for the listener. Existing files
are used as-is. When either file is missing and auto generation is enabled, a
self-signed ECDSA certificate is written covering localhost, the loopback
addresses and any detected LAN or public addresses:

	material, err := tls.EnsureTransport(tls.TransportConfig{
		CertPath:     "data/certs/cert.pem",
		KeyPath:      "data/certs/key.pem",
		AutoGenerate: true,
	}, []string{"192.168.1.20", "203.0.113.7"})
	if err != nil {
		log.Fatal(err)
	}

	tlsConfig, err := material.TLSConfig()

# Protocol Negotiation

The transport only ever advertises http/1.1 through ALPN. WebSocket upgrades
need HTTP/1.1; a browser that negotiates h2 sends its upgrade as extended
CONNECT, which the server does not implement, and the socket silently never
opens. Servers using the returned config should also set TLSNextProto to an
empty map so net/http does not add h2 back.

# Reloading

Reloader watches the certificate and key with fsnotify and swaps the served
certificate through tls.Config.GetCertificate when an operator replaces them.
*/
package tls

/*
Package security groups the gateway's transport and caller security.

# TLS

Package tls provisions the listener's certificate. Existing PEM files are
used as they are; missing ones are replaced by a self-signed ECDSA
certificate covering localhost, the loopback addresses and the detected LAN
and public addresses. Only http/1.1 is offered over ALPN.

	material, err := tls.EnsureTransport(tls.TransportConfig{
		CertPath:     "data/certs/cert.pem",
		KeyPath:      "data/certs/key.pem",
		AutoGenerate: true,
	}, []string{"192.168.1.20"})

# Authentication

Package auth resolves the caller of a request from a session access token
(Authorization: Bearer, the access cookie, or the token query parameter) or
an Authorization: Bot token, and gates administrator routes.

# Secrets

Package secrets resolves ${secret:name} references in credential
configuration from the environment or a secrets directory.
*/
package security

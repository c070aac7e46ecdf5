// Package types defines the error taxonomy shared by the gateway's HTTP
// surfaces and the JSON body clients receive for each kind:
//
//	{"error": {"message": "...", "type": "authentication_error", "code": "unauthorized"}}
//
// Handlers return a *GatewayError (or a sentinel such as ErrUnauthorized)
// and call WriteError at the boundary. Internal causes are logged by the
// caller, never serialized.
package types

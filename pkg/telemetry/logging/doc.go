// Package logging builds the process logger.
//
// The gateway logs through log/slog. Setup installs a JSON or text handler
// at the configured level as the slog default, and packages then call
// slog.Info / slog.Warn with key/value attributes. Request-scoped code uses
// FromContext to pick up the request ID set by the request ID middleware.
//
// Credentials never appear in logs. When a token must be referenced, pass
// it through RedactToken.
package logging

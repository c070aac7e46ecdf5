// Package middleware implements the admission pipeline every request passes
// through before routing.
//
// # Chain
//
// Outermost first:
//
//	Recovery → Logging → RequestID → RateLimit (+ counters) → CORS → router
//
// Rate limiting sits outside CORS so a rejected request costs no further
// work, and every request, admitted or not, is counted.
//
// # Rate limiting
//
// RateLimiter keeps one fixed one-second window per client key. The key is
// the first hop of X-Forwarded-For, or "local" when the header is absent.
// That header is client-controlled unless a trusted reverse proxy rewrites
// it; the server logs a warning at startup when none is declared.
//
// # CORS
//
// ResolveCORS picks one of two modes at startup. With configured origins
// (or a public URL) the policy is restrictive: only those origins plus the
// desktop client origins are echoed back, with credentials allowed. With
// neither, any origin is accepted and credentials are not.
//
// # Request ID
//
// RequestIDMiddleware reuses an inbound X-Request-ID or generates a UUID v4,
// stores it in the request context and echoes it in the response.
package middleware

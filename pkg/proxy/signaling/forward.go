package signaling

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"paracord-hq/gateway/pkg/proxy/types"
	"paracord-hq/gateway/pkg/telemetry/tracing"

	"go.opentelemetry.io/otel/trace"
)

// Headers that are never copied to the backend request.
var skipRequestHeaders = map[string]bool{
	"Host":       true,
	"Connection": true,
	"Upgrade":    true,
}

// Headers that are never copied back to the client.
var skipResponseHeaders = map[string]bool{
	"Transfer-Encoding": true,
	"Connection":        true,
}

// errBodyTooLarge is returned when the inbound body exceeds MaxBodyBytes.
var errBodyTooLarge = &types.GatewayError{
	Kind:    types.KindBadRequest,
	Message: "Request body too large",
	Code:    types.CodeRequestTooLarge,
}

// forward proxies a plain HTTP request. The body is buffered up to the cap
// before the backend is contacted, and the backend response is buffered
// before anything is written back.
func (p *Proxy) forward(w http.ResponseWriter, r *http.Request) {
	target := BuildTarget(p.BackendURL, p.Prefix, r, false)
	logTarget := redactTarget(target)

	ctx, span := p.Tracer.Start(r.Context(), "signaling.forward",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			tracing.AttrTarget.String(logTarget),
			tracing.AttrTransport.String("http"),
		),
	)
	defer span.End()

	body, err := readBody(r.Body, p.MaxBodyBytes)
	if err != nil {
		tracing.SetError(span, err)
		if err == errBodyTooLarge {
			_ = types.WriteError(w, errBodyTooLarge)
			return
		}
		_ = types.WriteError(w, types.New(types.KindBadRequest, "Failed to read request body", err))
		return
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, target, bytes.NewReader(body))
	if err != nil {
		tracing.SetError(span, err)
		_ = types.WriteError(w, types.New(types.KindBadRequest, "Invalid request", err))
		return
	}
	copyHeaders(req.Header, r.Header, skipRequestHeaders)
	p.Tracer.Inject(ctx, req.Header)

	resp, err := p.Client.Do(req)
	if err != nil {
		slog.Error("signaling proxy error", "target", logTarget, "error", err)
		tracing.SetError(span, err)
		_ = types.WriteError(w, types.New(types.KindBadGateway, "Upstream unavailable", err))
		return
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		slog.Error("failed to read signaling response", "target", logTarget, "error", err)
		tracing.SetError(span, err)
		_ = types.WriteError(w, types.New(types.KindBadGateway, "Upstream unavailable", err))
		return
	}

	span.SetAttributes(tracing.AttrStatus.Int(resp.StatusCode))

	copyHeaders(w.Header(), resp.Header, skipResponseHeaders)
	w.WriteHeader(resp.StatusCode)
	if _, err := w.Write(respBody); err != nil {
		slog.Debug("failed to write signaling response", "error", err)
	}
}

// readBody reads at most limit bytes. One byte past the limit is read to
// tell an exactly-full body apart from an oversized one.
func readBody(body io.Reader, limit int64) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	data, err := io.ReadAll(io.LimitReader(body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, errBodyTooLarge
	}
	return data, nil
}

// copyHeaders replaces each header src carries in dst. Values already set
// on dst under the same name, such as CORS or request id headers written by
// the admission chain, are dropped rather than doubled.
func copyHeaders(dst, src http.Header, skip map[string]bool) {
	for name, values := range src {
		if skip[http.CanonicalHeaderKey(name)] {
			continue
		}
		dst.Del(name)
		for _, v := range values {
			dst.Add(name, v)
		}
	}
}

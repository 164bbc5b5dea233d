// ABOUTME: HTTP transport with request logging and trace propagation
// ABOUTME: Logs method, path, status and latency for every outgoing call

package client

import (
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// loggingTransport logs each round trip with its request id
type loggingTransport struct {
	next http.RoundTripper
}

func (t *loggingTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	start := time.Now()
	requestID := r.Header.Get("X-Request-ID")

	slog.Debug("Request started",
		"request_id", requestID,
		"method", r.Method,
		"path", r.URL.Path,
	)

	resp, err := t.next.RoundTrip(r)
	if err != nil {
		slog.Info("Request failed",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
			"latency_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}

	slog.Info("Request completed",
		"request_id", requestID,
		"method", r.Method,
		"path", r.URL.Path,
		"status", resp.StatusCode,
		"latency_ms", time.Since(start).Milliseconds(),
	)
	return resp, nil
}

// NewTransport wraps base (http.DefaultTransport when nil) with request
// logging and OpenTelemetry context propagation.
func NewTransport(base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return otelhttp.NewTransport(&loggingTransport{next: base})
}

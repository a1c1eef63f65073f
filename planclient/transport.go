package planclient

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// LoggingTransport implements http.RoundTripper and logs every exchange at
// debug level. Bodies are not logged; exports can be large and binary.
type LoggingTransport struct {
	Transport http.RoundTripper
	Logger    *slog.Logger
}

// NewLoggingTransport wraps transport, or http.DefaultTransport when nil.
func NewLoggingTransport(transport http.RoundTripper, logger *slog.Logger) *LoggingTransport {
	if transport == nil {
		transport = http.DefaultTransport
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &LoggingTransport{Transport: transport, Logger: logger}
}

// RoundTrip implements the http.RoundTripper interface.
func (t *LoggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.Transport == nil {
		return nil, errors.New("transport cannot be nil")
	}
	t.Logger.Debug("outgoing request",
		"method", req.Method,
		"url", req.URL.String(),
		"if_none_match", req.Header.Get("If-None-Match"))

	start := time.Now()
	resp, err := t.Transport.RoundTrip(req)
	if err != nil {
		t.Logger.Debug("request failed", "url", req.URL.String(), "error", err)
		return nil, err
	}

	t.Logger.Debug("incoming response",
		"status", resp.StatusCode,
		"etag", resp.Header.Get("ETag"),
		"content_length", resp.ContentLength,
		"elapsed", time.Since(start))
	return resp, nil
}

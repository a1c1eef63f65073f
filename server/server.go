package server

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/cyp0633/termplan/export"
	"github.com/cyp0633/termplan/planner/holiday"
	"github.com/cyp0633/termplan/planner/recurrence"
	"github.com/cyp0633/termplan/server/storage"
)

const (
	// HTTP headers
	headerContentType = "Content-Type"
	headerETag        = "ETag"
	headerIfNoneMatch = "If-None-Match"
	headerDisposition = "Content-Disposition"

	// MIME types
	mimeTypeJSON = "application/json; charset=utf-8"

	defaultMaxBodyBytes = 1 << 20
)

// HandlerConfig contains configuration for the plan handler
type HandlerConfig struct {
	// CustomHeaders allows adding custom headers to responses
	CustomHeaders map[string]string

	// ICS controls calendar exports
	ICS export.ICSOptions

	// MaxBodyBytes caps PUT bodies
	MaxBodyBytes int64

	// Logger is the slog.Logger to use for logging
	// If nil, logging is disabled
	Logger *slog.Logger
}

// Option is a function that modifies HandlerConfig
type Option func(*HandlerConfig)

// WithCustomHeaders sets custom response headers
func WithCustomHeaders(headers map[string]string) Option {
	return func(c *HandlerConfig) {
		c.CustomHeaders = headers
	}
}

// WithICSOptions sets the calendar export options
func WithICSOptions(opts export.ICSOptions) Option {
	return func(c *HandlerConfig) {
		c.ICS = opts
	}
}

// WithMaxBodyBytes caps the size of uploaded plans
func WithMaxBodyBytes(n int64) Option {
	return func(c *HandlerConfig) {
		c.MaxBodyBytes = n
	}
}

// WithLogger sets the logger for the handler
func WithLogger(logger *slog.Logger) Option {
	return func(c *HandlerConfig) {
		c.Logger = logger
	}
}

// Handler serves plans from a storage backend. It builds a fresh session
// per request, so it is safe for concurrent use as long as the store is.
type Handler struct {
	config   HandlerConfig
	logger   *slog.Logger
	store    storage.Storage
	holidays *holiday.Registry
	engine   *recurrence.Engine
	mux      *http.ServeMux
}

// NewHandler creates a Handler. A nil registry means no holidays and a nil
// engine gets a default one.
func NewHandler(store storage.Storage, reg *holiday.Registry, eng *recurrence.Engine, opts ...Option) *Handler {
	config := HandlerConfig{ICS: export.DefaultICSOptions()}
	for _, opt := range opts {
		opt(&config)
	}
	// Set default logger if none provided
	if config.Logger == nil {
		config.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if config.MaxBodyBytes <= 0 {
		config.MaxBodyBytes = defaultMaxBodyBytes
	}
	if reg == nil {
		reg = holiday.Empty()
	}
	if eng == nil {
		eng = recurrence.NewEngine(recurrence.WithLogger(config.Logger))
	}

	h := &Handler{
		config:   config,
		logger:   config.Logger,
		store:    store,
		holidays: reg,
		engine:   eng,
		mux:      http.NewServeMux(),
	}
	h.mux.HandleFunc("GET /plans", h.handleList)
	h.mux.HandleFunc("GET /plans/{id}", h.handleGet)
	h.mux.HandleFunc("PUT /plans/{id}", h.handlePut)
	h.mux.HandleFunc("DELETE /plans/{id}", h.handleDelete)
	h.mux.HandleFunc("GET /plans/{id}/weeks", h.handleWeeks)
	h.mux.HandleFunc("GET /plans/{id}/export/{format}", h.handleExport)
	return h
}

// ServeHTTP implements the http.Handler interface
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.logger.Info("received request",
		"method", r.Method,
		"path", r.URL.Path,
		"remote_addr", r.RemoteAddr)

	// Add custom headers if configured
	for k, v := range h.config.CustomHeaders {
		w.Header().Set(k, v)
	}

	h.mux.ServeHTTP(w, r)
}

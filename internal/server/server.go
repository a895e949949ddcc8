// Package server provides the HTTP API server for chunkviz
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/shivavenkatesh/chunkviz/internal/chunking"
	"github.com/shivavenkatesh/chunkviz/internal/highlight"
	"github.com/shivavenkatesh/chunkviz/internal/mcptools"
	"github.com/shivavenkatesh/chunkviz/internal/pipeline"
	"github.com/shivavenkatesh/chunkviz/internal/reconstruct"
	"github.com/shivavenkatesh/chunkviz/internal/samples"
	"github.com/shivavenkatesh/chunkviz/pkg/types"
)

// bodySlack covers the JSON envelope around the text field
const bodySlack = 64 << 10

// bodyLimit bounds request bodies so that any text the pipeline would truncate
// still decodes. A rune is at most 6 bytes once JSON-escaped.
func bodyLimit(maxInputLength int) int64 {
	return 6*int64(maxInputLength) + bodySlack
}

// Server is the HTTP API server
type Server struct {
	svc     pipeline.Service
	config  Config
	logger  zerolog.Logger
	metrics *metrics
	server  *http.Server
}

// Config configures the server
type Config struct {
	Host            string
	Port            int
	EnableMCP       bool
	ShutdownTimeout time.Duration
	Version         string
	MaxInputLength  int // In runes, sizes the request body limit
}

// New creates a new server
func New(svc pipeline.Service, cfg Config, logger zerolog.Logger) *Server {
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 5 * time.Second
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}
	if cfg.MaxInputLength <= 0 {
		cfg.MaxInputLength = pipeline.DefaultConfig().MaxInputLength
	}
	m := newMetrics(svc)
	return &Server{
		svc:     &instrumentedService{Service: svc, metrics: m},
		config:  cfg,
		logger:  logger,
		metrics: m,
	}
}

// Handler builds the routed, instrumented handler
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// API routes
	mux.HandleFunc("/chunks", s.handleChunks)
	mux.HandleFunc("/separators", s.handleSeparators)
	mux.HandleFunc("/content-types", s.handleContentTypes)
	mux.HandleFunc("/palette.css", s.handlePalette)
	mux.HandleFunc("/samples", s.handleSamples)
	mux.HandleFunc("/samples/", s.handleSampleByName)
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", s.metrics.handler())

	if s.config.EnableMCP {
		mcpServer := mcptools.NewServer(s.svc, s.config.Version)
		mux.Handle("/mcp", mcpserver.NewStreamableHTTPServer(mcpServer,
			mcpserver.WithEndpointPath("/mcp"),
		))
	}

	return s.requestMiddleware(corsMiddleware(mux))
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.config.Host, s.config.Port),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	err := s.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown() error {
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// handleChunks handles POST /chunks
func (s *Server) handleChunks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req types.ComputeRequest
	body := http.MaxBytesReader(w, r.Body, bodyLimit(s.config.MaxInputLength))
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, fmt.Sprintf("Request body exceeds %d bytes", tooLarge.Limit), http.StatusRequestEntityTooLarge)
			return
		}
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	res, err := s.svc.Compute(r.Context(), req)
	if err != nil {
		writeError(w, err.Error(), statusFor(err))
		return
	}

	writeJSON(w, res, http.StatusOK)
}

// handleSeparators handles GET /separators?content_type=
func (s *Server) handleSeparators(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ct := types.ContentType(r.URL.Query().Get("content_type"))
	seps, err := s.svc.Separators(ct)
	if err != nil {
		writeError(w, err.Error(), statusFor(err))
		return
	}
	if ct == "" {
		ct = s.svc.Defaults().ContentType
	}

	writeJSON(w, map[string]any{"content_type": ct, "separators": seps}, http.StatusOK)
}

// handleContentTypes handles GET /content-types
func (s *Server) handleContentTypes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, map[string][]types.ContentType{"content_types": s.svc.ContentTypes()}, http.StatusOK)
}

// handlePalette handles GET /palette.css
func (s *Server) handlePalette(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	io.WriteString(w, highlight.StyleSheet())
}

// handleSamples handles GET /samples
func (s *Server) handleSamples(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, map[string][]string{"samples": samples.Names()}, http.StatusOK)
}

// handleSampleByName handles GET /samples/:name
func (s *Server) handleSampleByName(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	name := strings.TrimPrefix(r.URL.Path, "/samples/")
	sample, err := samples.Get(name)
	if err != nil {
		writeError(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, sample, http.StatusOK)
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok", "version": s.config.Version}, http.StatusOK)
}

// statusFor maps pipeline errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, chunking.ErrInvalidParameter):
		return http.StatusBadRequest
	case errors.Is(err, reconstruct.ErrReconstructionMismatch):
		return http.StatusInternalServerError
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, data any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response
func writeError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, map[string]string{"error": message}, status)
}

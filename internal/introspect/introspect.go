// Package introspect provides a lightweight HTTP API for runtime
// inspection of a built feature-extraction model: which processors are
// registered, how many feature ids and entity types they allocated, and
// the running process's build/inference metrics.
//
// Endpoints:
//
//	GET /status   - model summary (processor list, feature/entity counts)
//	GET /metrics  - build and inference counters
//
// The server is plain-text HTTP/2 (h2c) rather than TLS — introspection
// is meant for same-host or trusted-network access, so there is no
// certificate to manage.
package introspect

import (
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"nerfeatures/internal/features"
	"nerfeatures/internal/metrics"
)

// Server is the introspection API server.
type Server struct {
	model     *features.Model
	metrics   *metrics.Metrics
	startTime time.Time
	token     string // bearer token for auth; empty = no auth
	bindAddr  string
	port      int
}

// New creates an introspection server for model, reporting through m.
// token, if non-empty, requires a matching Bearer Authorization header.
func New(model *features.Model, m *metrics.Metrics, bindAddr string, port int, token string) *Server {
	s := &Server{
		model:     model,
		metrics:   m,
		startTime: time.Now(),
		token:     token,
		bindAddr:  bindAddr,
		port:      port,
	}
	if s.token != "" {
		log.Printf("[INTROSPECT] Bearer token authentication enabled")
	}
	return s
}

// Handler returns the HTTP handler for the introspection API, wrapped so
// it also serves HTTP/2 cleartext (h2c) requests on the same mux.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/status", s.handleStatus)
	mux.HandleFunc("/metrics", s.handleMetrics)
	return h2c.NewHandler(s.authMiddleware(mux), &http2.Server{
		MaxConcurrentStreams: 250,
		IdleTimeout:          90 * time.Second,
	})
}

// authMiddleware checks for a valid Bearer token if one is configured.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.token == "" {
			next.ServeHTTP(w, r)
			return
		}
		auth := r.Header.Get("Authorization")
		const prefix = "Bearer "
		if !strings.HasPrefix(auth, prefix) ||
			subtle.ConstantTimeCompare([]byte(strings.TrimSpace(auth[len(prefix):])), []byte(s.token)) != 1 {
			log.Printf("[INTROSPECT] Unauthorized access attempt from %s to %s", r.RemoteAddr, r.URL.Path)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	type response struct {
		Status        string   `json:"status"`
		Uptime        string   `json:"uptime"`
		TotalFeatures int      `json:"totalFeatures"`
		ProcessorCount int     `json:"processorCount"`
		Processors    []string `json:"processors"`
		EntityTypes   int      `json:"entityTypeCount"`
	}

	resp := response{
		Status:        "ready",
		Uptime:        time.Since(s.startTime).Round(time.Second).String(),
		TotalFeatures: s.model.TotalFeatures,
	}
	for _, p := range s.model.Processors {
		resp.Processors = append(resp.Processors, p.Name())
	}
	resp.ProcessorCount = len(resp.Processors)
	if s.model.EntityTypes != nil {
		resp.EntityTypes = len(s.model.EntityTypes.Names())
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	if s.metrics == nil {
		http.Error(w, "metrics not enabled", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, s.metrics.Snapshot())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[INTROSPECT] JSON encode error: %v", err)
	}
}

// ListenAndServe starts the introspection HTTP server.
func (s *Server) ListenAndServe() error {
	addr := fmt.Sprintf("%s:%d", s.bindAddr, s.port)
	log.Printf("[INTROSPECT] Listening on %s", addr)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}

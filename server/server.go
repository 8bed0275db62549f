// Package server exposes a plugin catalog over HTTP for the viewer
// shell. The shell populates its menus from the list endpoints and
// dispatches user actions through the invoke endpoints; invocation
// failures come back as structured errors tied to the attempted action,
// never as a dead server.
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/lumen-labs/lumenplug/host"
	"github.com/lumen-labs/lumenplug/journal"
)

// ServerConfig configures a Server instance.
type ServerConfig struct {
	Catalog    *host.Catalog
	Journal    journal.Store
	CORSOrigin string
	MaxBody    int64
	Logger     *slog.Logger
}

// Server is the contribution HTTP API server.
type Server struct {
	catalog    *host.Catalog
	journal    journal.Store
	corsOrigin string
	maxBody    int64
	logger     *slog.Logger
}

// NewServer creates a new Server with the given configuration.
func NewServer(cfg ServerConfig) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	corsOrigin := cfg.CORSOrigin
	if corsOrigin == "" {
		corsOrigin = "*"
	}
	maxBody := cfg.MaxBody
	if maxBody <= 0 {
		maxBody = 1 << 20 // 1 MB default
	}
	return &Server{
		catalog:    cfg.Catalog,
		journal:    cfg.Journal,
		corsOrigin: corsOrigin,
		maxBody:    maxBody,
		logger:     logger,
	}
}

// Handler returns an http.Handler with all routes and middleware wired.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)

	var handler http.Handler = mux
	handler = s.corsMiddleware(handler)
	handler = s.maxBodyMiddleware(handler)

	return handler
}

// RegisterRoutes mounts contribution API routes onto an existing mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/plugins", s.handleListPlugins)
	mux.HandleFunc("GET /api/commands", s.handleListCommands)
	mux.HandleFunc("POST /api/commands/{id}/invoke", s.handleInvokeCommand)
	mux.HandleFunc("GET /api/sample-data", s.handleListSampleData)
	mux.HandleFunc("POST /api/sample-data/{key}/load", s.handleLoadSampleData)
	mux.HandleFunc("GET /api/widgets", s.handleListWidgets)
	mux.HandleFunc("POST /api/widgets/{id}/create", s.handleCreateWidget)
	mux.HandleFunc("GET /api/journal", s.handleListJournal)
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", s.corsOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) maxBodyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxBody)
		next.ServeHTTP(w, r)
	})
}

// --- JSON helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// apiError is the standard error envelope.
type apiError struct {
	Error apiErrorBody `json:"error"`
}

type apiErrorBody struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

func writeError(w http.ResponseWriter, status int, code, message string, details ...string) {
	body := apiError{
		Error: apiErrorBody{
			Code:    code,
			Message: message,
		},
	}
	if len(details) > 0 {
		body.Error.Details = details
	}
	writeJSON(w, status, body)
}

package rest

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
)

// Server represents the REST API server
type Server struct {
	port    string
	server  *http.Server
	handler *Handler
}

// NewServer creates a new REST API server
func NewServer(port string, handler *Handler, corsOrigins []string) *Server {
	return &Server{
		port:    port,
		handler: handler,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%s", port),
			Handler: NewRouter(handler, corsOrigins),
		},
	}
}

// NewRouter wires every route of h
func NewRouter(h *Handler, corsOrigins []string) http.Handler {
	router := mux.NewRouter()

	router.Use(RecoveryMiddleware)
	router.Use(LoggingMiddleware)

	// Health check
	router.HandleFunc("/health", h.HealthCheck).Methods("GET")

	// API v1 routes
	api := router.PathPrefix("/api/v1").Subrouter()

	// Catalog
	api.HandleFunc("/positions", h.GetPositions).Methods("GET")
	api.HandleFunc("/positions/{code}/players", h.GetRoster).Methods("GET")

	// Players
	api.HandleFunc("/players/{name}/similar", h.GetSimilarPlayers).Methods("GET")
	api.HandleFunc("/players/{name}/traits", h.GetUniqueTraits).Methods("GET")
	api.HandleFunc("/players/{name}/compare/{other}", h.GetComparison).Methods("GET")
	api.HandleFunc("/players/{name}/info", h.GetPlayerInfo).Methods("GET")

	// Session
	api.HandleFunc("/session", h.CreateSelection).Methods("POST")
	api.HandleFunc("/session", h.GetSelection).Methods("GET")

	// CORS wraps the router so preflight requests reach it without a matching route
	return CORSMiddleware(corsOrigins)(router)
}

// Start starts the REST API server
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

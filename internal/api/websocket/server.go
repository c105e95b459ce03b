package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/fortuna/scout/internal/session"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Server streams session changes to websocket clients
type Server struct {
	server  *http.Server
	hub     *Hub
	manager *session.Manager
}

// NewServer creates a websocket server subscribed to m
func NewServer(m *session.Manager) *Server {
	s := &Server{
		hub:     NewHub(),
		manager: m,
	}

	m.OnUpdate(func(snap session.Snapshot) {
		s.hub.Broadcast(MessageTypeUpdate, snap)
	})
	m.OnResult(func(ev session.ResultEvent) {
		s.hub.Broadcast(MessageTypeResult, ev)
	})

	return s
}

// Handler returns the websocket routes
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws/session", s.handleSession)
	mux.HandleFunc("/ws/health", s.handleHealth)
	return mux
}

// Start runs the hub and listens on port until Shutdown
func (s *Server) Start(ctx context.Context, port string) error {
	go s.hub.Run(ctx)

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%s", port),
		Handler: s.Handler(),
	}

	log.Printf("WebSocket server listening on :%s", port)
	return s.server.ListenAndServe()
}

// handleSession upgrades the connection and streams session messages.
// A new client first receives the current selection, if there is one.
func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] failed to upgrade connection: %v", err)
		return
	}

	client := NewClient(uuid.NewString(), conn, s.hub)

	if snap, ok := s.manager.Current(); ok {
		client.TrySend(ServerMessage{Type: MessageTypeSnapshot, Payload: snap, Timestamp: time.Now()})
	}

	s.hub.Register(client)

	go client.writePump()
	go client.readPump()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "healthy",
		"clients": s.hub.ClientCount(),
		"metrics": s.hub.Metrics(),
	})
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

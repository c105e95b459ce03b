package websocket

import "time"

// Message types sent to clients
const (
	MessageTypeSnapshot  = "session.snapshot"
	MessageTypeUpdate    = "session.update"
	MessageTypeResult    = "enrichment.result"
	MessageTypeHeartbeat = "heartbeat"
	MessageTypeError     = "error"
)

// ServerMessage is the envelope for every message sent to a client
type ServerMessage struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

// ClientMessage is a message received from a client
type ClientMessage struct {
	Type string `json:"type"`
}

// ErrorMessage is the payload of an error message
type ErrorMessage struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ConnectionStats describes one client connection
type ConnectionStats struct {
	ClientID         string    `json:"client_id"`
	ConnectedAt      time.Time `json:"connected_at"`
	MessagesSent     int64     `json:"messages_sent"`
	MessagesReceived int64     `json:"messages_received"`
	BufferSize       int       `json:"buffer_size"`
	BufferUsed       int       `json:"buffer_used"`
}

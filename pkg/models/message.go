package models

import (
	"encoding/json"
	"time"
)

// Message types for WebSocket communication
const (
	MessageTypeOpportunity = "opportunity"
	MessageTypeSubscribe   = "subscribe"
	MessageTypeUnsubscribe = "unsubscribe"
	MessageTypeHeartbeat   = "heartbeat"
	MessageTypeError       = "error"
)

// ClientMessage represents a message from client to server
type ClientMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ServerMessage represents a message from server to client
type ServerMessage struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// SubscriptionFilter represents client subscription preferences
type SubscriptionFilter struct {
	HedgeTypes   []string `json:"hedge_types,omitempty"`    // Filter by hedge type
	Sports       []string `json:"sports,omitempty"`         // Filter by sport keys
	Events       []string `json:"events,omitempty"`         // Filter by event IDs
	MinProfitPct *float64 `json:"min_profit_pct,omitempty"` // Minimum profit percentage
}

// ConnectionStats represents connection statistics
type ConnectionStats struct {
	ClientID          string    `json:"client_id"`
	ConnectedAt       time.Time `json:"connected_at"`
	MessagesSent      int64     `json:"messages_sent"`
	MessagesReceived  int64     `json:"messages_received"`
	LastMessageAt     time.Time `json:"last_message_at"`
	BufferSize        int       `json:"buffer_size"`
	BufferUtilization float64   `json:"buffer_utilization"` // Percentage
}

// ErrorMessage represents an error message
type ErrorMessage struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse is the body of every failed HTTP request
type ErrorResponse struct {
	Error string `json:"error"`
	Hint  string `json:"hint,omitempty"`
}

// HubMetrics reports feed activity
type HubMetrics struct {
	ActiveClients     int   `json:"active_clients"`
	TotalConnections  int64 `json:"total_connections"`
	TotalMessages     int64 `json:"total_messages"`
	DroppedClients    int64 `json:"dropped_clients"`
	BroadcastCapacity int   `json:"broadcast_capacity"`
	BroadcastUsage    int   `json:"broadcast_usage"`
}

// ScannerMetrics reports snapshot scanning activity
type ScannerMetrics struct {
	Enabled              bool       `json:"enabled"`
	SnapshotsProcessed   int64      `json:"snapshots_processed"`
	SnapshotsRejected    int64      `json:"snapshots_rejected"`
	OpportunitiesFound   int64      `json:"opportunities_found"`
	DuplicatesSuppressed int64      `json:"duplicates_suppressed"`
	PublishErrors        int64      `json:"publish_errors"`
	LastSnapshotAt       *time.Time `json:"last_snapshot_at,omitempty"`
}

// MetricsResponse combines feed and scanner metrics
type MetricsResponse struct {
	Hub     HubMetrics     `json:"hub"`
	Scanner ScannerMetrics `json:"scanner"`
}

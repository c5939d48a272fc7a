package hub

import (
	"context"
	"sync"
	"time"

	"github.com/XavierBriggs/fortuna/services/hedge-calculator/internal/client"
	"github.com/XavierBriggs/fortuna/services/hedge-calculator/pkg/models"
	"github.com/rs/zerolog"
)

// Hub maintains the set of active clients and broadcasts opportunities to them
type Hub struct {
	// Registered clients
	clients   map[*client.Client]bool
	clientsMu sync.RWMutex

	// Opportunities from the scanner
	broadcast chan models.Opportunity

	// Register requests from clients
	register chan *client.Client

	// Unregister requests from clients
	unregister chan *client.Client

	// Closed when Run returns
	done chan struct{}

	log zerolog.Logger

	// Metrics
	totalConnections int64
	totalMessages    int64
	droppedClients   int64
	metricsMu        sync.Mutex
}

// NewHub creates a new Hub instance
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*client.Client]bool),
		broadcast:  make(chan models.Opportunity, 1000),
		register:   make(chan *client.Client),
		unregister: make(chan *client.Client),
		done:       make(chan struct{}),
		log:        logger.With().Str("component", "hub").Logger(),
	}
}

// Run starts the hub's main loop and blocks until ctx is cancelled
func (h *Hub) Run(ctx context.Context) {
	h.log.Info().Msg("hub started")
	defer close(h.done)

	go h.reportMetrics(ctx)

	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return

		case c := <-h.register:
			h.registerClient(c)

		case c := <-h.unregister:
			h.unregisterClient(c)

		case opp := <-h.broadcast:
			h.broadcastOpportunity(opp)
		}
	}
}

// Register adds a client to the hub. A client registered after shutdown is
// closed immediately.
func (h *Hub) Register(c *client.Client) {
	select {
	case h.register <- c:
	case <-h.done:
		c.Close()
	}
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(c *client.Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Broadcast queues an opportunity for every matching client. It never blocks;
// when the queue is full the opportunity is dropped.
func (h *Hub) Broadcast(opp models.Opportunity) {
	select {
	case h.broadcast <- opp:
	default:
		h.log.Warn().Str("opportunity_id", opp.ID).Msg("broadcast buffer full, dropping opportunity")
	}
}

// registerClient adds a client to the active clients map
func (h *Hub) registerClient(c *client.Client) {
	h.clientsMu.Lock()
	h.clients[c] = true
	total := len(h.clients)
	h.clientsMu.Unlock()

	h.metricsMu.Lock()
	h.totalConnections++
	h.metricsMu.Unlock()

	h.log.Info().Str("client_id", c.ID).Int("total", total).Msg("client connected")
}

// unregisterClient removes a client from the active clients map
func (h *Hub) unregisterClient(c *client.Client) {
	h.clientsMu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
	}
	total := len(h.clients)
	h.clientsMu.Unlock()

	if ok {
		c.Close()
		h.log.Info().Str("client_id", c.ID).Int("total", total).Msg("client disconnected")
	}
}

// broadcastOpportunity sends an opportunity to all clients whose filter matches
func (h *Hub) broadcastOpportunity(opp models.Opportunity) {
	h.clientsMu.RLock()
	clients := make([]*client.Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.clientsMu.RUnlock()

	message := models.ServerMessage{
		Type:      models.MessageTypeOpportunity,
		Payload:   opp,
		Timestamp: time.Now(),
	}

	sent := 0
	for _, c := range clients {
		if !c.MatchesFilter(opp) {
			continue
		}

		if c.TrySend(message) {
			sent++
			continue
		}

		// Client buffer full, they are too slow
		h.log.Warn().Str("client_id", c.ID).Msg("client buffer full, disconnecting")
		h.metricsMu.Lock()
		h.droppedClients++
		h.metricsMu.Unlock()
		h.unregisterClient(c)
	}

	if sent > 0 {
		h.metricsMu.Lock()
		h.totalMessages++
		h.metricsMu.Unlock()
	}
}

// GetMetrics returns hub metrics
func (h *Hub) GetMetrics() models.HubMetrics {
	h.clientsMu.RLock()
	activeClients := len(h.clients)
	h.clientsMu.RUnlock()

	h.metricsMu.Lock()
	defer h.metricsMu.Unlock()

	return models.HubMetrics{
		ActiveClients:     activeClients,
		TotalConnections:  h.totalConnections,
		TotalMessages:     h.totalMessages,
		DroppedClients:    h.droppedClients,
		BroadcastCapacity: cap(h.broadcast),
		BroadcastUsage:    len(h.broadcast),
	}
}

// GetClientCount returns the number of active clients
func (h *Hub) GetClientCount() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}

// shutdown closes all client connections
func (h *Hub) shutdown() {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()

	h.log.Info().Int("active_clients", len(h.clients)).Msg("shutting down hub")

	for c := range h.clients {
		c.Close()
		delete(h.clients, c)
	}
}

// reportMetrics periodically logs hub metrics
func (h *Hub) reportMetrics(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m := h.GetMetrics()
			h.log.Info().
				Int("clients", m.ActiveClients).
				Int64("total_connections", m.TotalConnections).
				Int64("messages", m.TotalMessages).
				Msg("hub metrics")
		}
	}
}

// Package websocket implements the live feed: a hub that fans every
// accepted sample out to all connected dashboard viewers.
package websocket

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/SeniorCareDevice/seniorcare-v6/internal/metrics"
	"github.com/SeniorCareDevice/seniorcare-v6/internal/store"
	"github.com/SeniorCareDevice/seniorcare-v6/internal/telemetry"
	"github.com/SeniorCareDevice/seniorcare-v6/pkg/logging"
)

// Message types pushed to viewers.
const (
	MessageTypeSnapshot = "snapshot"
	MessageTypeSample   = "sample"
)

// SnapshotMessage is the one-time initial message a viewer receives on
// connect: the current sample (null before first ingest) plus the
// retained history, newest first.
type SnapshotMessage struct {
	Type    string             `json:"type"`
	Current *telemetry.Sample  `json:"current"`
	History []telemetry.Sample `json:"history"`
}

// SampleMessage carries one live sample to all viewers.
type SampleMessage struct {
	Type   string           `json:"type"`
	Sample telemetry.Sample `json:"sample"`
}

// broadcastEvent pairs a sample with its store sequence number so the hub
// can suppress pushes already covered by a viewer's initial snapshot.
type broadcastEvent struct {
	sample telemetry.Sample
	seq    uint64
}

// Hub maintains the set of connected viewers and broadcasts every
// accepted sample to them. Registration, unregistration and broadcast all
// serialize through Run, which is what keeps snapshot delivery and live
// pushes ordered per viewer.
type Hub struct {
	store      *store.Store
	clients    map[*Client]bool
	broadcast  chan broadcastEvent
	register   chan *Client
	unregister chan *Client
	logger     logging.Logger
	metrics    *metrics.Metrics
	mutex      sync.RWMutex
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// NewHub creates a hub reading subscribe-time snapshots from st.
// m may be nil (tests).
func NewHub(st *store.Store, logger logging.Logger, m *metrics.Metrics) *Hub {
	return &Hub{
		store:      st,
		clients:    make(map[*Client]bool),
		broadcast:  make(chan broadcastEvent, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger,
		metrics:    m,
	}
}

// Run starts the hub's main loop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case ev := <-h.broadcast:
			h.broadcastSample(ev)
		}
	}
}

// registerClient adds a viewer and queues its initial snapshot. The
// snapshot sequence number is remembered so later live pushes for samples
// the snapshot already contains are skipped.
func (h *Hub) registerClient(client *Client) {
	current, history, seq := h.store.Snapshot()
	client.lastSeq = seq

	h.mutex.Lock()
	h.clients[client] = true
	count := len(h.clients)
	h.mutex.Unlock()

	msg := SnapshotMessage{
		Type:    MessageTypeSnapshot,
		Current: current,
		History: history,
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		h.logger.WithError(err).Error("Failed to marshal snapshot message")
	} else {
		client.queue(payload)
		if h.metrics != nil {
			h.metrics.HubMessages.WithLabelValues(MessageTypeSnapshot).Inc()
		}
	}

	if h.metrics != nil {
		h.metrics.HubConnections.WithLabelValues().Set(float64(count))
	}
	h.logger.WithFields(logging.Fields{
		"client_id":    client.id,
		"client_count": count,
	}).Info("Viewer connected")
}

// unregisterClient removes a viewer; repeated calls for the same viewer
// are a no-op.
func (h *Hub) unregisterClient(client *Client) {
	h.mutex.Lock()
	_, ok := h.clients[client]
	if ok {
		delete(h.clients, client)
		close(client.send)
	}
	count := len(h.clients)
	h.mutex.Unlock()

	if !ok {
		return
	}

	if h.metrics != nil {
		h.metrics.HubConnections.WithLabelValues().Set(float64(count))
	}
	h.logger.WithFields(logging.Fields{
		"client_id":    client.id,
		"client_count": count,
		"connected":    time.Since(client.connectedAt).String(),
	}).Info("Viewer disconnected")
}

// broadcastSample delivers one sample to every viewer. Delivery is
// best-effort per viewer: a slow viewer is skipped for this message and a
// dead one exits through its pump goroutines.
func (h *Hub) broadcastSample(ev broadcastEvent) {
	msg := SampleMessage{
		Type:   MessageTypeSample,
		Sample: ev.sample,
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		h.logger.WithError(err).Error("Failed to marshal sample message")
		return
	}

	h.mutex.RLock()
	defer h.mutex.RUnlock()

	for client := range h.clients {
		// Already covered by this viewer's initial snapshot.
		if ev.seq <= client.lastSeq {
			continue
		}
		client.lastSeq = ev.seq

		select {
		case client.send <- payload:
			if h.metrics != nil {
				h.metrics.HubMessages.WithLabelValues(MessageTypeSample).Inc()
			}
		default:
			if h.metrics != nil {
				h.metrics.BroadcastDrops.WithLabelValues("slow_viewer").Inc()
			}
			h.logger.WithField("client_id", client.id).Warn("Viewer send buffer full, skipping sample")
		}
	}
}

// Publish queues a sample for fan-out to all viewers. It never blocks the
// caller: if the hub cannot keep up the sample is dropped from the live
// feed (viewers catch up via the history endpoint).
func (h *Hub) Publish(sample telemetry.Sample, seq uint64) {
	select {
	case h.broadcast <- broadcastEvent{sample: sample, seq: seq}:
	default:
		if h.metrics != nil {
			h.metrics.BroadcastDrops.WithLabelValues("queue_full").Inc()
		}
		h.logger.Warn("Broadcast queue full, dropping sample")
	}
}

// ClientCount returns the number of connected viewers.
func (h *Hub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// GetStats returns hub statistics for the health endpoint.
func (h *Hub) GetStats() map[string]interface{} {
	return map[string]interface{}{
		"connected_viewers": h.ClientCount(),
	}
}

// ServeWS upgrades an HTTP request to a WebSocket viewer session.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Error("Failed to upgrade WebSocket connection")
		return
	}

	client := newClient(h, conn)
	h.register <- client

	go client.writePump()
	go client.readPump()
}

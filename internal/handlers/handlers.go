// Package handlers wires the HTTP surface: sample ingestion from the
// device, read-only queries for viewers, and the WebSocket upgrade.
package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SeniorCareDevice/seniorcare-v6/internal/metrics"
	"github.com/SeniorCareDevice/seniorcare-v6/internal/store"
	"github.com/SeniorCareDevice/seniorcare-v6/internal/telemetry"
	"github.com/SeniorCareDevice/seniorcare-v6/internal/websocket"
	"github.com/SeniorCareDevice/seniorcare-v6/pkg/logging"
)

// ErrorResponse is the JSON error envelope for client errors and 404s.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// IngestResponse acknowledges a recorded sample.
type IngestResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Handlers contains the HTTP handlers for the service
type Handlers struct {
	store   *store.Store
	hub     *websocket.Hub
	logger  logging.Logger
	metrics *metrics.Metrics
}

// New creates a new handlers instance. m may be nil (tests).
func New(st *store.Store, hub *websocket.Hub, logger logging.Logger, m *metrics.Metrics) *Handlers {
	return &Handlers{
		store:   st,
		hub:     hub,
		logger:  logger,
		metrics: m,
	}
}

// HandleIngest accepts one telemetry record from the device, normalizes
// and records it, and queues the fan-out. The ack does not wait for
// delivery to viewers. Only a structurally unparseable body fails;
// missing sensor fields never do.
func (h *Handlers) HandleIngest(c *gin.Context) {
	start := time.Now()

	var raw telemetry.RawSample
	if err := c.ShouldBindJSON(&raw); err != nil {
		if h.metrics != nil {
			h.metrics.SamplesIngested.WithLabelValues("rejected").Inc()
		}
		h.logger.WithError(err).Warn("Rejected unparseable sample payload")
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_payload",
			Message: "Request body is not a valid sample record",
		})
		return
	}

	sample := telemetry.Normalize(raw, time.Now())
	seq := h.store.Record(sample)
	h.hub.Publish(sample, seq)

	if h.metrics != nil {
		h.metrics.SamplesIngested.WithLabelValues("accepted").Inc()
		h.metrics.IngestDuration.WithLabelValues().Observe(time.Since(start).Seconds())
	}

	c.JSON(http.StatusOK, IngestResponse{
		Status:  "success",
		Message: "Data received",
	})
}

// HandleCurrent returns the latest sample, or an empty object before the
// first ingest.
func (h *Handlers) HandleCurrent(c *gin.Context) {
	sample, ok := h.store.Current()
	if !ok {
		c.JSON(http.StatusOK, gin.H{})
		return
	}
	c.JSON(http.StatusOK, sample)
}

// HandleHistory returns up to ?limit=N retained samples, newest first.
// An absent or unparseable limit means the full retained history.
func (h *Handlers) HandleHistory(c *gin.Context) {
	limit := -1
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "invalid_limit",
				Message: "limit must be an integer",
			})
			return
		}
		if parsed < 0 {
			parsed = 0
		}
		limit = parsed
	}

	c.JSON(http.StatusOK, h.store.History(limit))
}

// HandleWebSocket serves WebSocket connections for the live feed
func (h *Handlers) HandleWebSocket(c *gin.Context) {
	h.hub.ServeWS(c.Writer, c.Request)
}

// HandleNotFound provides a custom 404 handler
func (h *Handlers) HandleNotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, ErrorResponse{
		Error:   "not_found",
		Message: "Endpoint not found",
	})
}

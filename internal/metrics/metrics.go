package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds all Prometheus metrics for the SeniorCare service
type Metrics struct {
	// WebSocket hub metrics
	HubConnections *prometheus.GaugeVec
	HubMessages    *prometheus.CounterVec
	BroadcastDrops *prometheus.CounterVec

	// Ingest metrics
	SamplesIngested *prometheus.CounterVec
	IngestDuration  *prometheus.HistogramVec
}

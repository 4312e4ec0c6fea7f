package main

import (
	"strconv"

	"github.com/SeniorCareDevice/seniorcare-v6/internal/handlers"
	"github.com/SeniorCareDevice/seniorcare-v6/internal/metrics"
	"github.com/SeniorCareDevice/seniorcare-v6/internal/store"
	"github.com/SeniorCareDevice/seniorcare-v6/internal/websocket"
	"github.com/SeniorCareDevice/seniorcare-v6/pkg/config"
	"github.com/SeniorCareDevice/seniorcare-v6/pkg/logging"
	"github.com/SeniorCareDevice/seniorcare-v6/pkg/monitoring"
	"github.com/SeniorCareDevice/seniorcare-v6/pkg/server"
	"github.com/SeniorCareDevice/seniorcare-v6/pkg/version"
)

func main() {
	// Setup logger
	logger := logging.NewLoggerWithService("seniorcare")

	// Load environment variables
	config.LoadEnv(logger)

	logger.Info("Starting SeniorCare telemetry service")

	// Setup monitoring
	healthChecker := monitoring.NewHealthChecker("seniorcare", version.Version)
	metricsCollector := monitoring.NewMetricsCollector("seniorcare", version.Version, version.GitCommit)

	// Create custom metrics
	serviceMetrics := &metrics.Metrics{
		HubConnections:  metricsCollector.NewGauge("websocket_hub_connections_active", "Active WebSocket viewer connections", []string{}),
		HubMessages:     metricsCollector.NewCounter("websocket_hub_messages_total", "Messages pushed to viewers", []string{"type"}),
		BroadcastDrops:  metricsCollector.NewCounter("broadcast_drops_total", "Samples skipped during fan-out", []string{"reason"}),
		SamplesIngested: metricsCollector.NewCounter("samples_ingested_total", "Telemetry samples received", []string{"status"}),
		IngestDuration:  metricsCollector.NewHistogram("ingest_duration_seconds", "Sample ingestion latency", []string{}, nil),
	}

	// History store and broadcast hub
	capacity := config.GetEnvInt("HISTORY_CAPACITY", store.DefaultCapacity)
	sampleStore := store.New(capacity)

	hub := websocket.NewHub(sampleStore, logger, serviceMetrics)
	go hub.Run()

	serviceHandlers := handlers.New(sampleStore, hub, logger, serviceMetrics)

	// Health checks
	healthChecker.AddCheck("hub", monitoring.GaugeHealthCheck("connected_viewers", hub.ClientCount))
	healthChecker.AddCheck("config", monitoring.ConfigurationHealthCheck(map[string]string{
		"HISTORY_CAPACITY": strconv.Itoa(sampleStore.Capacity()),
	}))

	// Setup router with unified monitoring
	router := server.SetupServiceRouter(logger, "seniorcare", healthChecker, metricsCollector)

	router.POST("/ingest", serviceHandlers.HandleIngest)
	router.GET("/current", serviceHandlers.HandleCurrent)
	router.GET("/history", serviceHandlers.HandleHistory)
	router.GET("/ws", serviceHandlers.HandleWebSocket)
	router.NoRoute(serviceHandlers.HandleNotFound)

	// Start server with graceful shutdown
	serverConfig := server.DefaultConfig("seniorcare", "3000")
	if err := server.Start(serverConfig, router, logger); err != nil {
		logger.WithError(err).Fatal("Server startup failed")
	}
}

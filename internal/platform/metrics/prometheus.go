package metrics

import (
	"net/http"

	"github.com/mapmarket/reaction-service/internal/platform/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Manager holds the custom Prometheus metrics for the reaction handlers.
type Manager struct {
	Registry *prometheus.Registry

	EventsProcessedTotal *prometheus.CounterVec
	HandlerErrorsTotal   *prometheus.CounterVec
	HandlerLatency       *prometheus.HistogramVec
	NotificationsSent    *prometheus.CounterVec
	DerivativesProduced  prometheus.Counter
	CleanupDeletedTotal  *prometheus.CounterVec
}

// NewManager initializes and registers the service metrics on a private
// registry so nothing else in the process can collide with them.
func NewManager(serviceName string) *Manager {
	registry := prometheus.NewRegistry()

	eventsProcessed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "events_processed_total",
		Help:      "Total number of document-change events processed, by handler.",
	}, []string{"handler"})

	handlerErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "handler_errors_total",
		Help:      "Total number of handler failures, by handler.",
	}, []string{"handler"})

	handlerLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: serviceName,
		Name:      "handler_duration_seconds",
		Help:      "Handler execution time, by handler.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"handler"})

	notificationsSent := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "notifications_sent_total",
		Help:      "Push and email notifications accepted by the transport, by channel.",
	}, []string{"channel"})

	derivativesProduced := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "image_derivatives_produced_total",
		Help:      "Total number of image derivatives uploaded.",
	})

	cleanupDeleted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "cleanup_deleted_total",
		Help:      "Items removed by the scheduled sweeps, by job.",
	}, []string{"job"})

	registry.MustRegister(
		eventsProcessed,
		handlerErrors,
		handlerLatency,
		notificationsSent,
		derivativesProduced,
		cleanupDeleted,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)

	return &Manager{
		Registry:             registry,
		EventsProcessedTotal: eventsProcessed,
		HandlerErrorsTotal:   handlerErrors,
		HandlerLatency:       handlerLatency,
		NotificationsSent:    notificationsSent,
		DerivativesProduced:  derivativesProduced,
		CleanupDeletedTotal:  cleanupDeleted,
	}
}

// StartServer exposes the registry on /metrics. Blocks, so run it in its own
// goroutine.
func StartServer(port string, appLogger *logger.Logger, registry *prometheus.Registry) error {
	if port == "" {
		appLogger.Info("Prometheus metrics server port not configured, server will not start.")
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	appLogger.Info("Prometheus metrics server starting", zap.String("port", port), zap.String("path", "/metrics"))

	server := &http.Server{
		Addr:    ":" + port,
		Handler: mux,
	}
	return server.ListenAndServe()
}

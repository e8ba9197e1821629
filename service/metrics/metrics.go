package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus collectors for the application.
// Following the explicit dependency injection pattern, this struct
// is passed to all components that need to record metrics.
type Metrics struct {
	// EVM RPC metrics
	rpcCallsTotal   *prometheus.CounterVec
	rpcCallDuration *prometheus.HistogramVec

	// Annotation metrics
	annotationsTotal             *prometheus.CounterVec
	typedDataAnnotationsTotal    *prometheus.CounterVec
	resolutionFailuresTotal      *prometheus.CounterVec
	resolutionDuration           *prometheus.HistogramVec
	subannotationsPerTransaction *prometheus.HistogramVec

	// Name resolution metrics
	nameLookupsTotal  *prometheus.CounterVec
	nameBatchDuration *prometheus.HistogramVec

	// Event metrics
	chainEventsReceivedTotal *prometheus.CounterVec

	// NATS metrics
	natsMessagesPublished *prometheus.CounterVec
	natsPublishDuration   *prometheus.HistogramVec
}

// NewMetrics creates a new Metrics instance and registers all collectors.
// If registry is nil, prometheus.DefaultRegisterer is used.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	factory := promauto.With(registry)

	return &Metrics{
		// EVM RPC metrics
		rpcCallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "evm_rpc_calls_total",
				Help: "Total number of EVM RPC calls by method and status",
			},
			[]string{"method", "status", "network"},
		),
		rpcCallDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "evm_rpc_call_duration_seconds",
				Help:    "Duration of EVM RPC calls in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
			},
			[]string{"method", "network"},
		),

		// Annotation metrics
		annotationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "annotations_total",
				Help: "Total number of transaction annotations produced by kind",
			},
			[]string{"network", "kind"},
		),
		typedDataAnnotationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "typed_data_annotations_total",
				Help: "Total number of typed-data annotations produced by kind",
			},
			[]string{"network", "kind"},
		),
		resolutionFailuresTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "resolution_failures_total",
				Help: "Total number of annotation resolutions that failed",
			},
			[]string{"network"},
		),
		resolutionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "resolution_duration_seconds",
				Help:    "Duration of annotation resolutions in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
			},
			[]string{"network"},
		),
		subannotationsPerTransaction: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "subannotations_per_transaction",
				Help:    "Number of log-derived subannotations attached per transaction",
				Buckets: []float64{0, 1, 2, 5, 10, 25, 50},
			},
			[]string{"network"},
		),

		// Name resolution metrics
		nameLookupsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "name_lookups_total",
				Help: "Total number of address name lookups by status",
			},
			[]string{"network", "status"},
		),
		nameBatchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "name_batch_duration_seconds",
				Help:    "Duration of concurrent name resolution batches in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
			},
			[]string{"network"},
		),

		// Event metrics
		chainEventsReceivedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chain_events_received_total",
				Help: "Total number of chain transaction events received",
			},
			[]string{"network"},
		),

		// NATS metrics
		natsMessagesPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nats_messages_published_total",
				Help: "Total number of NATS messages published",
			},
			[]string{"subject", "status"},
		),
		natsPublishDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "nats_publish_duration_seconds",
				Help:    "Duration of NATS publish operations in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
			},
			[]string{"subject"},
		),
	}
}

// EVM RPC metric helpers

// RecordRPCCall records an EVM RPC call with duration.
func (m *Metrics) RecordRPCCall(method, status, network string, duration float64) {
	m.rpcCallsTotal.WithLabelValues(method, status, network).Inc()
	m.rpcCallDuration.WithLabelValues(method, network).Observe(duration)
}

// Annotation metric helpers

// RecordAnnotation records a produced transaction annotation.
func (m *Metrics) RecordAnnotation(network, kind string) {
	m.annotationsTotal.WithLabelValues(network, kind).Inc()
}

// RecordTypedDataAnnotation records a produced typed-data annotation.
func (m *Metrics) RecordTypedDataAnnotation(network, kind string) {
	m.typedDataAnnotationsTotal.WithLabelValues(network, kind).Inc()
}

// RecordResolutionFailure records an annotation resolution that failed.
func (m *Metrics) RecordResolutionFailure(network string) {
	m.resolutionFailuresTotal.WithLabelValues(network).Inc()
}

// RecordResolutionDuration records how long an annotation resolution took.
func (m *Metrics) RecordResolutionDuration(network string, duration float64) {
	m.resolutionDuration.WithLabelValues(network).Observe(duration)
}

// RecordSubannotations records the number of subannotations attached to a transaction.
func (m *Metrics) RecordSubannotations(network string, count int) {
	m.subannotationsPerTransaction.WithLabelValues(network).Observe(float64(count))
}

// Name resolution metric helpers

// RecordNameLookup records a single address name lookup attempt.
func (m *Metrics) RecordNameLookup(network, status string) {
	m.nameLookupsTotal.WithLabelValues(network, status).Inc()
}

// RecordNameBatchDuration records the duration of a name resolution batch.
func (m *Metrics) RecordNameBatchDuration(network string, duration float64) {
	m.nameBatchDuration.WithLabelValues(network).Observe(duration)
}

// Event metric helpers

// RecordChainEventReceived records an inbound chain transaction event.
func (m *Metrics) RecordChainEventReceived(network string) {
	m.chainEventsReceivedTotal.WithLabelValues(network).Inc()
}

// NATS metric helpers

// RecordNATSPublish records a NATS publish operation.
func (m *Metrics) RecordNATSPublish(subject, status string, duration float64) {
	m.natsMessagesPublished.WithLabelValues(subject, status).Inc()
	m.natsPublishDuration.WithLabelValues(subject).Observe(duration)
}

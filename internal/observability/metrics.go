package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the catalog service.
// Metrics are organized by subsystem: HTTP, entities, uploads, cache, and
// events. All counters and histograms are registered via promauto for
// automatic registration with the default Prometheus registry.
type Metrics struct {
	// HTTPRequestsTotal counts HTTP requests, labeled by method, route, and status code.
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPRequestDuration observes HTTP request duration in seconds, labeled by method and route.
	HTTPRequestDuration *prometheus.HistogramVec

	// EntitiesCreated counts entities created, labeled by entity type.
	EntitiesCreated *prometheus.CounterVec

	// EntitiesUpdated counts entities updated, labeled by entity type.
	EntitiesUpdated *prometheus.CounterVec

	// EntitiesDeleted counts entities deleted, labeled by entity type.
	EntitiesDeleted *prometheus.CounterVec

	// ListQueryDuration observes filtered list query duration in seconds, labeled by entity type.
	ListQueryDuration *prometheus.HistogramVec

	// UploadsProcessed counts bulk upload requests processed.
	UploadsProcessed prometheus.Counter

	// UploadItemsCreated counts items successfully created via bulk upload.
	UploadItemsCreated prometheus.Counter

	// UploadItemsFailed counts items rejected during bulk upload.
	UploadItemsFailed prometheus.Counter

	// UploadDuration observes end-to-end bulk upload duration in seconds.
	UploadDuration prometheus.Histogram

	// ReportsGenerated counts report exports generated.
	ReportsGenerated prometheus.Counter

	// ReportRows observes the distribution of rows per generated report.
	ReportRows prometheus.Histogram

	// CacheHits counts cache hits, labeled by entity type.
	CacheHits *prometheus.CounterVec

	// CacheMisses counts cache misses, labeled by entity type.
	CacheMisses *prometheus.CounterVec

	// EventsPublished counts events successfully published to Kafka, labeled by event type.
	EventsPublished *prometheus.CounterVec

	// EventsFailed counts events that failed to publish, labeled by event type.
	EventsFailed *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics initialized.
// The namespace is used as a prefix for all metric names.
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		// HTTP
		HTTPRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"method", "route"}),

		// Entities
		EntitiesCreated: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entities_created_total",
			Help:      "Total number of entities created by type",
		}, []string{"entity"}),
		EntitiesUpdated: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entities_updated_total",
			Help:      "Total number of entities updated by type",
		}, []string{"entity"}),
		EntitiesDeleted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entities_deleted_total",
			Help:      "Total number of entities deleted by type",
		}, []string{"entity"}),
		ListQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "list_query_duration_seconds",
			Help:      "Duration of filtered list queries in seconds by entity type",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"entity"}),

		// Uploads
		UploadsProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_processed_total",
			Help:      "Total number of bulk uploads processed",
		}),
		UploadItemsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upload_items_created_total",
			Help:      "Total number of items created via bulk upload",
		}),
		UploadItemsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upload_items_failed_total",
			Help:      "Total number of items rejected during bulk upload",
		}),
		UploadDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upload_duration_seconds",
			Help:      "Duration of bulk uploads in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		}),

		// Reports
		ReportsGenerated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_generated_total",
			Help:      "Total number of report exports generated",
		}),
		ReportRows: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "report_rows",
			Help:      "Number of rows per generated report",
			Buckets:   []float64{0, 10, 50, 100, 500, 1000, 5000, 10000, 50000},
		}),

		// Cache
		CacheHits: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Total number of cache hits by entity type",
		}, []string{"entity"}),
		CacheMisses: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "Total number of cache misses by entity type",
		}, []string{"entity"}),

		// Events
		EventsPublished: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Total number of events published by type",
		}, []string{"event_type"}),
		EventsFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_failed_total",
			Help:      "Total number of events that failed to publish by type",
		}, []string{"event_type"}),
	}
}

// RecordHTTPRequest records a completed HTTP request.
func (m *Metrics) RecordHTTPRequest(method, route, status string, durationSeconds float64) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(durationSeconds)
}

// RecordEntityCreated records that an entity has been created.
func (m *Metrics) RecordEntityCreated(entity string) {
	m.EntitiesCreated.WithLabelValues(entity).Inc()
}

// RecordEntityUpdated records that an entity has been updated.
func (m *Metrics) RecordEntityUpdated(entity string) {
	m.EntitiesUpdated.WithLabelValues(entity).Inc()
}

// RecordEntityDeleted records that an entity has been deleted.
func (m *Metrics) RecordEntityDeleted(entity string) {
	m.EntitiesDeleted.WithLabelValues(entity).Inc()
}

// RecordListQuery records the duration of a filtered list query.
func (m *Metrics) RecordListQuery(entity string, durationSeconds float64) {
	m.ListQueryDuration.WithLabelValues(entity).Observe(durationSeconds)
}

// RecordUpload records the outcome of a bulk upload.
func (m *Metrics) RecordUpload(created, failed int, durationSeconds float64) {
	m.UploadsProcessed.Inc()
	m.UploadItemsCreated.Add(float64(created))
	m.UploadItemsFailed.Add(float64(failed))
	m.UploadDuration.Observe(durationSeconds)
}

// RecordReport records a generated report export.
func (m *Metrics) RecordReport(rows int) {
	m.ReportsGenerated.Inc()
	m.ReportRows.Observe(float64(rows))
}

// RecordCacheHit records a cache hit.
func (m *Metrics) RecordCacheHit(entity string) {
	m.CacheHits.WithLabelValues(entity).Inc()
}

// RecordCacheMiss records a cache miss.
func (m *Metrics) RecordCacheMiss(entity string) {
	m.CacheMisses.WithLabelValues(entity).Inc()
}

// RecordEventPublished records a successfully published event.
func (m *Metrics) RecordEventPublished(eventType string) {
	m.EventsPublished.WithLabelValues(eventType).Inc()
}

// RecordEventFailed records an event that failed to publish.
func (m *Metrics) RecordEventFailed(eventType string) {
	m.EventsFailed.WithLabelValues(eventType).Inc()
}

package metrics

import (
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// IngestMetrics instruments the CSV/CRM ingestion and aggregation paths.
type IngestMetrics struct {
	rowsParsed      *prometheus.CounterVec
	rowsSkipped     *prometheus.CounterVec
	sourceFetches   *prometheus.CounterVec
	crmFetches      *prometheus.CounterVec
	aggregationTime *prometheus.HistogramVec
	sessionRefresh  prometheus.Counter
}

var (
	ingestMetricsOnce sync.Once
	ingestMetrics     *IngestMetrics
)

// Ingest returns the process-wide ingest metrics with default labels.
func Ingest() *IngestMetrics {
	return IngestWithConfig(Config{})
}

// IngestWithConfig returns the process-wide ingest metrics, registering
// them on first use.
func IngestWithConfig(cfg Config) *IngestMetrics {
	ingestMetricsOnce.Do(func() {
		ingestMetrics = newIngestMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return ingestMetrics
}

// ResetIngestMetricsForTest clears the singleton between test runs.
func ResetIngestMetricsForTest() {
	ingestMetricsOnce = sync.Once{}
	ingestMetrics = nil
}

func newIngestMetrics(registerer prometheus.Registerer, cfg Config) *IngestMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "landiqr"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}

	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	rowsParsed := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "landiqr_ingest_rows_parsed_total",
			Help:        "CSV rows successfully normalized into usage events.",
			ConstLabels: constLabels,
		},
		[]string{"feed"},
	)

	rowsSkipped := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "landiqr_ingest_rows_skipped_total",
			Help:        "CSV rows dropped during parsing. Informational, not an error.",
			ConstLabels: constLabels,
		},
		[]string{"feed"},
	)

	sourceFetches := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "landiqr_ingest_source_fetch_total",
			Help:        "CSV source fetch attempts by source and result.",
			ConstLabels: constLabels,
		},
		[]string{"source", "result"},
	)

	crmFetches := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "landiqr_crm_fetch_total",
			Help:        "CRM endpoint fetches by endpoint and result.",
			ConstLabels: constLabels,
		},
		[]string{"endpoint", "result"},
	)

	aggregationTime := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:        "landiqr_aggregation_duration_seconds",
			Help:        "Wall time of one pure aggregation pass.",
			Buckets:     []float64{0.001, 0.005, 0.025, 0.1, 0.5, 2.5},
			ConstLabels: constLabels,
		},
		[]string{"view"},
	)

	sessionRefresh := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name:        "landiqr_session_refresh_total",
			Help:        "Manual refresh actions that invalidated the session cache.",
			ConstLabels: constLabels,
		},
	)

	registerer.MustRegister(
		rowsParsed,
		rowsSkipped,
		sourceFetches,
		crmFetches,
		aggregationTime,
		sessionRefresh,
	)

	return &IngestMetrics{
		rowsParsed:      rowsParsed,
		rowsSkipped:     rowsSkipped,
		sourceFetches:   sourceFetches,
		crmFetches:      crmFetches,
		aggregationTime: aggregationTime,
		sessionRefresh:  sessionRefresh,
	}
}

// ObserveRows records the parsed/skipped split of one feed parse.
func (m *IngestMetrics) ObserveRows(feed string, parsed, skipped int) {
	if m == nil {
		return
	}
	m.rowsParsed.WithLabelValues(feed).Add(float64(parsed))
	m.rowsSkipped.WithLabelValues(feed).Add(float64(skipped))
}

// IncSourceFetch records one CSV source fetch attempt.
func (m *IngestMetrics) IncSourceFetch(source, result string) {
	if m == nil {
		return
	}
	m.sourceFetches.WithLabelValues(source, result).Inc()
}

// IncCRMFetch records one CRM endpoint fetch attempt.
func (m *IngestMetrics) IncCRMFetch(endpoint, result string) {
	if m == nil {
		return
	}
	m.crmFetches.WithLabelValues(endpoint, result).Inc()
}

// ObserveAggregation records the wall time of one aggregation pass.
func (m *IngestMetrics) ObserveAggregation(view string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.aggregationTime.WithLabelValues(view).Observe(elapsed.Seconds())
}

// IncSessionRefresh records one manual refresh.
func (m *IngestMetrics) IncSessionRefresh() {
	if m == nil {
		return
	}
	m.sessionRefresh.Inc()
}

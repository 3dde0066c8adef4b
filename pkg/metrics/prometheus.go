// Package metrics provides Prometheus metrics for the polo scorer service.
package metrics

import (
	"context"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the scorer.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Scoresheet mutations
	recordsAdded     *prometheus.CounterVec
	recordsDeleted   prometheus.Counter
	numbersCorrected prometheus.Counter
	matchResets      prometheus.Counter
	validationErrors *prometheus.CounterVec
	requestDuplicate prometheus.Counter
	deriveLatency    prometheus.Histogram

	// Match state
	recordsCurrent  prometheus.Gauge
	currentPeriod   prometheus.Gauge
	score           *prometheus.GaugeVec
	excludedPlayers *prometheus.GaugeVec

	// Export and persistence
	exports          *prometheus.CounterVec
	snapshotSaves    prometheus.Histogram
	snapshotFailures *prometheus.CounterVec

	// Live feed
	liveConnections prometheus.Gauge
	liveBroadcasts  prometheus.Counter
	liveDropped     prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorRateByComponent *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "polo",
		subsystem:        "scorer",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) name(n string) string {
	if m.metricPrefix == "" {
		return n
	}
	return m.metricPrefix + "_" + n
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) histogramOpts(name, help string) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		Buckets:     m.histogramBuckets,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every metric
	auto := promauto.With(m.registry)

	m.recordsAdded = auto.NewCounterVec(
		m.counterOpts("records_added_total", "Records added to the scoresheet by event kind"),
		[]string{"kind"},
	)
	m.recordsDeleted = auto.NewCounter(m.counterOpts("records_deleted_total", "Records deleted from the scoresheet"))
	m.numbersCorrected = auto.NewCounter(m.counterOpts("numbers_corrected_total", "Player numbers corrected after entry"))
	m.matchResets = auto.NewCounter(m.counterOpts("match_resets_total", "Full match resets"))
	m.validationErrors = auto.NewCounterVec(
		m.counterOpts("validation_errors_total", "Rejected inputs by reason"),
		[]string{"reason"},
	)
	m.requestDuplicate = auto.NewCounter(m.counterOpts("requests_duplicate_total", "Add requests ignored as duplicates"))
	m.deriveLatency = auto.NewHistogram(m.histogramOpts("derive_latency_milliseconds", "Derivation pass latency in milliseconds"))

	m.recordsCurrent = auto.NewGauge(m.gaugeOpts("records_current", "Records currently on the scoresheet"))
	m.currentPeriod = auto.NewGauge(m.gaugeOpts("current_period", "Current match period"))
	m.score = auto.NewGaugeVec(m.gaugeOpts("score", "Current score by team"), []string{"team"})
	m.excludedPlayers = auto.NewGaugeVec(m.gaugeOpts("excluded_players", "Players out of the game by team"), []string{"team"})

	m.exports = auto.NewCounterVec(
		m.counterOpts("exports_total", "CSV exports by locale and outcome"),
		[]string{"locale", "outcome"},
	)
	m.snapshotSaves = auto.NewHistogram(m.histogramOpts("snapshot_save_duration_milliseconds", "Snapshot save duration in milliseconds"))
	m.snapshotFailures = auto.NewCounterVec(
		m.counterOpts("snapshot_failures_total", "Snapshot operation failures"),
		[]string{"op"},
	)

	m.liveConnections = auto.NewGauge(m.gaugeOpts("live_connections", "Open live scoreboard connections"))
	m.liveBroadcasts = auto.NewCounter(m.counterOpts("live_broadcasts_total", "Scoreboard messages broadcast"))
	m.liveDropped = auto.NewCounter(m.counterOpts("live_dropped_total", "Slow live clients dropped"))

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds"),
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorRateByComponent = auto.NewCounterVec(
		m.counterOpts("errors_by_component_total", "Total number of errors by component"),
		[]string{"component", "error_type"},
	)
	m.errorRateByEndpoint = auto.NewCounterVec(
		m.counterOpts("errors_by_endpoint_total", "Total number of errors by endpoint"),
		[]string{"endpoint", "method", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "Heap memory in use in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
}

// Enabled reports whether the global manager records observations.
func Enabled() bool { return globalManager.enabled }

// SetEnabled turns recording on or off for the global manager.
func SetEnabled(enabled bool) { globalManager.enabled = enabled }

// RecordAdded increments the added counter for kind.
func RecordAdded(kind string) {
	if !globalManager.enabled {
		return
	}
	globalManager.recordsAdded.WithLabelValues(kind).Inc()
}

// RecordDeleted increments the deleted counter.
func RecordDeleted() {
	if !globalManager.enabled {
		return
	}
	globalManager.recordsDeleted.Inc()
}

// RecordNumberCorrected increments the correction counter.
func RecordNumberCorrected() {
	if !globalManager.enabled {
		return
	}
	globalManager.numbersCorrected.Inc()
}

// RecordReset increments the reset counter.
func RecordReset() {
	if !globalManager.enabled {
		return
	}
	globalManager.matchResets.Inc()
}

// RecordValidationError counts a rejected input.
func RecordValidationError(reason string) {
	if !globalManager.enabled {
		return
	}
	globalManager.validationErrors.WithLabelValues(reason).Inc()
}

// RecordDuplicate counts an add request dropped by request id.
func RecordDuplicate() {
	if !globalManager.enabled {
		return
	}
	globalManager.requestDuplicate.Inc()
}

// RecordDeriveLatency records one derivation pass in milliseconds.
func RecordDeriveLatency(latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.deriveLatency.Observe(latencyMs)
}

// UpdateMatchState publishes the derived scoreboard gauges.
func UpdateMatchState(records, period, white, blue int) {
	if !globalManager.enabled {
		return
	}
	globalManager.recordsCurrent.Set(float64(records))
	globalManager.currentPeriod.Set(float64(period))
	globalManager.score.WithLabelValues("white").Set(float64(white))
	globalManager.score.WithLabelValues("blue").Set(float64(blue))
}

// UpdateExcludedPlayers sets the number of excluded players for team.
func UpdateExcludedPlayers(team string, count int) {
	if !globalManager.enabled {
		return
	}
	globalManager.excludedPlayers.WithLabelValues(team).Set(float64(count))
}

// RecordExport counts an export attempt.
func RecordExport(locale, outcome string) {
	if !globalManager.enabled {
		return
	}
	globalManager.exports.WithLabelValues(locale, outcome).Inc()
}

// RecordSnapshotSave records how long a snapshot save took.
func RecordSnapshotSave(latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.snapshotSaves.Observe(latencyMs)
}

// RecordSnapshotFailure counts a failed snapshot op (load, save, clear).
func RecordSnapshotFailure(op string) {
	if !globalManager.enabled {
		return
	}
	globalManager.snapshotFailures.WithLabelValues(op).Inc()
}

// UpdateLiveConnections sets the number of open live connections.
func UpdateLiveConnections(count int) {
	if !globalManager.enabled {
		return
	}
	globalManager.liveConnections.Set(float64(count))
}

// RecordBroadcast counts a scoreboard broadcast.
func RecordBroadcast() {
	if !globalManager.enabled {
		return
	}
	globalManager.liveBroadcasts.Inc()
}

// RecordLiveDropped counts a live client dropped for falling behind.
func RecordLiveDropped() {
	if !globalManager.enabled {
		return
	}
	globalManager.liveDropped.Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if !globalManager.enabled {
		return
	}
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	if !globalManager.enabled {
		return
	}
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	if !globalManager.enabled {
		return
	}
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystemMetrics samples heap usage and goroutine count.
func UpdateSystemMetrics() {
	if !globalManager.enabled {
		return
	}
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	globalManager.systemMemoryUsage.Set(float64(ms.HeapAlloc))
	globalManager.systemGoroutineCount.Set(float64(runtime.NumGoroutine()))
}

// RunSystemCollector samples system metrics every refresh interval until ctx
// is done.
func RunSystemCollector(ctx context.Context) {
	ticker := time.NewTicker(globalManager.refreshInterval)
	defer ticker.Stop()
	UpdateSystemMetrics()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			UpdateSystemMetrics()
		}
	}
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

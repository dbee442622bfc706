package providers

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ircstat/internal/structures"
)

// Line and file outcomes reported by the parser.
const (
	LineMatched   = "matched"
	LineUnmatched = "unmatched"
	LineIgnored   = "ignored"
	LineInvalid   = "invalid"

	FileParsed  = "parsed"
	FileSkipped = "skipped"
	FileFailed  = "failed"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	IncLines(result string)
	IncFiles(result string)
	AddEvents(plugin string, count int)
	IncPluginFailures(plugin string)
	ObserveStageDuration(stage string, duration time.Duration)
	Handler() http.Handler
	WriteTextfile(path string) error
}

type MetricsProvider struct {
	registry       *prometheus.Registry
	requestsTotal  *prometheus.CounterVec
	requestDur     *prometheus.HistogramVec
	cacheHits      prometheus.Counter
	cacheMisses    prometheus.Counter
	linesTotal     *prometheus.CounterVec
	filesTotal     *prometheus.CounterVec
	eventsTotal    *prometheus.CounterVec
	pluginFailures *prometheus.CounterVec
	stageDuration  *prometheus.HistogramVec
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDur.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncCacheHits() {
	m.cacheHits.Inc()
}

func (m *MetricsProvider) IncCacheMisses() {
	m.cacheMisses.Inc()
}

func (m *MetricsProvider) IncLines(result string) {
	m.linesTotal.WithLabelValues(result).Inc()
}

func (m *MetricsProvider) IncFiles(result string) {
	m.filesTotal.WithLabelValues(result).Inc()
}

func (m *MetricsProvider) AddEvents(plugin string, count int) {
	m.eventsTotal.WithLabelValues(plugin).Add(float64(count))
}

func (m *MetricsProvider) IncPluginFailures(plugin string) {
	m.pluginFailures.WithLabelValues(plugin).Inc()
}

func (m *MetricsProvider) ObserveStageDuration(stage string, duration time.Duration) {
	m.stageDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

func (m *MetricsProvider) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// WriteTextfile dumps the registry in the node_exporter textfile format.
func (m *MetricsProvider) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func NewMetricsProvider(conf *structures.Config) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &MetricsProvider{
		registry: registry,

		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ircstat_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDur: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ircstat_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "ircstat_cache_hits_total",
			Help: "Total number of cache hits",
		}),

		cacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "ircstat_cache_misses_total",
			Help: "Total number of cache misses",
		}),

		linesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ircstat_lines_total",
			Help: "Log lines read, by parse result",
		}, []string{"result"}),

		filesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ircstat_files_total",
			Help: "Log files seen, by outcome",
		}, []string{"result"}),

		eventsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ircstat_plugin_events_total",
			Help: "Events processed per plugin",
		}, []string{"plugin"}),

		pluginFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ircstat_plugin_failures_total",
			Help: "Plugins whose aggregation was aborted",
		}, []string{"plugin"}),

		stageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ircstat_stage_duration_seconds",
			Help:    "Duration of pipeline stages in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"stage"}),
	}
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncCacheHits()                                    {}
func (n *noopMetrics) IncCacheMisses()                                  {}
func (n *noopMetrics) IncLines(_ string)                                {}
func (n *noopMetrics) IncFiles(_ string)                                {}
func (n *noopMetrics) AddEvents(_ string, _ int)                        {}
func (n *noopMetrics) IncPluginFailures(_ string)                       {}
func (n *noopMetrics) ObserveStageDuration(_ string, _ time.Duration)   {}
func (n *noopMetrics) Handler() http.Handler                            { return http.NotFoundHandler() }
func (n *noopMetrics) WriteTextfile(_ string) error                     { return nil }

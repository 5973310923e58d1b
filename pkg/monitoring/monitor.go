package monitoring

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	// GraphBuildDuration 从数据加载到构图完成的耗时
	GraphBuildDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "graph_build_duration_seconds",
			Help:    "Duration of knowledge graph loads and builds",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"result"},
	)

	GraphNodes = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "graph_nodes",
			Help:    "Number of nodes per built knowledge graph",
			Buckets: prometheus.ExponentialBuckets(4, 2, 8),
		},
	)

	GraphSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "graph_ws_sessions",
			Help: "Open interactive graph sessions",
		},
	)

	GraphEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "graph_ws_events_total",
			Help: "Interactive graph session events",
		},
		[]string{"type", "direction"},
	)

	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "structure_cache_lookups_total",
			Help: "Course structure cache lookups",
		},
		[]string{"result"},
	)
)

var once sync.Once

// Init 重复调用是安全的
func Init() {
	once.Do(func() {
		prometheus.MustRegister(
			RequestCounter,
			RequestDuration,
			GraphBuildDuration,
			GraphNodes,
			GraphSessions,
			GraphEvents,
			CacheLookups,
		)
	})
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}

		RequestCounter.WithLabelValues(
			c.Request.Method,
			endpoint,
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			endpoint,
		).Observe(duration)
	}
}

// ObserveGraphBuild 记录一次构图
func ObserveGraphBuild(start time.Time, nodes int, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	GraphBuildDuration.WithLabelValues(result).Observe(time.Since(start).Seconds())
	if err == nil {
		GraphNodes.Observe(float64(nodes))
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

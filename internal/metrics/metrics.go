// Package metrics 提供早起登录服务的 Prometheus 指标
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Option 配置 Manager
type Option func(*Manager)

// WithNamespace 设置所有指标的命名空间
func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		if namespace != "" {
			m.namespace = namespace
		}
	}
}

// WithHistogramBuckets 设置耗时直方图的分桶（秒）
func WithHistogramBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if len(buckets) > 0 {
			m.buckets = buckets
		}
	}
}

// WithRuntimeCollectors 注册 Go 运行时与进程指标
func WithRuntimeCollectors() Option {
	return func(m *Manager) {
		m.runtime = true
	}
}

// Manager 持有独立的 registry 与服务的各项指标。
// nil *Manager 可以直接使用，不记录任何数据。
type Manager struct {
	namespace string
	buckets   []float64
	runtime   bool
	registry  *prometheus.Registry

	logins             prometheus.Counter
	wrongAnswers       prometheus.Counter
	titlesGranted      *prometheus.CounterVec
	evaluationDuration prometheus.Histogram
	storageErrors      *prometheus.CounterVec

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// NewManager 创建带独立 registry 的 Manager
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: "asakatsu",
		buckets:   prometheus.DefBuckets,
		registry:  prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.runtime {
		m.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	auto := promauto.With(m.registry)

	m.logins = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "logins_total",
		Help:      "Wake-up events recorded after a correct quiz answer",
	})
	m.wrongAnswers = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "quiz_wrong_answers_total",
		Help:      "Quiz submissions rejected as incorrect",
	})
	m.titlesGranted = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "titles_granted_total",
		Help:      "Titles newly granted by the evaluation engine",
	}, []string{"code"})
	m.evaluationDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "evaluation_duration_seconds",
		Help:      "Time spent running the title rules for one login",
		Buckets:   m.buckets,
	})
	m.storageErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "storage_errors_total",
		Help:      "Storage failures surfaced to callers",
	}, []string{"operation"})
	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by route, method and status code",
	}, []string{"route", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by route and method",
		Buckets:   m.buckets,
	}, []string{"route", "method"})

	return m
}

// Registry 返回底层 registry，主要供测试使用
func (m *Manager) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler 以 Prometheus 文本格式输出 registry
func (m *Manager) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordLogin 登录次数加一
func (m *Manager) RecordLogin() {
	if m == nil {
		return
	}
	m.logins.Inc()
}

// RecordWrongAnswer 答错次数加一
func (m *Manager) RecordWrongAnswer() {
	if m == nil {
		return
	}
	m.wrongAnswers.Inc()
}

// RecordTitleGranted 记录新授予的称号
func (m *Manager) RecordTitleGranted(code string) {
	if m == nil {
		return
	}
	m.titlesGranted.WithLabelValues(code).Inc()
}

// ObserveEvaluation 记录一次称号评估的耗时
func (m *Manager) ObserveEvaluation(d time.Duration) {
	if m == nil {
		return
	}
	m.evaluationDuration.Observe(d.Seconds())
}

// RecordStorageError 记录失败的存储操作
func (m *Manager) RecordStorageError(operation string) {
	if m == nil {
		return
	}
	m.storageErrors.WithLabelValues(operation).Inc()
}

// GinMiddleware 按匹配到的路由记录请求数与耗时
func (m *Manager) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		m.httpRequests.WithLabelValues(route, c.Request.Method, status).Inc()
		m.httpRequestDuration.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}

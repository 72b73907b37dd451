package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector implements MetricsCollector using Prometheus
type Collector struct {
	providerSelections *prometheus.CounterVec
	llmCalls           *prometheus.CounterVec
	llmTokens          *prometheus.CounterVec
	llmLatency         *prometheus.HistogramVec
	toolExecutions     *prometheus.CounterVec
	toolDuration       *prometheus.HistogramVec
	chatRequests       *prometheus.CounterVec
	queueDepth         *prometheus.GaugeVec
	workerPoolIdle     prometheus.Gauge
	workerPoolBusy     prometheus.Gauge
	workerPoolStopped  prometheus.Gauge
}

// NewCollector creates a Prometheus collector registered with reg.
// A nil reg registers with the default registry.
func NewCollector(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Collector{
		providerSelections: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "climeai_provider_selections_total",
				Help: "Total number of model client selections by provider",
			},
			[]string{"provider"},
		),
		llmCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "climeai_llm_calls_total",
				Help: "Total number of LLM API calls",
			},
			[]string{"provider", "model", "status"},
		),
		llmTokens: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "climeai_llm_tokens_total",
				Help: "Total number of LLM tokens used",
			},
			[]string{"model", "type"},
		),
		llmLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "climeai_llm_latency_seconds",
				Help:    "LLM API call latency in seconds",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 20},
			},
			[]string{"model"},
		),
		toolExecutions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "climeai_tool_executions_total",
				Help: "Total number of tool executions",
			},
			[]string{"tool", "status"},
		),
		toolDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "climeai_tool_duration_seconds",
				Help:    "Tool execution duration in seconds",
				Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 2},
			},
			[]string{"tool"},
		),
		chatRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "climeai_chat_requests_total",
				Help: "Total number of chat turns handled",
			},
			[]string{"status"},
		),
		queueDepth: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "climeai_queue_depth",
				Help: "Current depth of job queues",
			},
			[]string{"queue"},
		),
		workerPoolIdle: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "climeai_worker_pool_idle",
				Help: "Number of idle workers",
			},
		),
		workerPoolBusy: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "climeai_worker_pool_busy",
				Help: "Number of busy workers",
			},
		),
		workerPoolStopped: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "climeai_worker_pool_stopped",
				Help: "Number of stopped workers",
			},
		),
	}
}

// IncProviderSelected increments the count of selections for a provider
func (c *Collector) IncProviderSelected(provider string) {
	c.providerSelections.WithLabelValues(provider).Inc()
}

// IncLLMCalls increments the count of LLM API calls
func (c *Collector) IncLLMCalls(provider, model, status string) {
	c.llmCalls.WithLabelValues(provider, model, status).Inc()
}

// ObserveLLMLatency records the latency of an LLM API call
func (c *Collector) ObserveLLMLatency(model string, duration time.Duration) {
	c.llmLatency.WithLabelValues(model).Observe(duration.Seconds())
}

// IncLLMTokens increments the count of LLM tokens used
func (c *Collector) IncLLMTokens(model, tokenType string, count int) {
	c.llmTokens.WithLabelValues(model, tokenType).Add(float64(count))
}

// IncToolExecutions increments the count of tool executions
func (c *Collector) IncToolExecutions(tool, status string) {
	c.toolExecutions.WithLabelValues(tool, status).Inc()
}

// ObserveToolDuration records the duration of a tool execution
func (c *Collector) ObserveToolDuration(tool string, duration time.Duration) {
	c.toolDuration.WithLabelValues(tool).Observe(duration.Seconds())
}

// IncChatRequests increments the count of chat turns
func (c *Collector) IncChatRequests(status string) {
	c.chatRequests.WithLabelValues(status).Inc()
}

// SetQueueDepth sets the current depth of a job queue
func (c *Collector) SetQueueDepth(queue string, depth int) {
	c.queueDepth.WithLabelValues(queue).Set(float64(depth))
}

// RecordWorkerPoolStatus records worker pool status
func (c *Collector) RecordWorkerPoolStatus(idle, busy, stopped int) {
	c.workerPoolIdle.Set(float64(idle))
	c.workerPoolBusy.Set(float64(busy))
	c.workerPoolStopped.Set(float64(stopped))
}

package metrics

import (
	"strconv"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "webforge"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	stageDuration *prom.HistogramVec
	stageResults  *prom.CounterVec
	orderDuration prom.Histogram
	orderOutcome  *prom.CounterVec
	sinkErrors    *prom.CounterVec
	httpDuration  *prom.HistogramVec
	httpRequests  *prom.CounterVec
}

// NewPrometheusRecorder constructs the metrics and registers them with reg.
// A nil reg gets a fresh private registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		stageDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual order stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"}),
		stageResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "stage_results_total",
			Help:      "Stage result counts by outcome",
		}, []string{"stage", "result"}),
		orderDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "order_duration_seconds",
			Help:      "Total order processing duration",
			Buckets:   prom.DefBuckets,
		}),
		orderOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "order_outcomes_total",
			Help:      "Orders by final status",
		}, []string{"outcome"}),
		sinkErrors: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "sink_errors_total",
			Help:      "Event sink delivery failures",
		}, []string{"sink"}),
		httpDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP intake request latency",
			Buckets:   prom.DefBuckets,
		}, []string{"route"}),
		httpRequests: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP intake requests by route and status code",
		}, []string{"route", "code"}),
	}
	reg.MustRegister(pr.stageDuration, pr.stageResults, pr.orderDuration, pr.orderOutcome,
		pr.sinkErrors, pr.httpDuration, pr.httpRequests)
	return pr
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil || p.stageDuration == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncStageResult(stage string, result ResultLabel) {
	if p == nil || p.stageResults == nil {
		return
	}
	p.stageResults.WithLabelValues(stage, string(result)).Inc()
}

func (p *PrometheusRecorder) ObserveOrderDuration(d time.Duration) {
	if p == nil || p.orderDuration == nil {
		return
	}
	p.orderDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncOrderOutcome(outcome OrderOutcomeLabel) {
	if p == nil || p.orderOutcome == nil {
		return
	}
	p.orderOutcome.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) IncSinkError(sink string) {
	if p == nil || p.sinkErrors == nil {
		return
	}
	p.sinkErrors.WithLabelValues(sink).Inc()
}

func (p *PrometheusRecorder) ObserveHTTPRequest(route string, status int, d time.Duration) {
	if p == nil || p.httpDuration == nil {
		return
	}
	p.httpDuration.WithLabelValues(route).Observe(d.Seconds())
	p.httpRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
}

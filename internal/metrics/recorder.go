package metrics

import "time"

// ResultLabel enumerates stage result categories for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultFailed   ResultLabel = "failed"
	ResultCanceled ResultLabel = "canceled"
)

// OrderOutcomeLabel is the final status of an order.
type OrderOutcomeLabel string

const (
	OrderOutcomeCompleted OrderOutcomeLabel = "completed"
	OrderOutcomeFailed    OrderOutcomeLabel = "failed"
	OrderOutcomeRejected  OrderOutcomeLabel = "rejected"
)

// Recorder defines observability hooks for order processing and the HTTP
// intake. Implementations may forward to Prometheus, OpenTelemetry, etc.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	IncStageResult(stage string, result ResultLabel)
	ObserveOrderDuration(d time.Duration)
	IncOrderOutcome(outcome OrderOutcomeLabel)
	IncSinkError(sink string)
	ObserveHTTPRequest(route string, status int, d time.Duration)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration)    {}
func (NoopRecorder) IncStageResult(string, ResultLabel)            {}
func (NoopRecorder) ObserveOrderDuration(time.Duration)            {}
func (NoopRecorder) IncOrderOutcome(OrderOutcomeLabel)             {}
func (NoopRecorder) IncSinkError(string)                           {}
func (NoopRecorder) ObserveHTTPRequest(string, int, time.Duration) {}

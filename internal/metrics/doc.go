// Package metrics provides order and HTTP intake metrics.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so metrics stay optional:
//
//	agent := agent.New(ws, gen, biller, agent.WithRecorder(metrics.NewPrometheusRecorder(reg)))
//
// The serve command registers a PrometheusRecorder on a private registry and
// exposes it through HTTPHandler.
package metrics

package config

import (
	"strings"
	"time"

	"git.home.luguber.info/inful/webforge/internal/foundation/errors"
)

// RetryBackoffMode selects how delays grow between publish retries.
type RetryBackoffMode string

const (
	RetryBackoffFixed       RetryBackoffMode = "fixed"
	RetryBackoffLinear      RetryBackoffMode = "linear"
	RetryBackoffExponential RetryBackoffMode = "exponential"
)

const (
	defaultRetryInitialDelay = "100ms"
	defaultRetryMaxDelay     = "1s"
	defaultMaxRetries        = 2
)

// RetryDelays parses the configured delays. Empty values yield zero, which
// the retry policy replaces with its own defaults.
func (n NotifyConfig) RetryDelays() (initial, maxDelay time.Duration, err error) {
	if initial, err = parseDelay("notify.retry_initial_delay", n.RetryInitialDelay); err != nil {
		return 0, 0, err
	}
	if maxDelay, err = parseDelay("notify.retry_max_delay", n.RetryMaxDelay); err != nil {
		return 0, 0, err
	}
	return initial, maxDelay, nil
}

func parseDelay(field, raw string) (time.Duration, error) {
	if strings.TrimSpace(raw) == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		return 0, errors.ConfigError(field + " must be a non-negative duration").
			WithCause(err).
			WithContext("value", raw).
			Build()
	}
	return d, nil
}

func applyRetryDefaults(n *NotifyConfig) {
	if n.RetryBackoff != "" {
		n.RetryBackoff = RetryBackoffMode(strings.ToLower(string(n.RetryBackoff)))
		return
	}
	n.RetryBackoff = RetryBackoffLinear
	n.MaxRetries = defaultMaxRetries
	if n.RetryInitialDelay == "" {
		n.RetryInitialDelay = defaultRetryInitialDelay
	}
	if n.RetryMaxDelay == "" {
		n.RetryMaxDelay = defaultRetryMaxDelay
	}
}

func validateRetry(n NotifyConfig) error {
	switch n.RetryBackoff {
	case RetryBackoffFixed, RetryBackoffLinear, RetryBackoffExponential:
	default:
		return errors.ConfigError("notify.retry_backoff must be fixed, linear or exponential").
			WithContext("retry_backoff", n.RetryBackoff).
			Build()
	}
	if n.MaxRetries < 0 {
		return errors.ConfigError("notify.max_retries cannot be negative").
			WithContext("max_retries", n.MaxRetries).
			Build()
	}
	_, _, err := n.RetryDelays()
	return err
}

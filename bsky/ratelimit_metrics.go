package bsky

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

type RateLimitFailureType string

const (
	FailureMaxAttempts  RateLimitFailureType = "max_attempts"
	FailureMaxWaitTime  RateLimitFailureType = "max_wait_time"
	FailureTimeout      RateLimitFailureType = "timeout"
	FailureNetworkError RateLimitFailureType = "network_error"
)

type RateLimitMetrics struct {
	retryAttempts              metric.Int64UpDownCounter
	waitDuration               metric.Float64Histogram
	rateLimit                  metric.Int64Counter
	failures                   metric.Int64Counter
	rateLimitRequestsRemaining metric.Int64Gauge
	rateLimitRequestsLimit     metric.Int64Gauge
	rateLimitRequestsReset     metric.Float64Gauge
}

func NewRateLimitMetrics(ctx context.Context) (*RateLimitMetrics, error) {
	meter := otel.GetMeterProvider().Meter(
		"atproto_rate_limit",
		metric.WithInstrumentationVersion("0.1.0"),
	)

	retryAttempts, err := meter.Int64UpDownCounter(
		"atproto.rate_limit.retry_attempts",
		metric.WithDescription("Current number of retry attempts"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, err
	}

	waitDuration, err := meter.Float64Histogram(
		"atproto.rate_limit.wait_duration",
		metric.WithDescription("Time spent waiting due to rate limits"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	rateLimit, err := meter.Int64Counter(
		"atproto.rate_limit.hits",
		metric.WithDescription("Number of rate limit hits encountered"),
		metric.WithUnit("{hit}"),
	)
	if err != nil {
		return nil, err
	}

	failures, err := meter.Int64Counter(
		"atproto.rate_limit.failures",
		metric.WithDescription("Rate limit failures by type"),
		metric.WithUnit("{failure}"),
	)
	if err != nil {
		return nil, err
	}

	requestsRemaining, err := meter.Int64Gauge(
		"atproto.rate_limit.requests_remaining",
		metric.WithDescription("Requests remaining in the current rate limit window"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	requestsLimit, err := meter.Int64Gauge(
		"atproto.rate_limit.requests_limit",
		metric.WithDescription("Request ceiling for the current rate limit window"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	requestsReset, err := meter.Float64Gauge(
		"atproto.rate_limit.requests_reset",
		metric.WithDescription("Seconds until the rate limit window resets"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &RateLimitMetrics{
		retryAttempts:              retryAttempts,
		waitDuration:               waitDuration,
		rateLimit:                  rateLimit,
		failures:                   failures,
		rateLimitRequestsRemaining: requestsRemaining,
		rateLimitRequestsLimit:     requestsLimit,
		rateLimitRequestsReset:     requestsReset,
	}, nil
}

package run

import (
	"context"
	"runtime/debug"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

type PipelineMetrics struct {
	batchSize          metric.Int64Gauge
	accountsProcessed  metric.Int64Counter
	followsCreated     metric.Int64Counter
	resolutionFailures metric.Int64Counter
}

func NewPipelineMetrics(ctx context.Context) (*PipelineMetrics, error) {
	buildInfo, ok := debug.ReadBuildInfo()
	version := "unknown"
	if ok {
		version = buildInfo.Main.Version
	}

	meter := otel.GetMeterProvider().Meter(
		"birdsync.pipeline",
		metric.WithInstrumentationVersion(version),
	)

	batchSize, err := meter.Int64Gauge(
		"birdsync.pipeline.batch_size",
		metric.WithDescription("Number of follow records in the current batch"),
		metric.WithUnit("{records}"),
	)
	if err != nil {
		return nil, err
	}

	accountsProcessed, err := meter.Int64Counter(
		"birdsync.pipeline.accounts_processed",
		metric.WithDescription("Accounts processed end to end"),
		metric.WithUnit("{accounts}"),
	)
	if err != nil {
		return nil, err
	}

	followsCreated, err := meter.Int64Counter(
		"birdsync.pipeline.follows_created",
		metric.WithDescription("Follow records created on the target network"),
		metric.WithUnit("{follows}"),
	)
	if err != nil {
		return nil, err
	}

	resolutionFailures, err := meter.Int64Counter(
		"birdsync.pipeline.resolution_failures",
		metric.WithDescription("Accounts whose handle could not be resolved"),
		metric.WithUnit("{accounts}"),
	)
	if err != nil {
		return nil, err
	}

	return &PipelineMetrics{
		batchSize:          batchSize,
		accountsProcessed:  accountsProcessed,
		followsCreated:     followsCreated,
		resolutionFailures: resolutionFailures,
	}, nil
}

package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var meter = otel.Meter("generation-metrics")

// GenerationMetrics records document generation activity
type GenerationMetrics struct {
	generationsStartedCounter   metric.Int64Counter
	generationsCompletedCounter metric.Int64Counter
	generationsFailedCounter    metric.Int64Counter
	retriesCounter              metric.Int64Counter
	generationDurationHistogram metric.Float64Histogram
	generationsActiveGauge      metric.Int64UpDownCounter
}

// NewGenerationMetrics creates the generation instruments on the global meter
func NewGenerationMetrics() (*GenerationMetrics, error) {
	generationsStartedCounter, err := meter.Int64Counter(
		"charter.generations.started",
		metric.WithDescription("Total number of document generations started"),
		metric.WithUnit("{generation}"),
	)
	if err != nil {
		return nil, err
	}

	generationsCompletedCounter, err := meter.Int64Counter(
		"charter.generations.completed",
		metric.WithDescription("Total number of documents generated successfully"),
		metric.WithUnit("{generation}"),
	)
	if err != nil {
		return nil, err
	}

	generationsFailedCounter, err := meter.Int64Counter(
		"charter.generations.failed",
		metric.WithDescription("Total number of document generations that failed"),
		metric.WithUnit("{generation}"),
	)
	if err != nil {
		return nil, err
	}

	retriesCounter, err := meter.Int64Counter(
		"charter.generations.retries",
		metric.WithDescription("Total number of retried calls to the language-model backend"),
		metric.WithUnit("{retry}"),
	)
	if err != nil {
		return nil, err
	}

	generationDurationHistogram, err := meter.Float64Histogram(
		"charter.generation.duration",
		metric.WithDescription("Duration of document generation including retries in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	generationsActiveGauge, err := meter.Int64UpDownCounter(
		"charter.generations.active",
		metric.WithDescription("Number of document generations in flight"),
		metric.WithUnit("{generation}"),
	)
	if err != nil {
		return nil, err
	}

	return &GenerationMetrics{
		generationsStartedCounter:   generationsStartedCounter,
		generationsCompletedCounter: generationsCompletedCounter,
		generationsFailedCounter:    generationsFailedCounter,
		retriesCounter:              retriesCounter,
		generationDurationHistogram: generationDurationHistogram,
		generationsActiveGauge:      generationsActiveGauge,
	}, nil
}

// RecordGenerationStarted records a generation entering the generating state
func (gm *GenerationMetrics) RecordGenerationStarted(ctx context.Context, documentType string) {
	if gm == nil {
		return
	}
	gm.generationsStartedCounter.Add(ctx, 1,
		metric.WithAttributes(attribute.String("document.type", documentType)),
	)
	gm.generationsActiveGauge.Add(ctx, 1,
		metric.WithAttributes(attribute.String("document.type", documentType)),
	)
}

// RecordGenerationCompleted records a successful generation
func (gm *GenerationMetrics) RecordGenerationCompleted(ctx context.Context, documentType string, attempts int, duration time.Duration) {
	if gm == nil {
		return
	}
	gm.generationsCompletedCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("document.type", documentType),
			attribute.Int("attempts", attempts),
		),
	)
	gm.generationDurationHistogram.Record(ctx, duration.Seconds(),
		metric.WithAttributes(
			attribute.String("document.type", documentType),
			attribute.String("status", "complete"),
		),
	)
	gm.generationsActiveGauge.Add(ctx, -1,
		metric.WithAttributes(attribute.String("document.type", documentType)),
	)
}

// RecordGenerationFailed records a generation that ended in the error state
func (gm *GenerationMetrics) RecordGenerationFailed(ctx context.Context, documentType, errorClass string, duration time.Duration) {
	if gm == nil {
		return
	}
	gm.generationsFailedCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("document.type", documentType),
			attribute.String("error.class", errorClass),
		),
	)
	gm.generationDurationHistogram.Record(ctx, duration.Seconds(),
		metric.WithAttributes(
			attribute.String("document.type", documentType),
			attribute.String("status", "error"),
		),
	)
	gm.generationsActiveGauge.Add(ctx, -1,
		metric.WithAttributes(attribute.String("document.type", documentType)),
	)
}

// RecordRetry records one retried backend call
func (gm *GenerationMetrics) RecordRetry(ctx context.Context, documentType string, attempt int) {
	if gm == nil {
		return
	}
	gm.retriesCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("document.type", documentType),
			attribute.Int("attempt", attempt),
		),
	)
}

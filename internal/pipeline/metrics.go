package pipeline

import (
	"context"

	"github.com/samber/oops"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	runsCompleted metric.Int64Counter
	runsFailed    metric.Int64Counter
)

// InitMeters creates the pipeline run counters. Safe to skip in tests; the
// counters are nil-guarded.
func InitMeters(ctx context.Context, appName string) error {
	meter := otel.Meter(
		"watermark-bot/"+appName,
		metric.WithInstrumentationVersion(otel.Version()),
	)

	var err error

	runsCompleted, err = meter.Int64Counter(
		"pipeline.runs_completed",
		metric.WithDescription("Watermark pipeline runs that delivered a video"),
		metric.WithUnit("run"),
	)
	if err != nil {
		return oops.In("Pipeline").
			WithContext(ctx).
			Wrapf(err, "creating runs_completed meter")
	}

	runsFailed, err = meter.Int64Counter(
		"pipeline.runs_failed",
		metric.WithDescription("Watermark pipeline runs that failed"),
		metric.WithUnit("run"),
	)
	if err != nil {
		return oops.In("Pipeline").
			WithContext(ctx).
			Wrapf(err, "creating runs_failed meter")
	}

	return nil
}

func recordCompleted(ctx context.Context) {
	if runsCompleted != nil {
		runsCompleted.Add(ctx, 1)
	}
}

func recordFailed(ctx context.Context, stage string) {
	if runsFailed != nil {
		runsFailed.Add(ctx, 1, metric.WithAttributes(attribute.String("stage", stage)))
	}
}

// Package observability sets up the OTel meter and tracer providers.
package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"

	"headline-generator/internal/common/logger"
)

// Observability records task-level metrics through OTel; the prometheus
// exporter serves them on the same /metrics registry as promauto.
type Observability struct {
	meterProvider *metric.MeterProvider
	meter         otelmetric.Meter
	taskCounter   otelmetric.Int64Counter
	taskDuration  otelmetric.Float64Histogram
	logger        logger.Logger
}

func New(serviceName string, log logger.Logger) *Observability {
	o := &Observability{logger: log}

	exporter, err := prometheus.New()
	if err != nil {
		log.Warn("prometheus exporter unavailable, otel metrics disabled", map[string]interface{}{"error": err})
		return o
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	o.meterProvider = provider
	o.meter = provider.Meter(serviceName)

	o.taskCounter, _ = o.meter.Int64Counter(
		"headline.tasks.processed",
		otelmetric.WithDescription("Number of generation tasks processed"),
	)
	o.taskDuration, _ = o.meter.Float64Histogram(
		"headline.tasks.duration",
		otelmetric.WithDescription("Generation task duration"),
		otelmetric.WithUnit("ms"),
	)
	return o
}

func (o *Observability) RecordTaskProcessed(ctx context.Context, status string) {
	if o.taskCounter != nil {
		o.taskCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("status", status),
		))
	}
}

func (o *Observability) RecordTaskDuration(ctx context.Context, duration time.Duration, status string) {
	if o.taskDuration != nil {
		o.taskDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
			attribute.String("status", status),
		))
	}
}

func (o *Observability) Shutdown() {
	if o.meterProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := o.meterProvider.Shutdown(ctx); err != nil {
			o.logger.Warn("meter provider shutdown failed", map[string]interface{}{"error": err})
		}
	}
}

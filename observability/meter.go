package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/scribe/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// ServiceName is the name of the service.
	ServiceName string
	// ServiceVersion is the version of the service.
	ServiceVersion string
	// Environment is the deployment environment (dev, staging, prod).
	Environment string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
	// Insecure allows insecure connections (for development).
	Insecure bool
	// Interval is the metric export interval.
	Interval time.Duration
}

// DefaultMeterConfig returns sensible defaults for development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "dev",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter initializes the OpenTelemetry meter provider.
// Returns a MeterProvider that should be shut down on application exit.
func InitMeter(ctx context.Context, config *MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds the pipeline's metric instruments. A nil *Metrics records nothing.
type Metrics struct {
	jobTotal      metric.Int64Counter
	jobDuration   metric.Float64Histogram
	jobActive     metric.Int64UpDownCounter
	chunkTotal    metric.Int64Counter
	chunkDuration metric.Float64Histogram
	phaseDuration metric.Float64Histogram
	alertTotal    metric.Int64Counter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	jobTotal, err := meter.Int64Counter("scribe.job.total",
		metric.WithDescription("Finished jobs by kind and terminal status"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating scribe.job.total counter: %w", err)
	}

	jobDuration, err := meter.Float64Histogram("scribe.job.duration",
		metric.WithDescription("End-to-end job duration measured from acceptance"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating scribe.job.duration histogram: %w", err)
	}

	jobActive, err := meter.Int64UpDownCounter("scribe.job.active",
		metric.WithDescription("Jobs currently running"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating scribe.job.active gauge: %w", err)
	}

	chunkTotal, err := meter.Int64Counter("scribe.chunk.total",
		metric.WithDescription("Chunk transcriptions by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating scribe.chunk.total counter: %w", err)
	}

	chunkDuration, err := meter.Float64Histogram("scribe.chunk.duration",
		metric.WithDescription("Remote transcription time per chunk"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating scribe.chunk.duration histogram: %w", err)
	}

	phaseDuration, err := meter.Float64Histogram("scribe.phase.duration",
		metric.WithDescription("Time spent per pipeline phase"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating scribe.phase.duration histogram: %w", err)
	}

	alertTotal, err := meter.Int64Counter("scribe.alert.total",
		metric.WithDescription("Alerts raised by error code"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating scribe.alert.total counter: %w", err)
	}

	return &Metrics{
		jobTotal:      jobTotal,
		jobDuration:   jobDuration,
		jobActive:     jobActive,
		chunkTotal:    chunkTotal,
		chunkDuration: chunkDuration,
		phaseDuration: phaseDuration,
		alertTotal:    alertTotal,
	}, nil
}

// RecordJobStart increments the running job count.
func (m *Metrics) RecordJobStart(ctx context.Context) {
	if m == nil {
		return
	}
	m.jobActive.Add(ctx, 1)
}

// RecordJob decrements running jobs and records a finished job.
func (m *Metrics) RecordJob(ctx context.Context, kind, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.jobActive.Add(ctx, -1)
	m.jobTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("status", status),
	))
	m.jobDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("kind", kind),
	))
}

// RecordChunk records one chunk transcription.
func (m *Metrics) RecordChunk(ctx context.Context, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.chunkTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	m.chunkDuration.Record(ctx, duration.Seconds())
}

// RecordPhase records the duration of a pipeline phase (segment, transcribe, captions...).
func (m *Metrics) RecordPhase(ctx context.Context, phase string, duration time.Duration) {
	if m == nil {
		return
	}
	m.phaseDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("phase", phase),
	))
}

// RecordAlert counts an alert by error code.
func (m *Metrics) RecordAlert(ctx context.Context, code string) {
	if m == nil {
		return
	}
	m.alertTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("code", code)))
}

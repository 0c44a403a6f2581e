package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/SahilLakra08/The-Impact-of-AI-on-Global-Market-ML-Project/internal/config"
	"github.com/SahilLakra08/The-Impact-of-AI-on-Global-Market-ML-Project/pkg/contracts"
)

const (
	ServiceName = "ai-market-analysis"
	MeterName   = "aimarket/pipeline"
)

// OTelConfig holds OpenTelemetry configuration
type OTelConfig struct {
	ServiceName    string
	ServiceVersion string
	EnableTracing  bool
	TraceWriter    io.Writer // span JSON destination; required when tracing is enabled
	SampleRatio    float64
	EnableMetrics  bool
}

// OTelProviders holds the OpenTelemetry providers of one analysis run
type OTelProviders struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Tracer         trace.Tracer
	Meter          metric.Meter
	Registry       *prometheus.Registry
	Metrics        *PipelineMetrics
	Logger         *slog.Logger
}

// PipelineMetrics holds the instruments recorded by the analysis pipeline
type PipelineMetrics struct {
	RunsTotal      metric.Int64Counter
	StageDuration  metric.Float64Histogram
	StageErrors    metric.Int64Counter
	RecordsLoaded  metric.Int64Gauge
	ModelR2        metric.Float64Gauge
	ForecastYears  metric.Int64Gauge
	FilesGenerated metric.Int64Counter
}

// OTelConfigFrom builds the OpenTelemetry configuration from the telemetry section
func OTelConfigFrom(cfg config.TelemetryConfig, traceWriter io.Writer) *OTelConfig {
	return &OTelConfig{
		ServiceName:    ServiceName,
		ServiceVersion: contracts.Version,
		EnableTracing:  cfg.TracingEnabled && traceWriter != nil,
		TraceWriter:    traceWriter,
		SampleRatio:    cfg.SampleRatio,
		EnableMetrics:  cfg.MetricsEnabled,
	}
}

// InitializeOTel initializes tracing and metrics for a single run.
// Disabled signals get no-op providers so callers never need nil checks.
func InitializeOTel(cfg *OTelConfig, logger *slog.Logger) (*OTelProviders, error) {
	if cfg == nil {
		cfg = &OTelConfig{ServiceName: ServiceName, ServiceVersion: contracts.Version}
	}
	if logger == nil {
		logger = GetLogger()
	}

	ctx := context.Background()

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
	)

	providers := &OTelProviders{
		Tracer: tracenoop.NewTracerProvider().Tracer(MeterName),
		Meter:  metricnoop.NewMeterProvider().Meter(MeterName),
		Logger: logger,
	}

	if cfg.EnableTracing {
		if err := initializeTracing(cfg, res, providers); err != nil {
			return nil, fmt.Errorf("failed to initialize tracing: %w", err)
		}
	}

	if cfg.EnableMetrics {
		if err := initializeMetrics(cfg, res, providers); err != nil {
			return nil, fmt.Errorf("failed to initialize metrics: %w", err)
		}
	}

	metrics, err := CreatePipelineMetrics(providers.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline metrics: %w", err)
	}
	providers.Metrics = metrics

	logger.DebugContext(ctx, "OpenTelemetry initialized",
		slog.Bool("tracing_enabled", cfg.EnableTracing),
		slog.Bool("metrics_enabled", cfg.EnableMetrics))

	return providers, nil
}

// initializeTracing sets up span export to the configured writer
func initializeTracing(cfg *OTelConfig, res *resource.Resource, providers *OTelProviders) error {
	if cfg.TraceWriter == nil {
		return errors.New("trace writer is required")
	}

	exporter, err := stdouttrace.New(
		stdouttrace.WithWriter(cfg.TraceWriter),
		stdouttrace.WithPrettyPrint(),
	)
	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(cfg.SampleRatio)),
	)

	providers.TracerProvider = tp
	providers.Tracer = tp.Tracer(MeterName, trace.WithInstrumentationVersion(cfg.ServiceVersion))

	return nil
}

// initializeMetrics sets up a private Prometheus registry fed by the OTel SDK
func initializeMetrics(cfg *OTelConfig, res *resource.Resource, providers *OTelProviders) error {
	registry := prometheus.NewRegistry()

	exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
	if err != nil {
		return fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)

	providers.Registry = registry
	providers.MeterProvider = mp
	providers.Meter = mp.Meter(MeterName, metric.WithInstrumentationVersion(cfg.ServiceVersion))

	return nil
}

// CreatePipelineMetrics creates the analysis instruments on the given meter
func CreatePipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	runsTotal, err := meter.Int64Counter(
		"analysis_runs",
		metric.WithDescription("Total number of analysis runs by outcome"),
	)
	if err != nil {
		return nil, err
	}

	stageDuration, err := meter.Float64Histogram(
		"analysis_stage_duration",
		metric.WithDescription("Pipeline stage duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	stageErrors, err := meter.Int64Counter(
		"analysis_stage_errors",
		metric.WithDescription("Total number of failed pipeline stages"),
	)
	if err != nil {
		return nil, err
	}

	recordsLoaded, err := meter.Int64Gauge(
		"analysis_records_loaded",
		metric.WithDescription("Number of historical records loaded"),
	)
	if err != nil {
		return nil, err
	}

	modelR2, err := meter.Float64Gauge(
		"analysis_model_r2",
		metric.WithDescription("In-sample coefficient of determination per trend model"),
	)
	if err != nil {
		return nil, err
	}

	forecastYears, err := meter.Int64Gauge(
		"analysis_forecast_years",
		metric.WithDescription("Number of projected years"),
	)
	if err != nil {
		return nil, err
	}

	filesGenerated, err := meter.Int64Counter(
		"analysis_files_generated",
		metric.WithDescription("Total number of output files written"),
	)
	if err != nil {
		return nil, err
	}

	return &PipelineMetrics{
		RunsTotal:      runsTotal,
		StageDuration:  stageDuration,
		StageErrors:    stageErrors,
		RecordsLoaded:  recordsLoaded,
		ModelR2:        modelR2,
		ForecastYears:  forecastYears,
		FilesGenerated: filesGenerated,
	}, nil
}

// RecordStage records the duration and outcome of one pipeline stage
func (m *PipelineMetrics) RecordStage(ctx context.Context, stage string, duration time.Duration, err error) {
	attrs := metric.WithAttributes(
		attribute.String("stage", stage),
		attribute.Bool("success", err == nil),
	)
	m.StageDuration.Record(ctx, duration.Seconds(), attrs)
	if err != nil {
		m.StageErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("stage", stage)))
	}
}

// RecordRun counts a finished run by outcome (success, aborted, failed)
func (m *PipelineMetrics) RecordRun(ctx context.Context, outcome string) {
	m.RunsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// RecordModel records the R² of a fitted trend model
func (m *PipelineMetrics) RecordModel(ctx context.Context, target string, r2 float64) {
	m.ModelR2.Record(ctx, r2, metric.WithAttributes(attribute.String("target", target)))
}

// WriteMetricsFile writes every gathered metric to path in the Prometheus text format
func (p *OTelProviders) WriteMetricsFile(path string) error {
	if p.Registry == nil {
		return errors.New("metrics are disabled")
	}
	return prometheus.WriteToTextfile(path, p.Registry)
}

// Shutdown flushes and stops the providers
func (p *OTelProviders) Shutdown(ctx context.Context) error {
	var errs []error

	if p.TracerProvider != nil {
		if err := p.TracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown failed: %w", err))
		}
	}

	if p.MeterProvider != nil {
		if err := p.MeterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown failed: %w", err))
		}
	}

	return errors.Join(errs...)
}

// TraceIDFromContext returns the trace ID of the active span, or ""
func TraceIDFromContext(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}

// RecordError marks the span in ctx as failed
func RecordError(ctx context.Context, err error) {
	if err == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

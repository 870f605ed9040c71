//
// Tencent is pleased to support the open source community by making trpc-attendance-bot available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-attendance-bot is licensed under the Apache License Version 2.0.
//
//

// Package metric wires OpenTelemetry metrics for the bot.
package metric

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	noopm "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"

	itelemetry "trpc.group/trpc-go/trpc-attendance-bot/internal/telemetry"
)

var (
	// Meter is the global OpenTelemetry meter for the bot.
	Meter metric.Meter = noopm.Meter{}
)

// Start installs an OTLP meter provider and points Meter at it.
// OTEL_EXPORTER_OTLP_METRICS_ENDPOINT and OTEL_EXPORTER_OTLP_ENDPOINT are
// honoured when no endpoint option is given.
func Start(ctx context.Context, opts ...Option) (clean func() error, err error) {
	options := &options{
		serviceName:      itelemetry.ServiceName,
		serviceVersion:   itelemetry.ServiceVersion,
		serviceNamespace: itelemetry.ServiceNamespace,
		protocol:         itelemetry.ProtocolGRPC,
	}
	for _, opt := range opts {
		opt(options)
	}
	if options.metricsEndpoint == "" {
		options.metricsEndpoint = metricsEndpoint(options.protocol)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNamespace(options.serviceNamespace),
			semconv.ServiceName(options.serviceName),
			semconv.ServiceVersion(options.serviceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	var exporter sdkmetric.Exporter
	switch options.protocol {
	case itelemetry.ProtocolHTTP:
		exporter, err = otlpmetrichttp.New(ctx,
			otlpmetrichttp.WithEndpoint(options.metricsEndpoint),
			otlpmetrichttp.WithInsecure(),
		)
	default:
		conn, connErr := itelemetry.NewGRPCConn(options.metricsEndpoint)
		if connErr != nil {
			return nil, fmt.Errorf("failed to initialize metrics connection: %w", connErr)
		}
		exporter, err = otlpmetricgrpc.New(ctx, otlpmetricgrpc.WithGRPCConn(conn))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(provider)

	Meter = provider.Meter(itelemetry.InstrumentName)
	return func() error {
		if err := provider.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown MeterProvider: %w", err)
		}
		return nil
	}, nil
}

func metricsEndpoint(protocol string) string {
	if endpoint := os.Getenv("OTEL_EXPORTER_OTLP_METRICS_ENDPOINT"); endpoint != "" {
		return endpoint
	}
	if endpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); endpoint != "" {
		return endpoint
	}
	if protocol == itelemetry.ProtocolHTTP {
		return "localhost:4318"
	}
	return "localhost:4317"
}

// Option is a function that configures meter options.
type Option func(*options)

// options holds the configuration options for meter.
type options struct {
	metricsEndpoint  string
	serviceName      string
	serviceVersion   string
	serviceNamespace string
	protocol         string
}

// WithEndpoint sets the metrics endpoint (host and port) the exporter will
// connect to. It takes precedence over environment variables.
func WithEndpoint(endpoint string) Option {
	return func(opts *options) {
		opts.metricsEndpoint = endpoint
	}
}

// WithProtocol sets the export protocol, "grpc" (default) or "http".
func WithProtocol(protocol string) Option {
	return func(opts *options) {
		opts.protocol = protocol
	}
}

// Recorder holds the bot's instruments.
type Recorder struct {
	submitted metric.Int64Counter
	failed    metric.Int64Counter
	pending   metric.Int64UpDownCounter
	resets    metric.Int64Counter
	handle    metric.Float64Histogram
}

// NewRecorder creates the bot's instruments on m.
func NewRecorder(m metric.Meter) (*Recorder, error) {
	submitted, err := m.Int64Counter("attendance.records.submitted",
		metric.WithDescription("Records written to the attendance table."))
	if err != nil {
		return nil, fmt.Errorf("create submitted counter: %w", err)
	}
	failed, err := m.Int64Counter("attendance.deliveries.failed",
		metric.WithDescription("Outbound deliveries dropped after a failure."))
	if err != nil {
		return nil, fmt.Errorf("create failed counter: %w", err)
	}
	pending, err := m.Int64UpDownCounter("attendance.queue.pending",
		metric.WithDescription("Submissions waiting in the queue."))
	if err != nil {
		return nil, fmt.Errorf("create pending counter: %w", err)
	}
	resets, err := m.Int64Counter("attendance.sessions.reset",
		metric.WithDescription("Sessions returned to their initial shape."))
	if err != nil {
		return nil, fmt.Errorf("create reset counter: %w", err)
	}
	handle, err := m.Float64Histogram("attendance.handler.duration",
		metric.WithDescription("Time spent handling one inbound event."),
		metric.WithUnit("s"))
	if err != nil {
		return nil, fmt.Errorf("create handler histogram: %w", err)
	}
	return &Recorder{
		submitted: submitted,
		failed:    failed,
		pending:   pending,
		resets:    resets,
		handle:    handle,
	}, nil
}

// Noop returns a recorder whose instruments discard everything.
func Noop() *Recorder {
	r, _ := NewRecorder(noopm.Meter{})
	return r
}

// Submitted counts a record written for format.
func (r *Recorder) Submitted(ctx context.Context, format string) {
	r.submitted.Add(ctx, 1, metric.WithAttributes(attribute.String("format", format)))
}

// Failed counts a dropped delivery of kind ("record" or "notification").
func (r *Recorder) Failed(ctx context.Context, kind string) {
	r.failed.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

// Pending moves the queue depth by delta.
func (r *Recorder) Pending(ctx context.Context, delta int64) {
	r.pending.Add(ctx, delta)
}

// SessionReset counts a session of one user being reset.
func (r *Recorder) SessionReset(ctx context.Context) {
	r.resets.Add(ctx, 1)
}

// Handled records the duration of one inbound event of kind.
func (r *Recorder) Handled(ctx context.Context, kind string, d time.Duration, err error) {
	r.handle.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.Bool("error", err != nil),
	))
}

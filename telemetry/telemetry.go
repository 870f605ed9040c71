//
// Tencent is pleased to support the open source community by making trpc-attendance-bot available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-attendance-bot is licensed under the Apache License Version 2.0.
//
//

// Package telemetry starts tracing and metrics together.
package telemetry

import (
	"context"
	"errors"
	"fmt"

	"trpc.group/trpc-go/trpc-attendance-bot/telemetry/metric"
	"trpc.group/trpc-go/trpc-attendance-bot/telemetry/trace"
)

// Config selects the OTLP collector. An empty endpoint falls back to the
// OTEL_EXPORTER_OTLP_* environment variables.
type Config struct {
	Enabled     bool   `mapstructure:"enabled"`
	Protocol    string `mapstructure:"protocol"`
	Endpoint    string `mapstructure:"endpoint"`
	ServiceName string `mapstructure:"service_name"`
}

// Start installs the tracer and meter providers described by cfg. When
// telemetry is disabled the global noop tracer and meter stay in place.
func Start(ctx context.Context, cfg Config) (clean func() error, err error) {
	if !cfg.Enabled {
		return func() error { return nil }, nil
	}

	traceOpts := []trace.Option{trace.WithProtocol(cfg.Protocol)}
	metricOpts := []metric.Option{metric.WithProtocol(cfg.Protocol)}
	if cfg.Endpoint != "" {
		traceOpts = append(traceOpts, trace.WithEndpoint(cfg.Endpoint))
		metricOpts = append(metricOpts, metric.WithEndpoint(cfg.Endpoint))
	}
	if cfg.ServiceName != "" {
		traceOpts = append(traceOpts, trace.WithServiceName(cfg.ServiceName))
	}

	cleanTrace, err := trace.Start(ctx, traceOpts...)
	if err != nil {
		return nil, fmt.Errorf("start tracing: %w", err)
	}
	cleanMetric, err := metric.Start(ctx, metricOpts...)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("start metrics: %w", err), cleanTrace())
	}
	return func() error {
		return errors.Join(cleanTrace(), cleanMetric())
	}, nil
}

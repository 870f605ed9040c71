//
// Tencent is pleased to support the open source community by making trpc-attendance-bot available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-attendance-bot is licensed under the Apache License Version 2.0.
//
//

// Package telemetry holds names and helpers shared by the tracing and metric
// packages.
package telemetry

import (
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// telemetry service constants.
const (
	ServiceName      = "attendance-bot"
	ServiceVersion   = "v0.1.0"
	ServiceNamespace = "trpc-attendance-bot"
	InstrumentName   = "trpc.attendance.bot"

	SpanNameHandle  = "menu.handle"
	SpanNameFetch   = "airtable.fetch"
	SpanNameSubmit  = "airtable.submit"
	SpanNameProcess = "queue.process"
)

const (
	// ProtocolGRPC uses gRPC protocol for OTLP exporter.
	ProtocolGRPC string = "grpc"
	// ProtocolHTTP uses HTTP protocol for OTLP exporter.
	ProtocolHTTP string = "http"
)

// telemetry attribute keys.
const (
	KeyUserID       = "attendance.user_id"
	KeyScreen       = "attendance.screen"
	KeyToken        = "attendance.token"
	KeyTable        = "attendance.table"
	KeySubmissionID = "attendance.submission_id"
	KeyRecords      = "attendance.records"
)

// TraceHandle annotates a menu handler span.
func TraceHandle(span trace.Span, userID int64, token, screen string) {
	span.SetAttributes(
		attribute.Int64(KeyUserID, userID),
		attribute.String(KeyToken, token),
		attribute.String(KeyScreen, screen),
	)
}

// NewGRPCConn creates a new gRPC connection to the OpenTelemetry Collector.
func NewGRPCConn(endpoint string) (*grpc.ClientConn, error) {
	// Note the use of insecure transport here. TLS is recommended in production.
	conn, err := grpc.NewClient(endpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create gRPC connection to collector: %w", err)
	}
	return conn, nil
}

//
// Tencent is pleased to support the open source community by making trpc-attendance-bot available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-attendance-bot is licensed under the Apache License Version 2.0.
//
//

package queue

import (
	"time"

	"trpc.group/trpc-go/trpc-attendance-bot/telemetry/metric"
)

const (
	defaultInterval     = 5 * time.Second
	defaultLineInterval = time.Second
	defaultCallTimeout  = 10 * time.Second
)

type options struct {
	interval     time.Duration
	lineInterval time.Duration
	callTimeout  time.Duration
	recorder     *metric.Recorder
}

var defaultOptions = options{
	interval:     defaultInterval,
	lineInterval: defaultLineInterval,
	callTimeout:  defaultCallTimeout,
}

// Option configures a Queue.
type Option func(*options)

// WithInterval sets the pause after each processed submission.
func WithInterval(d time.Duration) Option {
	return func(o *options) {
		if d >= 0 {
			o.interval = d
		}
	}
}

// WithLineInterval sets the pause between fan-out notification lines.
func WithLineInterval(d time.Duration) Option {
	return func(o *options) {
		if d >= 0 {
			o.lineInterval = d
		}
	}
}

// WithCallTimeout bounds each call to the sink or the notifier.
func WithCallTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.callTimeout = d
		}
	}
}

// WithRecorder reports queue metrics to r.
func WithRecorder(r *metric.Recorder) Option {
	return func(o *options) { o.recorder = r }
}

//
// Tencent is pleased to support the open source community by making trpc-attendance-bot available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-attendance-bot is licensed under the Apache License Version 2.0.
//
//

package menu

import (
	"time"

	"golang.org/x/text/language"

	"trpc.group/trpc-go/trpc-attendance-bot/telemetry/metric"
)

const defaultCallTimeout = 10 * time.Second

type options struct {
	allowed     map[string]bool
	broadcaster Broadcaster
	now         func() time.Time
	callTimeout time.Duration
	locale      language.Tag
	recorder    *metric.Recorder
}

func newOptions(opts ...Option) options {
	o := options{
		allowed:     map[string]bool{},
		now:         time.Now,
		callTimeout: defaultCallTimeout,
		locale:      language.Russian,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.recorder == nil {
		o.recorder = metric.Noop()
	}
	return o
}

// Option configures a Navigator.
type Option func(*options)

// WithAllowedUsers sets the usernames allowed to use the menu.
func WithAllowedUsers(users ...string) Option {
	return func(o *options) {
		for _, u := range users {
			o.allowed[u] = true
		}
	}
}

// WithBroadcaster copies every finalized summary to b, best effort.
func WithBroadcaster(b Broadcaster) Option {
	return func(o *options) { o.broadcaster = b }
}

// WithClock replaces time.Now for date keyboards.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithCallTimeout bounds every record store call made by a handler.
func WithCallTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.callTimeout = d
		}
	}
}

// WithLocale sets the collation and casing locale for option names and
// place labels.
func WithLocale(tag language.Tag) Option {
	return func(o *options) { o.locale = tag }
}

// WithRecorder reports handler durations to r.
func WithRecorder(r *metric.Recorder) Option {
	return func(o *options) { o.recorder = r }
}

//
// Tencent is pleased to support the open source community by making trpc-attendance-bot available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-attendance-bot is licensed under the Apache License Version 2.0.
//
//

// Package queue delivers finalized records to the record store one at a time,
// paced so that a rate-limited downstream never sees two writes in flight.
package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	itelemetry "trpc.group/trpc-go/trpc-attendance-bot/internal/telemetry"
	"trpc.group/trpc-go/trpc-attendance-bot/log"
	"trpc.group/trpc-go/trpc-attendance-bot/record"
	"trpc.group/trpc-go/trpc-attendance-bot/telemetry/metric"
	"trpc.group/trpc-go/trpc-attendance-bot/telemetry/trace"
)

var (
	// ErrAlreadyRunning is returned by Run when another Run is active.
	ErrAlreadyRunning = errors.New("queue: already running")
	// ErrSubmit marks a record write that failed; the submission is dropped.
	ErrSubmit = errors.New("queue: submit record")
)

// Sink writes records.
type Sink interface {
	SubmitRecord(ctx context.Context, fields map[string]any) error
}

// Notifier posts audit lines.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// Submission is a record waiting for delivery.
type Submission struct {
	ID         string
	Record     record.Record
	EnqueuedAt time.Time
}

// Stats describes the queue for inspection.
type Stats struct {
	Pending   int   `json:"pending"`
	Processed int64 `json:"processed"`
	Failed    int64 `json:"failed"`
	Running   bool  `json:"running"`
}

// Queue is an unbounded FIFO of submissions with a single consumer.
type Queue struct {
	sink     Sink
	notifier Notifier
	opts     options

	mu    sync.Mutex
	items []Submission
	wake  chan struct{}

	running   atomic.Bool
	processed atomic.Int64
	failed    atomic.Int64
}

// New creates a queue writing to sink and notifying through notifier.
func New(sink Sink, notifier Notifier, opts ...Option) *Queue {
	o := defaultOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.recorder == nil {
		o.recorder = metric.Noop()
	}
	return &Queue{
		sink:     sink,
		notifier: notifier,
		opts:     o,
		wake:     make(chan struct{}, 1),
	}
}

// Enqueue appends rec and returns its submission. It never blocks.
func (q *Queue) Enqueue(rec record.Record) Submission {
	sub := Submission{ID: uuid.NewString(), Record: rec, EnqueuedAt: time.Now()}
	q.mu.Lock()
	q.items = append(q.items, sub)
	q.mu.Unlock()

	q.opts.recorder.Pending(context.Background(), 1)
	log.Debugf("queue: enqueued %s (%s)", sub.ID, rec.SummaryLine())
	select {
	case q.wake <- struct{}{}:
	default:
	}
	return sub
}

// Stats returns the current counters.
func (q *Queue) Stats() Stats {
	q.mu.Lock()
	pending := len(q.items)
	q.mu.Unlock()
	return Stats{
		Pending:   pending,
		Processed: q.processed.Load(),
		Failed:    q.failed.Load(),
		Running:   q.running.Load(),
	}
}

// Run drains the queue until ctx is done. Items are processed in arrival
// order, each to completion, and Interval elapses after every item before
// the next one starts. Run returns nil when ctx is cancelled.
func (q *Queue) Run(ctx context.Context) error {
	if !q.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer q.running.Store(false)

	log.Infof("queue: worker started (interval %s, line interval %s)", q.opts.interval, q.opts.lineInterval)
	for {
		sub, ok := q.pop()
		if !ok {
			select {
			case <-ctx.Done():
				log.Infof("queue: worker stopped, %d pending", q.Stats().Pending)
				return nil
			case <-q.wake:
				continue
			}
		}
		q.process(ctx, sub)
		if !sleep(ctx, q.opts.interval) {
			log.Infof("queue: worker stopped, %d pending", q.Stats().Pending)
			return nil
		}
	}
}

func (q *Queue) pop() (Submission, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return Submission{}, false
	}
	sub := q.items[0]
	q.items[0] = Submission{}
	q.items = q.items[1:]
	return sub, true
}

func (q *Queue) process(ctx context.Context, sub Submission) {
	ctx, span := trace.Tracer.Start(ctx, itelemetry.SpanNameProcess)
	defer span.End()
	span.SetAttributes(attribute.String(itelemetry.KeySubmissionID, sub.ID))
	q.opts.recorder.Pending(ctx, -1)

	rec := sub.Record
	if err := q.submit(ctx, rec); err != nil {
		err = fmt.Errorf("%w %s: %w", ErrSubmit, sub.ID, err)
		log.Errorf("queue: dropping submission: %v", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		q.failed.Add(1)
		q.opts.recorder.Failed(ctx, "record")
		return
	}
	q.opts.recorder.Submitted(ctx, string(rec.Format))

	for i, line := range rec.Lines() {
		if i > 0 && !sleep(ctx, q.opts.lineInterval) {
			return
		}
		if err := q.notify(ctx, line); err != nil {
			log.Warnf("queue: notification %d of %s failed: %v", i+1, sub.ID, err)
			q.opts.recorder.Failed(ctx, "notification")
		}
	}
	q.processed.Add(1)
	log.Infof("queue: delivered %s", sub.ID)
}

func (q *Queue) submit(ctx context.Context, rec record.Record) error {
	ctx, cancel := context.WithTimeout(ctx, q.opts.callTimeout)
	defer cancel()
	return q.sink.SubmitRecord(ctx, rec.Fields())
}

func (q *Queue) notify(ctx context.Context, line string) error {
	ctx, cancel := context.WithTimeout(ctx, q.opts.callTimeout)
	defer cancel()
	return q.notifier.Notify(ctx, line)
}

// sleep waits for d and reports false if ctx ended first.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

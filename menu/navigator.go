//
// Tencent is pleased to support the open source community by making trpc-attendance-bot available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-attendance-bot is licensed under the Apache License Version 2.0.
//
//

// Package menu implements the per-user navigation state machine of the
// attendance menu: date, format, location and people screens, plus the
// earnings report.
package menu

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel/codes"
	"golang.org/x/text/cases"
	"golang.org/x/text/collate"

	"trpc.group/trpc-go/trpc-attendance-bot/airtable"
	itelemetry "trpc.group/trpc-go/trpc-attendance-bot/internal/telemetry"
	"trpc.group/trpc-go/trpc-attendance-bot/ledger"
	"trpc.group/trpc-go/trpc-attendance-bot/log"
	"trpc.group/trpc-go/trpc-attendance-bot/queue"
	"trpc.group/trpc-go/trpc-attendance-bot/record"
	"trpc.group/trpc-go/trpc-attendance-bot/session"
	"trpc.group/trpc-go/trpc-attendance-bot/telemetry/trace"
)

// Gateway reads from the record store.
type Gateway interface {
	FetchOptions(ctx context.Context, user string) ([]airtable.Option, error)
	FetchPlaces(ctx context.Context, user string) ([]airtable.Option, error)
	FetchLedger(ctx context.Context, user, since string) ([]ledger.Entry, error)
}

// Enqueuer accepts finalized records for delivery.
type Enqueuer interface {
	Enqueue(rec record.Record) queue.Submission
}

// Broadcaster posts a line to a chat other than the user's.
type Broadcaster interface {
	Notify(ctx context.Context, text string) error
}

// User identifies who sent an event.
type User struct {
	ID   int64
	Name string
}

// Result tells the transport what to show after an event.
type Result struct {
	// View replaces the message the event came from.
	View View
	// Followup, when set, is sent as a new message after View.
	Followup *View
	// Answer is the callback acknowledgement text.
	Answer string
}

// Navigator drives the menu of every user.
type Navigator struct {
	sessions session.Service
	gateway  Gateway
	queue    Enqueuer
	opts     options
}

// NewNavigator creates a navigator.
func NewNavigator(sessions session.Service, gateway Gateway, q Enqueuer, opts ...Option) *Navigator {
	return &Navigator{
		sessions: sessions,
		gateway:  gateway,
		queue:    q,
		opts:     newOptions(opts...),
	}
}

// Allowed reports whether user may use the menu.
func (n *Navigator) Allowed(user User) bool {
	return user.Name != "" && n.opts.allowed[user.Name]
}

// Start shows the date screen with whatever the user already chose.
func (n *Navigator) Start(ctx context.Context, user User) (View, error) {
	if !n.Allowed(user) {
		return View{}, fmt.Errorf("%w: %q", ErrAccessDenied, user.Name)
	}
	unlock := n.sessions.Lock(user.ID)
	defer unlock()

	s := n.sessions.Get(user.ID)
	s.Screen = session.ScreenAwaitingDate
	s.ClearOptions()
	s.Touch()
	return Render(s, user.Name, n.opts.now()), nil
}

// Handle applies one callback payload to the user's session. A payload that
// does not apply to the current screen changes nothing and the current
// screen is shown again. When a record store read fails, the session is
// restored to its state before the event and the error wraps ErrFetch.
func (n *Navigator) Handle(ctx context.Context, user User, data string) (res Result, err error) {
	if !n.Allowed(user) {
		return Result{}, fmt.Errorf("%w: %q", ErrAccessDenied, user.Name)
	}

	start := time.Now()
	ctx, span := trace.Tracer.Start(ctx, itelemetry.SpanNameHandle)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		n.opts.recorder.Handled(ctx, "callback", time.Since(start), err)
	}()

	unlock := n.sessions.Lock(user.ID)
	defer unlock()

	s := n.sessions.Get(user.ID)
	tok := ParseToken(data)
	itelemetry.TraceHandle(span, user.ID, data, s.Screen.String())

	before := s.Clone()
	res, err = n.dispatch(ctx, user, s, tok)
	if err != nil {
		s.Restore(before)
		return Result{}, err
	}
	return res, nil
}

func (n *Navigator) dispatch(ctx context.Context, user User, s *session.Session, tok Token) (Result, error) {
	if tok.Kind == KindBackToStart {
		s.Screen = session.ScreenAwaitingDate
		return n.show(s, user), nil
	}

	switch s.Screen {
	case session.ScreenAwaitingDate:
		switch tok.Kind {
		case KindDate:
			s.Date = tok.Value
			s.Screen = session.ScreenAwaitingFormat
		case KindRefreshDates:
			s = n.sessions.Reset(user.ID)
		case KindViewEarnings:
			s.Screen = session.ScreenEarningsPeriod
		}

	case session.ScreenAwaitingFormat:
		switch tok.Kind {
		case KindFormat:
			s.Format = tok.Format
			if tok.Format.Counted() {
				s.Location = ""
				if err := n.enterSelection(ctx, user, s); err != nil {
					return Result{}, err
				}
				break
			}
			if err := n.enterLocation(ctx, user, s); err != nil {
				return Result{}, err
			}
		case KindBackToDates:
			s.Screen = session.ScreenAwaitingDate
		}

	case session.ScreenAwaitingLocation:
		switch tok.Kind {
		case KindLocation:
			s.Location = tok.Value
			if err := n.enterSelection(ctx, user, s); err != nil {
				return Result{}, err
			}
		case KindBackToFormat:
			s.Locations = nil
			s.Screen = session.ScreenAwaitingFormat
		}

	case session.ScreenAwaitingSelection:
		switch tok.Kind {
		case KindOption:
			s.Selection.Apply(tok.Value)
		case KindMinus:
			s.Selection.Remove(tok.Value)
		case KindPrev:
			s.SetPage(tok.Page - 1)
		case KindNext:
			s.SetPage(tok.Page + 1)
		case KindDone:
			return n.finalize(ctx, user, s), nil
		case KindBackToLocation:
			s.ClearOptions()
			if s.Format.Counted() {
				s.Screen = session.ScreenAwaitingFormat
				break
			}
			if err := n.enterLocation(ctx, user, s); err != nil {
				return Result{}, err
			}
		}

	case session.ScreenEarningsPeriod:
		switch tok.Kind {
		case KindEarningsDate:
			if err := n.loadEarnings(ctx, user, s, tok.Value); err != nil {
				return Result{}, err
			}
			s.Screen = session.ScreenEarningsSummary
		case KindBackToDates:
			s.Screen = session.ScreenAwaitingDate
		}

	case session.ScreenEarningsSummary:
		if tok.Kind == KindBreakdown {
			s.Screen = session.ScreenEarningsBreakdown
		}
	}
	return n.show(s, user), nil
}

func (n *Navigator) show(s *session.Session, user User) Result {
	s.Touch()
	return Result{View: Render(s, user.Name, n.opts.now())}
}

// enterSelection fetches the people of user and rebuilds the selection.
func (n *Navigator) enterSelection(ctx context.Context, user User, s *session.Session) error {
	ctx, cancel := context.WithTimeout(ctx, n.opts.callTimeout)
	defer cancel()
	rows, err := n.gateway.FetchOptions(ctx, user.Name)
	if err != nil {
		log.Errorf("menu: fetch people for %s: %v", user.Name, err)
		return fmt.Errorf("%w: people: %w", ErrFetch, err)
	}
	names := n.optionNames(rows)
	if len(names) == 0 {
		log.Warnf("menu: no people assigned to %s", user.Name)
	}
	s.LoadOptions(names)
	s.Screen = session.ScreenAwaitingSelection
	return nil
}

// enterLocation fetches the places of user.
func (n *Navigator) enterLocation(ctx context.Context, user User, s *session.Session) error {
	ctx, cancel := context.WithTimeout(ctx, n.opts.callTimeout)
	defer cancel()
	rows, err := n.gateway.FetchPlaces(ctx, user.Name)
	if err != nil {
		log.Errorf("menu: fetch places for %s: %v", user.Name, err)
		return fmt.Errorf("%w: places: %w", ErrFetch, err)
	}
	s.Locations = n.places(rows)
	s.Screen = session.ScreenAwaitingLocation
	return nil
}

func (n *Navigator) loadEarnings(ctx context.Context, user User, s *session.Session, since string) error {
	ctx, cancel := context.WithTimeout(ctx, n.opts.callTimeout)
	defer cancel()
	entries, err := n.gateway.FetchLedger(ctx, user.Name, since)
	if err != nil {
		log.Errorf("menu: fetch ledger for %s since %s: %v", user.Name, since, err)
		return fmt.Errorf("%w: ledger: %w", ErrFetch, err)
	}
	s.Earnings = entries
	s.EarningsSince = since
	return nil
}

// finalize freezes the selection into a record, queues it and starts over.
func (n *Navigator) finalize(ctx context.Context, user User, s *session.Session) Result {
	rec := record.New(user.Name, s.Date, s.Format, s.Location, s.Selection)
	sub := n.queue.Enqueue(rec)
	log.Infof("menu: %s finalized %s: %s", user.Name, sub.ID, rec.SummaryLine())

	if n.opts.broadcaster != nil {
		bctx, cancel := context.WithTimeout(ctx, n.opts.callTimeout)
		if err := n.opts.broadcaster.Notify(bctx, rec.SummaryLine()); err != nil {
			log.Warnf("menu: broadcast %s: %v", sub.ID, err)
		}
		cancel()
	}

	fresh := n.sessions.Reset(user.ID)
	next := Render(fresh, user.Name, n.opts.now())
	return Result{
		View:     summaryView(rec),
		Followup: &next,
		Answer:   "Your choice has been saved",
	}
}

// optionNames keeps the distinct non-empty names of rows in collation order.
func (n *Navigator) optionNames(rows []airtable.Option) []string {
	seen := make(map[string]bool, len(rows))
	names := make([]string, 0, len(rows))
	for _, r := range rows {
		if r.Name == "" || seen[r.Name] {
			continue
		}
		seen[r.Name] = true
		names = append(names, r.Name)
	}
	collate.New(n.opts.locale).SortStrings(names)
	for _, name := range oversized(names) {
		log.Warnf("menu: option %q is longer than %d bytes of callback data", name, maxDataLen)
	}
	return names
}

// places turns place rows into buttons, labelled with the place name
// capitalized and keyed by its meaning.
func (n *Navigator) places(rows []airtable.Option) []session.Place {
	upper := cases.Upper(n.opts.locale)
	out := make([]session.Place, 0, len(rows))
	for _, r := range rows {
		if r.Meaning == "" {
			continue
		}
		label := r.Place
		if first, size := utf8.DecodeRuneInString(label); first != utf8.RuneError {
			label = upper.String(string(first)) + label[size:]
		}
		out = append(out, session.Place{Label: label, Key: r.Meaning})
	}
	return out
}

//
// Tencent is pleased to support the open source community by making trpc-attendance-bot available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-attendance-bot is licensed under the Apache License Version 2.0.
//
//

// Package session provides the per-user menu session and the service that
// owns it.
package session

import (
	"time"

	"trpc.group/trpc-go/trpc-attendance-bot/ledger"
	"trpc.group/trpc-go/trpc-attendance-bot/pagination"
	"trpc.group/trpc-go/trpc-attendance-bot/record"
	"trpc.group/trpc-go/trpc-attendance-bot/selection"
)

// Screen is the menu screen a session is currently showing.
type Screen int

// Menu screens. AwaitingDate is the initial screen; Completed is left
// immediately for AwaitingDate once a record is finalized.
const (
	ScreenAwaitingDate Screen = iota
	ScreenAwaitingFormat
	ScreenAwaitingLocation
	ScreenAwaitingSelection
	ScreenCompleted
	ScreenEarningsPeriod
	ScreenEarningsSummary
	ScreenEarningsBreakdown
)

var screenNames = map[Screen]string{
	ScreenAwaitingDate:      "awaiting_date",
	ScreenAwaitingFormat:    "awaiting_format",
	ScreenAwaitingLocation:  "awaiting_location",
	ScreenAwaitingSelection: "awaiting_selection",
	ScreenCompleted:         "completed",
	ScreenEarningsPeriod:    "earnings_period",
	ScreenEarningsSummary:   "earnings_summary",
	ScreenEarningsBreakdown: "earnings_breakdown",
}

// String returns the snake_case screen name.
func (s Screen) String() string {
	if name, ok := screenNames[s]; ok {
		return name
	}
	return "unknown"
}

// Place is a location the coach can train at.
type Place struct {
	Label string `json:"label"` // Label is the human name shown on the button.
	Key   string `json:"key"`   // Key is the value stored on the record.
}

// Session is the mutable per-user record of in-progress menu choices.
type Session struct {
	UserID    int64               `json:"userID"`
	Screen    Screen              `json:"screen"`
	Date      string              `json:"date"`
	Format    record.Format       `json:"format"`
	Location  string              `json:"location"`
	Locations []Place             `json:"locations,omitempty"`
	Options   []string            `json:"options,omitempty"`
	Selection selection.Selection `json:"-"`
	Page      int                 `json:"page"`

	EarningsSince string         `json:"earningsSince,omitempty"`
	Earnings      []ledger.Entry `json:"earnings,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// New returns a session in its initial empty shape.
func New(userID int64) *Session {
	now := time.Now()
	return &Session{
		UserID:    userID,
		Screen:    ScreenAwaitingDate,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// LoadOptions replaces the option universe and rebuilds the selection for
// the session's format from scratch. Nothing carries over from earlier
// options.
func (s *Session) LoadOptions(options []string) {
	s.Options = options
	if s.Format.Counted() {
		s.Selection = selection.NewCounterSet(options)
	} else {
		s.Selection = selection.NewToggleSet(options)
	}
	s.Page = pagination.Clamp(len(options), 0)
}

// ClearOptions drops the option universe and selection.
func (s *Session) ClearOptions() {
	s.Options = nil
	s.Selection = nil
	s.Page = 0
}

// SetPage moves to page, clamped into range.
func (s *Session) SetPage(page int) {
	s.Page = pagination.Clamp(len(s.Options), page)
}

// ClearChoices resets the date, format and location to unset.
func (s *Session) ClearChoices() {
	s.Date = ""
	s.Format = record.FormatUnset
	s.Location = ""
}

// Touch records a modification.
func (s *Session) Touch() { s.UpdatedAt = time.Now() }

// Clone returns a copy of s that shares no mutable state with it. Handlers
// use it to roll back a transition whose collaborator call failed.
func (s *Session) Clone() *Session {
	c := *s
	c.Locations = append([]Place(nil), s.Locations...)
	c.Options = append([]string(nil), s.Options...)
	c.Earnings = append([]ledger.Entry(nil), s.Earnings...)
	c.Selection = cloneSelection(s.Selection)
	return &c
}

// Restore overwrites s with the contents of from.
func (s *Session) Restore(from *Session) { *s = *from }

func cloneSelection(sel selection.Selection) selection.Selection {
	switch v := sel.(type) {
	case *selection.ToggleSet:
		return v.Clone()
	case *selection.CounterSet:
		return v.Clone()
	default:
		return nil
	}
}

// Snapshot is a read-only view of a session for inspection.
type Snapshot struct {
	UserID    int64         `json:"userID"`
	Screen    string        `json:"screen"`
	Date      string        `json:"date,omitempty"`
	Format    record.Format `json:"format,omitempty"`
	Location  string        `json:"location,omitempty"`
	Options   int           `json:"options"`
	Selected  string        `json:"selected,omitempty"`
	Page      int           `json:"page"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// Snapshot captures the current state of s.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		UserID:    s.UserID,
		Screen:    s.Screen.String(),
		Date:      s.Date,
		Format:    s.Format,
		Location:  s.Location,
		Options:   len(s.Options),
		Page:      s.Page,
		UpdatedAt: s.UpdatedAt,
	}
	if s.Selection != nil {
		snap.Selected = s.Selection.Summarize()
	}
	return snap
}

// Service is the interface that session stores implement.
type Service interface {
	// Get returns the session of userID, creating a default one if absent.
	Get(userID int64) *Session
	// Reset replaces the session of userID with a fresh default session.
	Reset(userID int64) *Session
	// Lock acquires the per-user guard and returns its release func. Handlers
	// hold it for their whole duration, including collaborator calls.
	Lock(userID int64) (unlock func())
	// Peek returns a snapshot of userID's session without creating one. It
	// waits for the user's guard, so it must not be called while holding it.
	Peek(userID int64) (Snapshot, bool)
	// List returns snapshots of all sessions ordered by user id, each taken
	// under its user's guard.
	List() []Snapshot
	// Len returns the number of sessions.
	Len() int
}

//
// Tencent is pleased to support the open source community by making trpc-attendance-bot available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-attendance-bot is licensed under the Apache License Version 2.0.
//
//

// Package inmemory provides the in-memory session service.
package inmemory

import (
	"sort"
	"sync"

	"trpc.group/trpc-go/trpc-attendance-bot/log"
	"trpc.group/trpc-go/trpc-attendance-bot/session"
)

var _ session.Service = (*SessionService)(nil)

// SessionService keeps one session per user for the process lifetime.
// Entries are never evicted.
type SessionService struct {
	mu       sync.RWMutex
	sessions map[int64]*session.Session

	locksMu sync.Mutex
	locks   map[int64]*sync.Mutex

	opts serviceOpts
}

// NewSessionService creates a new in-memory session service.
func NewSessionService(options ...ServiceOpt) *SessionService {
	opts := defaultOptions
	for _, option := range options {
		option(&opts)
	}
	return &SessionService{
		sessions: make(map[int64]*session.Session, opts.capacity),
		locks:    make(map[int64]*sync.Mutex, opts.capacity),
		opts:     opts,
	}
}

// Get returns the session of userID, lazily creating it.
func (s *SessionService) Get(userID int64) *session.Session {
	s.mu.RLock()
	sess, ok := s.sessions[userID]
	s.mu.RUnlock()
	if ok {
		return sess
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok = s.sessions[userID]; ok {
		return sess
	}
	sess = session.New(userID)
	s.sessions[userID] = sess
	log.Debugf("session created for user %d", userID)
	return sess
}

// Reset replaces the session of userID with a fresh default session.
func (s *SessionService) Reset(userID int64) *session.Session {
	sess := session.New(userID)
	s.mu.Lock()
	s.sessions[userID] = sess
	s.mu.Unlock()
	log.Debugf("session reset for user %d", userID)
	if s.opts.onReset != nil {
		s.opts.onReset(userID)
	}
	return sess
}

// Lock acquires the guard of userID. Guards are created on demand and
// independent of whether a session exists.
func (s *SessionService) Lock(userID int64) func() {
	s.locksMu.Lock()
	l, ok := s.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[userID] = l
	}
	s.locksMu.Unlock()

	l.Lock()
	return l.Unlock
}

// Peek returns a snapshot of userID's session without creating it. The
// snapshot is taken under the user's guard.
func (s *SessionService) Peek(userID int64) (session.Snapshot, bool) {
	s.mu.RLock()
	_, ok := s.sessions[userID]
	s.mu.RUnlock()
	if !ok {
		return session.Snapshot{}, false
	}
	return s.snapshot(userID), true
}

// List returns snapshots of all sessions ordered by user id.
func (s *SessionService) List() []session.Snapshot {
	s.mu.RLock()
	ids := make([]int64, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	s.mu.RUnlock()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]session.Snapshot, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.snapshot(id))
	}
	return out
}

// snapshot reads the current session of userID while holding its guard, so
// it never observes a handler mid-transition. Sessions are never removed,
// only replaced by Reset.
func (s *SessionService) snapshot(userID int64) session.Snapshot {
	unlock := s.Lock(userID)
	defer unlock()
	s.mu.RLock()
	sess := s.sessions[userID]
	s.mu.RUnlock()
	return sess.Snapshot()
}

// Len returns the number of sessions.
func (s *SessionService) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

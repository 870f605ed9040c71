//
// Tencent is pleased to support the open source community by making trpc-attendance-bot available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-attendance-bot is licensed under the Apache License Version 2.0.
//
//

// Package ops provides a small HTTP server for inspecting a running bot:
// liveness, menu sessions and submission queue counters.
package ops

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"trpc.group/trpc-go/trpc-attendance-bot/log"
	"trpc.group/trpc-go/trpc-attendance-bot/queue"
	"trpc.group/trpc-go/trpc-attendance-bot/session"
)

const shutdownTimeout = 5 * time.Second

// QueueStats reports queue counters.
type QueueStats interface {
	Stats() queue.Stats
}

// Server exposes the ops endpoints.
type Server struct {
	router   *mux.Router
	sessions session.Service
	queue    QueueStats
	started  time.Time
	origins  []string
}

// Option configures the Server instance.
type Option func(*Server)

// WithAllowedOrigins restricts CORS to origins. All origins are allowed by
// default.
func WithAllowedOrigins(origins ...string) Option {
	return func(s *Server) { s.origins = origins }
}

// New creates the ops server.
func New(sessions session.Service, q QueueStats, opts ...Option) *Server {
	s := &Server{
		router:   mux.NewRouter(),
		sessions: sessions,
		queue:    q,
		started:  time.Now(),
		origins:  []string{"*"},
	}
	for _, opt := range opts {
		opt(s)
	}

	c := cors.New(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{"Content-Length", "Content-Type"},
	})
	s.router.Use(c.Handler)
	s.registerRoutes()
	return s
}

// Handler returns the http.Handler for the server.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) registerRoutes() {
	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/sessions", s.handleListSessions).Methods(http.MethodGet)
	s.router.HandleFunc("/sessions/{userId}", s.handleGetSession).Methods(http.MethodGet)
	s.router.HandleFunc("/sessions/{userId}", s.handleResetSession).Methods(http.MethodDelete)
	s.router.HandleFunc("/queue", s.handleQueue).Methods(http.MethodGet)
}

// ListenAndServe serves on addr until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Infof("ops: listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

type health struct {
	Status   string `json:"status"`
	Uptime   string `json:"uptime"`
	Sessions int    `json:"sessions"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, health{
		Status:   "ok",
		Uptime:   time.Since(s.started).Round(time.Second).String(),
		Sessions: s.sessions.Len(),
	})
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	log.Debugf("handleListSessions called: path=%s", r.URL.Path)
	s.writeJSON(w, s.sessions.List())
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUserID(w, r)
	if !ok {
		return
	}
	snap, found := s.sessions.Peek(userID)
	if !found {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}
	s.writeJSON(w, snap)
}

func (s *Server) handleResetSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUserID(w, r)
	if !ok {
		return
	}
	if _, found := s.sessions.Peek(userID); !found {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}
	unlock := s.sessions.Lock(userID)
	fresh := s.sessions.Reset(userID)
	unlock()
	log.Infof("ops: reset session of user %d", userID)
	s.writeJSON(w, fresh.Snapshot())
}

func (s *Server) handleQueue(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.queue.Stats())
}

func parseUserID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := mux.Vars(r)["userId"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

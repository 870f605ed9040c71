//
// Tencent is pleased to support the open source community by making trpc-attendance-bot available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-attendance-bot is licensed under the Apache License Version 2.0.
//
//

package airtable

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// APIError is a non-2xx answer from the API.
type APIError struct {
	StatusCode int
	Type       string
	Message    string
}

func newAPIError(status int, body []byte) *APIError {
	e := &APIError{StatusCode: status}
	// The API answers either {"error":{"type":..,"message":..}} or
	// {"error":"NOT_FOUND"}.
	var structured struct {
		Error struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &structured); err == nil && structured.Error.Type != "" {
		e.Type, e.Message = structured.Error.Type, structured.Error.Message
		return e
	}
	var flat struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &flat); err == nil && flat.Error != "" {
		e.Type = flat.Error
		return e
	}
	e.Message = http.StatusText(status)
	return e
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("airtable: status %d: %s", e.StatusCode, e.Type)
	}
	return fmt.Sprintf("airtable: status %d: %s: %s", e.StatusCode, e.Type, e.Message)
}

// Retryable reports whether repeating the request later may succeed.
func (e *APIError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// TransportError wraps a failure to reach the API at all.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string { return fmt.Sprintf("airtable: %s: %v", e.Op, e.Err) }

func (e *TransportError) Unwrap() error { return e.Err }

// Retryable reports true for every transport failure.
func (e *TransportError) Retryable() bool { return true }

// IsRetryable splits errors into retryable (rate limits, server errors,
// timeouts, unreachable host) and fatal (everything else). Nothing in the
// bot retries automatically; the split drives log levels and alerts.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var r interface{ Retryable() bool }
	if errors.As(err, &r) {
		return r.Retryable()
	}
	return false
}

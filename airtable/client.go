//
// Tencent is pleased to support the open source community by making trpc-attendance-bot available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-attendance-bot is licensed under the Apache License Version 2.0.
//
//

// Package airtable is the REST client for the record store holding people,
// places, the attendance log and the earnings ledger.
package airtable

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	itelemetry "trpc.group/trpc-go/trpc-attendance-bot/internal/telemetry"
	"trpc.group/trpc-go/trpc-attendance-bot/log"
	"trpc.group/trpc-go/trpc-attendance-bot/telemetry/trace"
)

const (
	defaultBaseURL  = "https://api.airtable.com/v0"
	defaultPageSize = 100
	defaultTimeout  = 10 * time.Second
)

// Config names the base and tables the client talks to.
type Config struct {
	APIKey        string `mapstructure:"api_key"`
	BaseID        string `mapstructure:"base_id"`
	PeopleTable   string `mapstructure:"people_table"`
	PlacesTable   string `mapstructure:"places_table"`
	RecordsTable  string `mapstructure:"records_table"`
	MessagesTable string `mapstructure:"messages_table"`
	LedgerTable   string `mapstructure:"ledger_table"`
	BaseURL       string `mapstructure:"base_url"`
}

// Client talks to the Airtable REST API.
type Client struct {
	cfg      Config
	http     *http.Client
	pageSize int
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) { cl.http = c }
}

// WithPageSize sets the number of rows requested per page.
func WithPageSize(n int) ClientOption {
	return func(cl *Client) {
		if n > 0 {
			cl.pageSize = n
		}
	}
}

// New creates a client for cfg. Records default to the messages table when
// no dedicated table is configured.
func New(cfg Config, opts ...ClientOption) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.RecordsTable == "" {
		cfg.RecordsTable = cfg.MessagesTable
	}
	c := &Client{
		cfg:      cfg,
		http:     &http.Client{Timeout: defaultTimeout},
		pageSize: defaultPageSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// rawRecord is one row as returned by the list endpoint.
type rawRecord struct {
	ID     string          `json:"id"`
	Fields json.RawMessage `json:"fields"`
}

type listResponse struct {
	Records []rawRecord `json:"records"`
	Offset  string      `json:"offset"`
}

type writeRequest struct {
	Records []writeRecord `json:"records"`
}

type writeRecord struct {
	Fields map[string]any `json:"fields"`
}

// list fetches every row of table matching params, following offsets until
// the API stops returning one.
func (c *Client) list(ctx context.Context, table string, params url.Values) ([]rawRecord, error) {
	ctx, span := trace.Tracer.Start(ctx, itelemetry.SpanNameFetch)
	defer span.End()
	span.SetAttributes(attribute.String(itelemetry.KeyTable, table))

	var (
		records []rawRecord
		offset  string
	)
	for {
		q := url.Values{}
		for k, v := range params {
			q[k] = v
		}
		q.Set("pageSize", strconv.Itoa(c.pageSize))
		if offset != "" {
			q.Set("offset", offset)
		}

		var page listResponse
		if err := c.do(ctx, http.MethodGet, table, q, nil, &page); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		records = append(records, page.Records...)
		if page.Offset == "" {
			break
		}
		offset = page.Offset
	}
	span.SetAttributes(attribute.Int(itelemetry.KeyRecords, len(records)))
	log.Debugf("airtable: fetched %d rows from %s", len(records), table)
	return records, nil
}

// create writes a single row into table.
func (c *Client) create(ctx context.Context, table string, fields map[string]any) error {
	ctx, span := trace.Tracer.Start(ctx, itelemetry.SpanNameSubmit)
	defer span.End()
	span.SetAttributes(attribute.String(itelemetry.KeyTable, table))

	body := writeRequest{Records: []writeRecord{{Fields: fields}}}
	if err := c.do(ctx, http.MethodPost, table, nil, body, nil); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, table string, q url.Values, in, out any) error {
	endpoint := fmt.Sprintf("%s/%s/%s", c.cfg.BaseURL, url.PathEscape(c.cfg.BaseID), url.PathEscape(table))
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}

	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("airtable: encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("airtable: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Op: method + " " + table, Err: err}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Op: method + " " + table, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newAPIError(resp.StatusCode, payload)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("airtable: decode %s response: %w", table, err)
	}
	return nil
}

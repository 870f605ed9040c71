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
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-attendance-bot/ledger"
)

type fakeAPI struct {
	mu       sync.Mutex
	pages    map[string][]string // table -> page bodies, chained by offset
	status   int
	posts    map[string][]writeRequest
	queries  []string
	authSeen []string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{pages: map[string][]string{}, posts: map[string][]writeRequest{}}
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.authSeen = append(f.authSeen, r.Header.Get("Authorization"))
	f.queries = append(f.queries, r.URL.RawQuery)
	if f.status != 0 {
		w.WriteHeader(f.status)
		_, _ = io.WriteString(w, `{"error":{"type":"INVALID_REQUEST","message":"bad"}}`)
		return
	}
	// Path is /base/table.
	table := r.URL.Path[len("/base/"):]
	switch r.Method {
	case http.MethodGet:
		pages := f.pages[table]
		idx := 0
		if off := r.URL.Query().Get("offset"); off != "" {
			idx = int(off[0] - '0')
		}
		_, _ = io.WriteString(w, pages[idx])
	case http.MethodPost:
		var req writeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusUnprocessableEntity)
			return
		}
		f.posts[table] = append(f.posts[table], req)
		_, _ = io.WriteString(w, `{"records":[{"id":"rec1"}]}`)
	}
}

func newTestClient(t *testing.T, api *fakeAPI) *Client {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	return New(Config{
		APIKey:        "key",
		BaseID:        "base",
		PeopleTable:   "people",
		PlacesTable:   "places",
		MessagesTable: "sms",
		LedgerTable:   "pnl",
		BaseURL:       srv.URL,
	})
}

func TestFetchOptions_PagesAndFilters(t *testing.T) {
	api := newFakeAPI()
	api.pages["people"] = []string{
		`{"records":[
			{"id":"1","fields":{"FIO3":"Anna","Coach":["coach1"]}},
			{"id":"2","fields":{"FIO3":"Boris","Coach":["other"]}}
		],"offset":"1"}`,
		`{"records":[
			{"id":"3","fields":{"FIO3":"Clara","Coach":["coach1","other"],"Places":["gym"],"Meanings":"g1"}}
		]}`,
	}
	c := newTestClient(t, api)

	got, err := c.FetchOptions(context.Background(), "coach1")
	require.NoError(t, err)
	assert.Equal(t, []Option{
		{Name: "Anna"},
		{Name: "Clara", Place: "gym", Meaning: "g1"},
	}, got)

	require.Len(t, api.queries, 2)
	assert.Contains(t, api.queries[0], "pageSize=100")
	assert.Contains(t, api.queries[1], "offset=1")
	assert.Equal(t, "Bearer key", api.authSeen[0])
}

func TestFetchLedger_FiltersAndSorts(t *testing.T) {
	api := newFakeAPI()
	api.pages["pnl"] = []string{`{"records":[
		{"id":"1","fields":{"Data":"10.03","Coach":"c","Format":"group","Place":"gym","Expenses_coach":100}},
		{"id":"2","fields":{"Data":"01.02","Coach":"c","Expenses_coach":50}},
		{"id":"3","fields":{"Data":"05.03","Coach":"x","Second_coach":"c","Expenses_coach":70,"Expenses_second_coach":30}}
	]}`}
	c := newTestClient(t, api)

	got, err := c.FetchLedger(context.Background(), "c", "01.03")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "05.03", got[0].Date)
	assert.Equal(t, "10.03", got[1].Date)
	assert.Equal(t, 130.0, ledger.Total(got, "c"))
	assert.Contains(t, api.queries[0], "filterByFormula=")
}

func TestLedgerFormula_Escapes(t *testing.T) {
	assert.Equal(t, `OR({Coach} = 'o\'neil', {Second_coach} = 'o\'neil')`, LedgerFormula("o'neil"))
}

func TestSubmitRecordAndNotify(t *testing.T) {
	api := newFakeAPI()
	c := newTestClient(t, api)

	require.NoError(t, c.SubmitRecord(context.Background(), map[string]any{"Date": "05.06"}))
	require.NoError(t, c.Notify(context.Background(), "hello"))

	// Records share the messages table when no records table is configured.
	require.Len(t, api.posts["sms"], 2)
	assert.Equal(t, "05.06", api.posts["sms"][0].Records[0].Fields["Date"])
	assert.Equal(t, "hello", api.posts["sms"][1].Records[0].Fields[FieldMessage])
}

func TestAPIError(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		retryable bool
	}{
		{"bad request", http.StatusBadRequest, false},
		{"unauthorized", http.StatusUnauthorized, false},
		{"rate limited", http.StatusTooManyRequests, true},
		{"server error", http.StatusBadGateway, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newFakeAPI()
			api.status = tt.status
			c := newTestClient(t, api)

			err := c.Notify(context.Background(), "x")
			require.Error(t, err)
			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, "INVALID_REQUEST", apiErr.Type)
			assert.Equal(t, tt.retryable, IsRetryable(err))
		})
	}
}

func TestTransportErrorIsRetryable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(Config{BaseID: "base", MessagesTable: "sms", BaseURL: url})
	err := c.Notify(context.Background(), "x")
	require.Error(t, err)
	var te *TransportError
	assert.True(t, errors.As(err, &te))
	assert.True(t, IsRetryable(err))
	assert.False(t, IsRetryable(errors.New("plain")))
	assert.False(t, IsRetryable(nil))
}

func TestNewAPIError_FlatBody(t *testing.T) {
	err := newAPIError(http.StatusNotFound, []byte(`{"error":"NOT_FOUND"}`))
	assert.Equal(t, "NOT_FOUND", err.Type)
	assert.False(t, err.Retryable())

	err = newAPIError(http.StatusServiceUnavailable, []byte(`oops`))
	assert.Equal(t, "Service Unavailable", err.Message)
}

func TestTextCells(t *testing.T) {
	var f ledgerFields
	require.NoError(t, json.Unmarshal([]byte(`{"Data":"01.01","Coach":["a","b"],"Place":12}`), &f))
	assert.Equal(t, text("a"), f.Coach)
	assert.Equal(t, text("12"), f.Place)

	var o optionFields
	require.NoError(t, json.Unmarshal([]byte(`{"Coach":"solo"}`), &o))
	assert.True(t, o.Coach.Has("solo"))
	assert.False(t, o.Coach.Has("sol"))
}

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
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"trpc.group/trpc-go/trpc-attendance-bot/ledger"
	"trpc.group/trpc-go/trpc-attendance-bot/log"
)

// Option is one row of the people or places table as seen by a coach.
type Option struct {
	Name    string `json:"name"`
	Place   string `json:"place"`
	Meaning string `json:"meaning"`
}

type optionFields struct {
	Name    text     `json:"FIO3"`
	Place   text     `json:"Places"`
	Meaning text     `json:"Meanings"`
	Coach   textList `json:"Coach"`
}

type ledgerFields struct {
	Date          text    `json:"Data"`
	Coach         text    `json:"Coach"`
	SecondCoach   text    `json:"Second_coach"`
	Format        text    `json:"Format"`
	Place         text    `json:"Place"`
	Expense       float64 `json:"Expenses_coach"`
	SecondExpense float64 `json:"Expenses_second_coach"`
}

// FieldMessage is the column of the messages table.
const FieldMessage = "Message"

// FetchOptions returns the people rows assigned to user.
func (c *Client) FetchOptions(ctx context.Context, user string) ([]Option, error) {
	return c.fetchAssigned(ctx, c.cfg.PeopleTable, user)
}

// FetchPlaces returns the places rows assigned to user.
func (c *Client) FetchPlaces(ctx context.Context, user string) ([]Option, error) {
	return c.fetchAssigned(ctx, c.cfg.PlacesTable, user)
}

func (c *Client) fetchAssigned(ctx context.Context, table, user string) ([]Option, error) {
	rows, err := c.list(ctx, table, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", table, err)
	}
	out := make([]Option, 0, len(rows))
	for _, row := range rows {
		var f optionFields
		if err := json.Unmarshal(row.Fields, &f); err != nil {
			log.Warnf("airtable: skip row %s of %s: %v", row.ID, table, err)
			continue
		}
		if !f.Coach.Has(user) {
			continue
		}
		out = append(out, Option{Name: string(f.Name), Place: string(f.Place), Meaning: string(f.Meaning)})
	}
	return out, nil
}

// FetchLedger returns the ledger entries where user is the coach or the
// second coach, dated on or after since and sorted by date.
func (c *Client) FetchLedger(ctx context.Context, user, since string) ([]ledger.Entry, error) {
	q := url.Values{}
	q.Set("filterByFormula", LedgerFormula(user))
	rows, err := c.list(ctx, c.cfg.LedgerTable, q)
	if err != nil {
		return nil, fmt.Errorf("fetch ledger: %w", err)
	}
	entries := make([]ledger.Entry, 0, len(rows))
	for _, row := range rows {
		var f ledgerFields
		if err := json.Unmarshal(row.Fields, &f); err != nil {
			log.Warnf("airtable: skip ledger row %s: %v", row.ID, err)
			continue
		}
		entries = append(entries, ledger.Entry{
			Date:          string(f.Date),
			Coach:         string(f.Coach),
			SecondCoach:   string(f.SecondCoach),
			Format:        string(f.Format),
			Place:         string(f.Place),
			Expense:       f.Expense,
			SecondExpense: f.SecondExpense,
		})
	}
	return ledger.Since(entries, since), nil
}

// LedgerFormula builds the filterByFormula expression selecting the rows of
// user.
func LedgerFormula(user string) string {
	u := strings.ReplaceAll(user, `\`, `\\`)
	u = strings.ReplaceAll(u, `'`, `\'`)
	return fmt.Sprintf("OR({Coach} = '%s', {Second_coach} = '%s')", u, u)
}

// SubmitRecord writes one attendance row.
func (c *Client) SubmitRecord(ctx context.Context, fields map[string]any) error {
	if err := c.create(ctx, c.cfg.RecordsTable, fields); err != nil {
		return fmt.Errorf("submit record: %w", err)
	}
	return nil
}

// Notify posts text to the messages table.
func (c *Client) Notify(ctx context.Context, text string) error {
	if err := c.create(ctx, c.cfg.MessagesTable, map[string]any{FieldMessage: text}); err != nil {
		return fmt.Errorf("post message: %w", err)
	}
	return nil
}

// text decodes a cell that may hold a string, a number or a list of strings
// (lookup and linked fields). Lists collapse to their first element.
type text string

func (t *text) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*t = text(s)
		return nil
	}
	var list []string
	if err := json.Unmarshal(b, &list); err == nil {
		if len(list) > 0 {
			*t = text(list[0])
		}
		return nil
	}
	var n float64
	if err := json.Unmarshal(b, &n); err == nil {
		*t = text(strconv.FormatFloat(n, 'f', -1, 64))
		return nil
	}
	return fmt.Errorf("unsupported cell %s", b)
}

// textList decodes a cell that may hold a single string or a list.
type textList []string

func (l *textList) UnmarshalJSON(b []byte) error {
	var list []string
	if err := json.Unmarshal(b, &list); err == nil {
		*l = list
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*l = []string{s}
		return nil
	}
	return fmt.Errorf("unsupported list cell %s", b)
}

// Has reports whether user is one of the values.
func (l textList) Has(user string) bool {
	for _, v := range l {
		if v == user {
			return true
		}
	}
	return false
}

//
// Tencent is pleased to support the open source community by making trpc-attendance-bot available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-attendance-bot is licensed under the Apache License Version 2.0.
//
//

// Package ledger computes coach earnings from the accounting table.
package ledger

import (
	"sort"
	"strconv"
)

// Entry is one accounting row relevant to a coach.
type Entry struct {
	Date          string  `json:"date"`
	Coach         string  `json:"coach"`
	SecondCoach   string  `json:"secondCoach"`
	Format        string  `json:"format"`
	Place         string  `json:"place"`
	Expense       float64 `json:"expense"`
	SecondExpense float64 `json:"secondExpense"`
}

// Since keeps the entries dated on or after since and sorts them by date.
// Dates are compared by day and month only, see OnOrAfter.
func Since(entries []Entry, since string) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if OnOrAfter(e.Date, since) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return !OnOrAfter(out[i].Date, out[j].Date)
	})
	return out
}

// Total sums what user earned: the coach share where user led the session,
// the second-coach share otherwise.
func Total(entries []Entry, user string) float64 {
	var sum float64
	for _, e := range entries {
		if e.Coach == user {
			sum += e.Expense
		} else {
			sum += e.SecondExpense
		}
	}
	return sum
}

// AsCoach returns the entries where user was the leading coach.
func AsCoach(entries []Entry, user string) []Entry {
	var out []Entry
	for _, e := range entries {
		if e.Coach == user {
			out = append(out, e)
		}
	}
	return out
}

// AsMentor returns the paid entries where user was the second coach.
func AsMentor(entries []Entry, user string) []Entry {
	var out []Entry
	for _, e := range entries {
		if e.SecondExpense > 0 && e.SecondCoach == user {
			out = append(out, e)
		}
	}
	return out
}

// Amount renders a money value without trailing zeros.
func Amount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

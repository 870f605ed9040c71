//
// Tencent is pleased to support the open source community by making trpc-attendance-bot available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-attendance-bot is licensed under the Apache License Version 2.0.
//
//

package ledger

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// referenceYear pins every "DD.MM" date to one calendar year. Windows that
// cross a year boundary therefore compare incorrectly ("28.12" sorts after
// "03.01"); callers only ever look back a few weeks.
const referenceYear = 2000

// ParseDayMonth parses "DD.MM" into a date of the reference year.
func ParseDayMonth(s string) (time.Time, error) {
	day, month, ok := strings.Cut(s, ".")
	if !ok {
		return time.Time{}, fmt.Errorf("ledger: malformed date %q", s)
	}
	d, err := strconv.Atoi(day)
	if err != nil {
		return time.Time{}, fmt.Errorf("ledger: malformed day in %q: %w", s, err)
	}
	m, err := strconv.Atoi(month)
	if err != nil {
		return time.Time{}, fmt.Errorf("ledger: malformed month in %q: %w", s, err)
	}
	return time.Date(referenceYear, time.Month(m), d, 0, 0, 0, 0, time.UTC), nil
}

// OnOrAfter reports whether a is the same day as or later than b, ignoring
// the year. Unparsable dates never match.
func OnOrAfter(a, b string) bool {
	ta, err := ParseDayMonth(a)
	if err != nil {
		return false
	}
	tb, err := ParseDayMonth(b)
	if err != nil {
		return false
	}
	return !ta.Before(tb)
}

// DayMonth formats t as "DD.MM".
func DayMonth(t time.Time) string { return t.Format("02.01") }

// RecentDays returns today and the n-1 preceding days, newest first.
func RecentDays(now time.Time, n int) []string {
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, DayMonth(now.AddDate(0, 0, -i)))
	}
	return out
}

// LastMondays returns the n most recent Mondays up to and including the
// current week's Monday, oldest first.
func LastMondays(now time.Time, n int) []string {
	back := (int(now.Weekday()) + 6) % 7
	monday := now.AddDate(0, 0, -back)
	out := make([]string, n)
	for i := n - 1; i >= 0; i-- {
		out[i] = DayMonth(monday)
		monday = monday.AddDate(0, 0, -7)
	}
	return out
}

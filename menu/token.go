//
// Tencent is pleased to support the open source community by making trpc-attendance-bot available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-attendance-bot is licensed under the Apache License Version 2.0.
//
//

package menu

import (
	"regexp"
	"strconv"
	"strings"

	"trpc.group/trpc-go/trpc-attendance-bot/record"
)

// Kind classifies an inbound callback payload.
type Kind int

// Token kinds.
const (
	KindOption Kind = iota
	KindDate
	KindFormat
	KindLocation
	KindMinus
	KindPrev
	KindNext
	KindDone
	KindRefreshDates
	KindViewEarnings
	KindBackToStart
	KindBackToDates
	KindBackToFormat
	KindBackToLocation
	KindEarningsDate
	KindBreakdown
)

// Control payloads.
const (
	DataDone           = "done"
	DataRefreshDates   = "refresh_dates"
	DataViewEarnings   = "view_earnings"
	DataBackToStart    = "back_to_start"
	DataBackToDates    = "back_to_dates"
	DataBackToFormat   = "back_to_format"
	DataBackToLocation = "back_to_location"
	DataBreakdown      = "detailed_breakdown"

	prefixLocation     = "location_"
	prefixMinus        = "minus_"
	prefixPrev         = "prev_"
	prefixNext         = "next_"
	prefixEarningsDate = "earnings_date_"
)

var controls = map[string]Kind{
	DataDone:           KindDone,
	DataRefreshDates:   KindRefreshDates,
	DataViewEarnings:   KindViewEarnings,
	DataBackToStart:    KindBackToStart,
	DataBackToDates:    KindBackToDates,
	DataBackToFormat:   KindBackToFormat,
	DataBackToLocation: KindBackToLocation,
	DataBreakdown:      KindBreakdown,
}

var (
	dateRe         = regexp.MustCompile(`^\d{2}\.\d{2}$`)
	pageRe         = regexp.MustCompile(`^(prev|next)_(\d+)$`)
	earningsDateRe = regexp.MustCompile(`^earnings_date_(\d{2}\.\d{2})$`)
)

// Token is a parsed callback payload.
type Token struct {
	Kind Kind
	// Raw is the payload as received.
	Raw string
	// Value carries the date, location key or option name.
	Value  string
	Format record.Format
	// Page is the page the keyboard was rendered on, for page tokens.
	Page int
}

// ParseToken classifies data. Anything that matches no reserved pattern is
// an option name.
func ParseToken(data string) Token {
	tok := Token{Kind: KindOption, Raw: data, Value: data}
	if k, ok := controls[data]; ok {
		tok.Kind = k
		return tok
	}
	if dateRe.MatchString(data) {
		tok.Kind = KindDate
		return tok
	}
	if f, ok := record.ParseFormat(data); ok {
		tok.Kind, tok.Format = KindFormat, f
		return tok
	}
	if m := pageRe.FindStringSubmatch(data); m != nil {
		page, err := strconv.Atoi(m[2])
		if err == nil {
			tok.Kind, tok.Page = KindNext, page
			if m[1] == "prev" {
				tok.Kind = KindPrev
			}
			return tok
		}
	}
	if m := earningsDateRe.FindStringSubmatch(data); m != nil {
		tok.Kind, tok.Value = KindEarningsDate, m[1]
		return tok
	}
	if v, ok := strings.CutPrefix(data, prefixLocation); ok && v != "" {
		tok.Kind, tok.Value = KindLocation, v
		return tok
	}
	if v, ok := strings.CutPrefix(data, prefixMinus); ok && v != "" {
		tok.Kind, tok.Value = KindMinus, v
		return tok
	}
	return tok
}

// Page payloads carry the page they were rendered on.
func prevData(page int) string { return prefixPrev + strconv.Itoa(page) }

func nextData(page int) string { return prefixNext + strconv.Itoa(page) }

func locationData(key string) string { return prefixLocation + key }

func minusData(name string) string { return prefixMinus + name }

// maxDataLen is the Bot API limit on callback payloads, in bytes.
const maxDataLen = 64

// oversized returns the names whose option or minus payload exceeds
// maxDataLen. Telegram rejects a keyboard carrying any of them.
func oversized(names []string) []string {
	var out []string
	for _, name := range names {
		if len(minusData(name)) > maxDataLen {
			out = append(out, name)
		}
	}
	return out
}

func earningsDateData(date string) string { return prefixEarningsDate + date }

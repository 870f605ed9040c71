//
// Tencent is pleased to support the open source community by making trpc-attendance-bot available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-attendance-bot is licensed under the Apache License Version 2.0.
//
//

// Package record defines the training formats and the immutable record a
// finished menu produces.
package record

import (
	"fmt"

	"trpc.group/trpc-go/trpc-attendance-bot/selection"
)

// Format is the training format chosen on the format screen.
type Format string

// Training formats. The string values double as callback tokens.
const (
	FormatUnset           Format = ""
	FormatDiscountedGroup Format = "discounted-group"
	FormatGroup           Format = "group"
	FormatPersonal        Format = "personal"
)

// Formats lists the selectable formats in menu order.
var Formats = []Format{FormatDiscountedGroup, FormatGroup, FormatPersonal}

// ParseFormat converts a token into a Format.
func ParseFormat(s string) (Format, bool) {
	for _, f := range Formats {
		if string(f) == s {
			return f, true
		}
	}
	return FormatUnset, false
}

// Counted reports whether the format uses counter selection.
func (f Format) Counted() bool { return f == FormatDiscountedGroup }

// HasLocation reports whether the format asks for a location.
func (f Format) HasLocation() bool { return f == FormatGroup || f == FormatPersonal }

// Airtable column names of the attendance table.
const (
	FieldDate     = "Date"
	FieldFormat   = "Format"
	FieldLocation = "Location"
	FieldSelected = "Selected Buttons"
)

// Record is a finalized attendance entry.
type Record struct {
	User     string          `json:"user"`
	Date     string          `json:"date"`
	Format   Format          `json:"format"`
	Location string          `json:"location,omitempty"`
	People   []string        `json:"people,omitempty"`
	Tally    selection.Tally `json:"tally"`
	Summary  string          `json:"summary"`
}

// New freezes sel into a record.
func New(user, date string, format Format, location string, sel selection.Selection) Record {
	r := Record{
		User:    user,
		Date:    date,
		Format:  format,
		Summary: sel.Summarize(),
		People:  sel.Chosen(),
	}
	if format.HasLocation() {
		r.Location = location
	}
	if counter, ok := sel.(*selection.CounterSet); ok {
		r.Tally = counter.Tally()
	}
	return r
}

// SummaryLine is the single line echoed to the user and the secondary chat.
func (r Record) SummaryLine() string {
	if r.Format.Counted() {
		return r.prefix() + r.Summary
	}
	return fmt.Sprintf("%s / %s / %s / %s / %s", r.User, r.Date, r.Format, r.Location, r.Summary)
}

// Lines returns the audit notifications of the record: the fan-out lines for
// counted formats, the summary line otherwise.
func (r Record) Lines() []string {
	if r.Format.Counted() {
		return selection.FanOut(r.prefix(), r.Tally)
	}
	return []string{r.SummaryLine()}
}

// Fields maps the record onto attendance table columns.
func (r Record) Fields() map[string]any {
	fields := map[string]any{
		FieldDate:     r.Date,
		FieldFormat:   string(r.Format),
		FieldSelected: r.Summary,
	}
	if r.Format.HasLocation() {
		fields[FieldLocation] = r.Location
	}
	return fields
}

func (r Record) prefix() string {
	return fmt.Sprintf("%s / %s / %s // ", r.User, r.Date, r.Format)
}
